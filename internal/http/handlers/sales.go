package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/ecar-admin/admin-gateway/internal/errors"
)

// readObject читает тело как произвольный JSON-объект: схема продажи
// принадлежит upstream, шлюз проверяет только синтаксис.
func readObject(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return nil, apierrors.ErrInvalidArgument
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, apierrors.ErrInvalidArgument
	}

	return raw, nil
}

func (h *Handlers) ListSales(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.ListSales(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

func (h *Handlers) GetSale(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

func (h *Handlers) CreateSale(w http.ResponseWriter, r *http.Request) {
	in, err := readObject(w, r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.CreateSale(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusCreated, out)
}

func (h *Handlers) UpdateSale(w http.ResponseWriter, r *http.Request) {
	in, err := readObject(w, r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.UpdateSale(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

func (h *Handlers) DeleteSale(w http.ResponseWriter, r *http.Request) {
	if err := h.API.DeleteSale(r.Context(), chi.URLParam(r, "id")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
