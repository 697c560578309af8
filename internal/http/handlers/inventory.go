package handlers

import (
	"net/http"
	"strconv"
	"strings"

	apierrors "github.com/ecar-admin/admin-gateway/internal/errors"
	"github.com/ecar-admin/admin-gateway/internal/models"
)

func (h *Handlers) ListMakes(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.ListMakes(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateMake(w http.ResponseWriter, r *http.Request) {
	var in models.CreateMakeRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := h.API.CreateMake(r.Context(), name)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) UpdateMake(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in models.CreateMakeRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := h.API.UpdateMake(r.Context(), id, name)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) DeleteMake(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.API.DeleteMake(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListModels — модели, опционально отфильтрованные по ?make=<id>.
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	var makeID int64
	if s := r.URL.Query().Get("make"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
			return
		}
		makeID = v
	}

	out, err := h.API.ListModels(r.Context(), makeID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateModel(w http.ResponseWriter, r *http.Request) {
	var in models.CreateModelRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.MakeID <= 0 {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := h.API.CreateModel(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) UpdateModel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in models.UpdateModelRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
			return
		}
		in.Name = &name
	}
	if (in.MakeID != nil && *in.MakeID <= 0) || (in.Name == nil && in.MakeID == nil) {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := h.API.UpdateModel(r.Context(), id, in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) DeleteModel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.API.DeleteModel(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
