package handlers

import (
	"net/http"

	apierrors "github.com/ecar-admin/admin-gateway/internal/errors"
	"github.com/ecar-admin/admin-gateway/internal/models"
)

func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.ListFavorites(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var in models.AddFavoriteRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	if in.Car <= 0 {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := h.API.AddFavorite(r.Context(), in.Car)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusCreated, out)
}

func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.API.RemoveFavorite(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
