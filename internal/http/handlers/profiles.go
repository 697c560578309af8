package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecar-admin/admin-gateway/internal/clients/api"
	apierrors "github.com/ecar-admin/admin-gateway/internal/errors"
)

func (h *Handlers) ListProfiles(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.ListProfiles(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

// MyProfile — профиль владельца текущей сессии.
func (h *Handlers) MyProfile(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.MyProfile(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

// UpdateProfile пересылает тело как есть вместе с Content-Type (аватар — multipart).
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := h.API.UpdateProfile(r.Context(), chi.URLParam(r, "id"), http.MaxBytesReader(w, r.Body, maxCarBody), ct)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

func (h *Handlers) UpgradeProfile(w http.ResponseWriter, r *http.Request) {
	to := chi.URLParam(r, "role")
	if to != api.UpgradeDealer && to != api.UpgradeBroker {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	in, err := readObject(w, r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.UpgradeProfile(r.Context(), to, in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}
