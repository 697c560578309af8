package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/ecar-admin/admin-gateway/internal/clients/api"
	apierrors "github.com/ecar-admin/admin-gateway/internal/errors"
)

// maxCarBody — предел тела объявления с фотографиями.
const maxCarBody = 32 << 20

// VerifyCarRequest — тело PATCH /api/cars/{id}/verify.
type VerifyCarRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (h *Handlers) ListCars(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.ListCars(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

func (h *Handlers) GetCar(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.GetCar(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

// CreateCar пересылает тело как есть вместе с Content-Type (boundary multipart).
func (h *Handlers) CreateCar(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := h.API.CreateCar(r.Context(), http.MaxBytesReader(w, r.Body, maxCarBody), ct)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusCreated, out)
}

func (h *Handlers) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.API.DeleteCar(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) VerifyCar(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in VerifyCarRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	if in.Status != api.VerificationVerified && in.Status != api.VerificationRejected {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := h.API.VerifyCar(r.Context(), id, in.Status, in.Reason)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

// RecordCarView учитывает просмотр объявления с адреса клиента.
func (h *Handlers) RecordCarView(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.RecordCarView(r.Context(), id, clientIP(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusCreated, out)
}

func (h *Handlers) PopularCars(w http.ResponseWriter, r *http.Request) {
	out, err := h.API.PopularCars(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeRaw(w, http.StatusOK, out)
}

// clientIP — первый адрес X-Forwarded-For, иначе адрес соединения.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
