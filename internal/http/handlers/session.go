package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/ecar-admin/admin-gateway/internal/errors"
	"github.com/ecar-admin/admin-gateway/internal/models"
	"github.com/ecar-admin/admin-gateway/internal/session"
	"github.com/ecar-admin/admin-gateway/pkg/log"
	"github.com/ecar-admin/admin-gateway/pkg/redact"
)

const (
	msgLoggedOut     = "Logged out"
	msgLoggedIn      = "Logged in"
	msgSignedUp      = "Account created"
	msgResetAccepted = "Password reset e-mail sent"
)

// Me обновляет сессию по cookie refresh и возвращает текущего пользователя.
// Новая пара сохраняется в cookie, как только получена, даже если запрос
// пользователя затем не удался. Сбой любого шага — 500 с message шага.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	refresh := session.NewRequestJar(w, r, h.Cookies).Tokens().Refresh

	res, err := h.Sessions.Refresh(ctx, refresh)
	if res != nil && res.Rotated {
		session.SetTokenCookies(w, res.Pair, h.Cookies)
	}

	if err != nil {
		var re *session.RefreshError
		if !errors.As(err, &re) {
			apierrors.WriteError(w, r, err)
			return
		}

		log.From(ctx).ErrorContext(ctx, "session_refresh_failed",
			slog.String("stage", string(re.Stage)),
			slog.String("err", err.Error()),
		)

		writeJSON(w, http.StatusInternalServerError, models.MeResponse{
			OK:      false,
			Message: re.Message(),
			Outside: re.Outside,
		})
		return
	}

	user := res.User
	writeJSON(w, http.StatusOK, models.MeResponse{
		OK:      true,
		Message: session.MsgRefreshed,
		User:    &user,
	})
}

// Logout безусловно удаляет обе cookie с токенами.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session.ClearTokenCookies(w, h.Cookies)

	log.From(r.Context()).InfoContext(r.Context(), "session_logout")
	writeJSON(w, http.StatusOK, models.StatusResponse{OK: true, Message: msgLoggedOut})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	res, err := h.Sessions.Login(r.Context(), in.Email, in.Password)
	if res != nil && res.Rotated {
		session.SetTokenCookies(w, res.Pair, h.Cookies)
	}
	if err != nil {
		log.From(r.Context()).WarnContext(r.Context(), "login_failed",
			slog.String("email", redact.Email(in.Email)),
			slog.String("err", err.Error()),
		)
		apierrors.WriteError(w, r, err)
		return
	}

	user := res.User
	writeJSON(w, http.StatusOK, models.MeResponse{OK: true, Message: msgLoggedIn, User: &user})
}

// Signup регистрирует администратора. Пара, выданная при регистрации,
// сохраняется в cookie и тогда, когда назначить роль не удалось.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var in models.SignupRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password1 == "" || in.Password1 != in.Password2 {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	res, err := h.Sessions.Signup(r.Context(), in)
	if res != nil && res.Rotated {
		session.SetTokenCookies(w, res.Pair, h.Cookies)
	}
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user := res.User
	writeJSON(w, http.StatusCreated, models.MeResponse{OK: true, Message: msgSignedUp, User: &user})
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in models.ResetPasswordRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if err := h.Sessions.ResetPassword(r.Context(), in.Email); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.StatusResponse{OK: true, Message: msgResetAccepted})
}
