package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ecar-admin/admin-gateway/internal/clients/api"
	"github.com/ecar-admin/admin-gateway/internal/config"
	apierrors "github.com/ecar-admin/admin-gateway/internal/errors"
	"github.com/ecar-admin/admin-gateway/internal/models"
	"github.com/ecar-admin/admin-gateway/internal/session"
)

// maxJSONBody — предел JSON-тела входящего запроса.
const maxJSONBody = 1 << 20

// Sessions — операции сессии (session.Service).
type Sessions interface {
	Refresh(ctx context.Context, refresh string) (*session.Result, error)
	Login(ctx context.Context, email, password string) (*session.Result, error)
	Signup(ctx context.Context, in models.SignupRequest) (*session.Result, error)
	ResetPassword(ctx context.Context, email string) error
}

// Handlers агрегирует зависимости: сервис сессии, клиент ресурсов
// upstream и атрибуты cookie.
type Handlers struct {
	Sessions Sessions
	API      *api.Client
	Cookies  config.CookieConfig
}

func New(s Sessions, a *api.Client, cookies config.CookieConfig) *Handlers {
	return &Handlers{Sessions: s, API: a, Cookies: cookies}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeRaw отдаёт тело upstream без повторного кодирования.
func writeRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return apierrors.ErrInvalidArgument
	}

	return nil
}

// idParam — положительный числовой {id} из пути.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierrors.ErrInvalidArgument
	}

	return id, nil
}
