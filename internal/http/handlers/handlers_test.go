package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecar-admin/admin-gateway/internal/clients/rest"
	"github.com/ecar-admin/admin-gateway/internal/config"
	"github.com/ecar-admin/admin-gateway/internal/models"
	"github.com/ecar-admin/admin-gateway/internal/session"
	"github.com/stretchr/testify/require"
)

// stubSessions — управляемая реализация Sessions.
type stubSessions struct {
	refresh func(ctx context.Context, refresh string) (*session.Result, error)
	signup  func(ctx context.Context, in models.SignupRequest) (*session.Result, error)
	reset   func(ctx context.Context, email string) error
}

func (s *stubSessions) Refresh(ctx context.Context, refresh string) (*session.Result, error) {
	return s.refresh(ctx, refresh)
}

func (s *stubSessions) Login(context.Context, string, string) (*session.Result, error) {
	return nil, errors.New("not used")
}

func (s *stubSessions) Signup(ctx context.Context, in models.SignupRequest) (*session.Result, error) {
	return s.signup(ctx, in)
}

func (s *stubSessions) ResetPassword(ctx context.Context, email string) error {
	return s.reset(ctx, email)
}

func cookieCfg() config.CookieConfig {
	return config.CookieConfig{AccessTTL: 15 * time.Minute, RefreshTTL: 720 * time.Hour}
}

func TestMe_NonRefreshErrorUsesErrorEnvelope(t *testing.T) {
	t.Parallel()

	h := New(&stubSessions{refresh: func(context.Context, string) (*session.Result, error) {
		return nil, context.Canceled
	}}, nil, cookieCfg())

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	require.Equal(t, 499, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"canceled"`)
}

func TestMe_PassesRefreshCookie(t *testing.T) {
	t.Parallel()

	var got string
	h := New(&stubSessions{refresh: func(_ context.Context, refresh string) (*session.Result, error) {
		got = refresh
		return &session.Result{Pair: models.TokenPair{Access: "a", Refresh: "b"}, User: models.User{ID: 3}, Rotated: true}, nil
	}}, nil, cookieCfg())

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: "r-1"})
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "r-1", got)

	var out models.MeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.True(t, out.OK)
	require.EqualValues(t, 3, out.User.ID)
	require.Len(t, rec.Result().Cookies(), 2)
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()

	h := New(&stubSessions{signup: func(context.Context, models.SignupRequest) (*session.Result, error) {
		t.Fatal("upstream must not be called")
		return nil, nil
	}}, nil, cookieCfg())

	for _, body := range []string{
		`{"email":"a@b.com","password1":"x","password2":"y"}`,
		`{"email":" ","password1":"x","password2":"x"}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		h.Signup(rec, httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

// Роль не назначена: cookie уже выданы, ответ — ошибка upstream.
func TestSignup_RoleFailureKeepsCookies(t *testing.T) {
	t.Parallel()

	h := New(&stubSessions{signup: func(_ context.Context, in models.SignupRequest) (*session.Result, error) {
		require.Equal(t, "new@b.com", in.Email)
		return &session.Result{Pair: models.TokenPair{Access: "a", Refresh: "b"}, Rotated: true},
			&rest.HTTPError{StatusCode: http.StatusForbidden, Detail: "You do not have permission to perform this action."}
	}}, nil, cookieCfg())

	body := `{"first_name":"N","last_name":"M","email":"new@b.com","password1":"p","password2":"p"}`
	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body)))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Len(t, rec.Result().Cookies(), 2)
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	var got string
	h := New(&stubSessions{reset: func(_ context.Context, email string) error {
		got = email
		return nil
	}}, nil, cookieCfg())

	rec := httptest.NewRecorder()
	h.ResetPassword(rec, httptest.NewRequest(http.MethodPost, "/api/password/reset", strings.NewReader(`{"email":" a@b.com "}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "a@b.com", got)

	rec = httptest.NewRecorder()
	h.ResetPassword(rec, httptest.NewRequest(http.MethodPost, "/api/password/reset", strings.NewReader(`{"email":""}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIDParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", tt.raw)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		id, err := idParam(req)
		if !tt.ok {
			require.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, id)
	}
}

func TestWriteRaw_EmptyBodyIsNull(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeRaw(rec, http.StatusOK, nil)
	require.Equal(t, "null", rec.Body.String())
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/cars/1/views", nil)
	req.RemoteAddr = "10.0.0.5:41234"
	require.Equal(t, "10.0.0.5", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "garbage")
	require.Equal(t, "10.0.0.5", clientIP(req))
}

func TestUpgradeProfile_UnknownRoleIsRejectedLocally(t *testing.T) {
	t.Parallel()

	h := New(&stubSessions{}, nil, cookieCfg())

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("role", "admin")
	req := httptest.NewRequest(http.MethodPost, "/api/profiles/upgrade/admin", strings.NewReader(`{}`))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h.UpgradeProfile(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
