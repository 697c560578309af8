package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecar-admin/admin-gateway/internal/clients/rest"
	"github.com/ecar-admin/admin-gateway/internal/clients/transport"
	"github.com/ecar-admin/admin-gateway/internal/models"
	"github.com/stretchr/testify/require"
)

// newUpstream поднимает фейковый identity API и клиента с транспортом WithMetadata.
func newUpstream(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	hc := &http.Client{Transport: transport.Chain(http.DefaultTransport, transport.WithMetadata(""))}
	return New(srv.URL+"/api", hc)
}

func TestRefreshTokens_OK(t *testing.T) {
	t.Parallel()

	var gotBody map[string]string
	var gotAuth string
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/token/refresh" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"access":"tok-A","refresh":"tok-B","extra":1}`))
	})

	// Bearer входящего запроса не должен утечь в обмен токенов.
	ctx := transport.WithAuthToken(context.Background(), "stale")
	pair, raw, err := c.RefreshTokens(ctx, "valid-refresh-1")
	require.NoError(t, err)

	require.Equal(t, models.TokenPair{Access: "tok-A", Refresh: "tok-B"}, pair)
	require.Equal(t, "valid-refresh-1", gotBody["refresh"])
	require.Empty(t, gotAuth)
	require.EqualValues(t, 1, raw["extra"])
}

func TestRefreshTokens_PartialBodyIsNotAnError(t *testing.T) {
	t.Parallel()

	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access":"only-access"}`))
	})

	pair, raw, err := c.RefreshTokens(context.Background(), "r")
	require.NoError(t, err)
	require.False(t, pair.Complete())
	require.Equal(t, "only-access", raw["access"])
}

// Нераспознанное 2xx-тело — пустая пара без ошибки обмена.
func TestRefreshTokens_MalformedBodyYieldsEmptyPair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantRaw map[string]any
	}{
		{name: "empty", body: ""},
		{name: "not json", body: "<html>ok</html>"},
		{name: "array", body: "[]"},
		{name: "string", body: `"tok"`},
		{name: "wrong type", body: `{"access":123,"refresh":"r"}`, wantRaw: map[string]any{"access": float64(123), "refresh": "r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			pair, raw, err := c.RefreshTokens(context.Background(), "r")
			require.NoError(t, err)
			require.Equal(t, models.TokenPair{}, pair)
			require.Equal(t, tt.wantRaw, raw)
		})
	}
}

func TestRefreshTokens_Non2xx(t *testing.T) {
	t.Parallel()

	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
	})

	_, _, err := c.RefreshTokens(context.Background(), "")
	require.Error(t, err)
	require.True(t, rest.IsStatus(err, http.StatusUnauthorized))

	var he *rest.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, "Token is invalid or expired", he.Detail)
}

func TestCurrentUser_UsesBearer(t *testing.T) {
	t.Parallel()

	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/user/" || r.Header.Get("Authorization") != "Bearer tok-A" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"id":7,"email":"a@b.com","first_name":"Ann","last_name":"Lee","is_staff":true}`))
	})

	u, err := c.CurrentUser(context.Background(), "tok-A")
	require.NoError(t, err)
	require.EqualValues(t, 7, u.ID)
	require.Equal(t, "a@b.com", u.Email)
	require.NotNil(t, u.IsStaff)
	require.True(t, *u.IsStaff)
	require.Nil(t, u.IsSuperuser)
}

func TestCurrentUser_Rejected(t *testing.T) {
	t.Parallel()

	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	u, err := c.CurrentUser(context.Background(), "bad")
	require.Error(t, err)
	require.True(t, u.IsZero())
	require.Equal(t, http.StatusUnauthorized, rest.StatusOf(err))
}

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	var in models.LoginRequest
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login/", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&in)
		_, _ = w.Write([]byte(`{"access":"a","refresh":"r","user":{"id":3,"email":"x@y.z"}}`))
	})

	out, err := c.Login(context.Background(), "x@y.z", "pw")
	require.NoError(t, err)
	require.Equal(t, "x@y.z", in.Email)
	require.Equal(t, "pw", in.Password)
	require.Equal(t, "a", out.Access)
	require.Equal(t, "r", out.Refresh)
	require.NotNil(t, out.User)
	require.EqualValues(t, 3, out.User.ID)
}

func TestRegister_FieldErrorDetail(t *testing.T) {
	t.Parallel()

	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/registration/", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"email":["A user is already registered with this e-mail address."]}`))
	})

	_, err := c.Register(context.Background(), models.SignupRequest{Email: "dup@x.y"})
	require.Error(t, err)

	var he *rest.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, "A user is already registered with this e-mail address.", he.Detail)
}

func TestSetAdminRole_SendsRoleAndBearer(t *testing.T) {
	t.Parallel()

	var body map[string]any
	var auth string
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/me/roles/", r.URL.Path)
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.SetAdminRole(context.Background(), "acc", 11))
	require.Equal(t, "Bearer acc", auth)
	require.Equal(t, "admin", body["role"])
	require.EqualValues(t, 11, body["user"])
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	var in models.ResetPasswordRequest
	c := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/password/reset", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&in)
		_, _ = w.Write([]byte(`{"detail":"Password reset e-mail has been sent."}`))
	})

	require.NoError(t, c.ResetPassword(context.Background(), "x@y.z"))
	require.Equal(t, "x@y.z", in.Email)
}
