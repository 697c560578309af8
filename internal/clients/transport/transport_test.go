package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	logctx "github.com/ecar-admin/admin-gateway/pkg/log"
)

// capHandler — тестовый slog.Handler: копит attrs последней записи.
type capHandler struct {
	mu      sync.Mutex
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   map[string]int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})
	if h.count == nil {
		h.count = make(map[string]int)
	}
	h.count[r.Message]++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

// recorder — конечный RoundTripper, запоминающий входящий запрос.
type recorder struct {
	got    *http.Request
	status int
	err    error
}

func (rc *recorder) RoundTrip(r *http.Request) (*http.Response, error) {
	rc.got = r
	if rc.err != nil {
		return nil, rc.err
	}

	status := rc.status
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     http.Header{},
		Request:    r,
	}, nil
}

func newReq(t *testing.T, ctx context.Context) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.example.com/auth/user/?q=secret", nil)
	require.NoError(t, err)
	return req
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mk := func(name string) Decorator {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	rt := Chain(&recorder{}, mk("outer"), mk("inner"))
	_, err := rt.RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestWithMetadata_AppendsHeaders(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), CtxRequestID, "rid-123")
	ctx = WithAuthToken(ctx, "token-xyz")

	rec := &recorder{}
	req := newReq(t, ctx)
	_, err := WithMetadata("admin-gateway")(rec).RoundTrip(req)
	require.NoError(t, err)

	require.Equal(t, "rid-123", rec.got.Header.Get("X-Request-Id"))
	require.Equal(t, "Bearer token-xyz", rec.got.Header.Get("Authorization"))
	require.Equal(t, "admin-gateway", rec.got.Header.Get("User-Agent"))

	// Исходный запрос не тронут.
	require.Empty(t, req.Header.Get("Authorization"))
}

func TestWithMetadata_KeepsExplicitAuthorization(t *testing.T) {
	t.Parallel()

	ctx := WithAuthToken(context.Background(), "from-ctx")
	req := newReq(t, ctx)
	req.Header.Set("Authorization", "Bearer explicit")

	rec := &recorder{}
	_, err := WithMetadata("")(rec).RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, "Bearer explicit", rec.got.Header.Get("Authorization"))
}

func TestWithMetadata_SkipEmptyValues(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	_, err := WithMetadata("")(rec).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
	require.Empty(t, rec.got.Header.Get("X-Request-Id"))
	require.Empty(t, rec.got.Header.Get("Authorization"))
}

func TestWithTimeout_SetsDeadline_UntilBodyClosed(t *testing.T) {
	t.Parallel()

	var reqCtx context.Context
	rt := WithTimeout(time.Second)(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		reqCtx = r.Context()
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("ok"))}, nil
	}))

	resp, err := rt.RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)

	_, ok := reqCtx.Deadline()
	require.True(t, ok)
	require.NoError(t, reqCtx.Err(), "контекст жив, пока тело не закрыто")

	require.NoError(t, resp.Body.Close())
	require.ErrorIs(t, reqCtx.Err(), context.Canceled)
}

func TestWithTimeout_DoesNotOverrideExistingDeadline(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	parentDL, _ := parent.Deadline()

	var childDL time.Time
	rt := WithTimeout(time.Second)(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		childDL, _ = r.Context().Deadline()
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
	}))

	_, err := rt.RoundTrip(newReq(t, parent))
	require.NoError(t, err)
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestWithTimeout_ZeroDuration_PassThrough(t *testing.T) {
	t.Parallel()

	var hasDL bool
	rt := WithTimeout(0)(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		_, hasDL = r.Context().Deadline()
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
	}))

	_, err := rt.RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
	require.False(t, hasDL)
}

func TestWithLogging_WritesRecordWithoutQuery(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	rec := &recorder{status: http.StatusCreated}

	_, err := WithLogging(slog.New(h))(rec).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)

	require.Equal(t, "upstream", h.lastMsg)
	require.Equal(t, slog.LevelInfo, h.lastLvl)
	require.EqualValues(t, http.StatusCreated, h.attrs["status"])
	require.Equal(t, "/auth/user/", h.attrs["path"])
	require.Equal(t, "api.example.com", h.attrs["host"])

	// Сгенерированный request id — валидный UUID и ушёл в заголовок.
	rid, _ := h.attrs["request_id"].(string)
	_, perr := uuid.Parse(rid)
	require.NoError(t, perr)
	require.Equal(t, rid, rec.got.Header.Get("X-Request-Id"))

	for _, v := range h.attrs {
		if s, ok := v.(string); ok {
			require.NotContains(t, s, "secret")
		}
	}
}

func TestWithLogging_TransportErrorIsWarn(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	rec := &recorder{err: errors.New("dial tcp: refused")}

	_, err := WithLogging(slog.New(h))(rec).RoundTrip(newReq(t, context.Background()))
	require.Error(t, err)
	require.Equal(t, slog.LevelWarn, h.lastLvl)
	require.Contains(t, h.attrs["err"], "refused")
}

// Без явного логгера запись уходит в логгер контекста запроса.
func TestWithLogging_NilBaseUsesContextLogger(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	ctx := logctx.Into(context.Background(), slog.New(h).With(slog.String("caller", "me")))

	_, err := WithLogging(nil)(&recorder{}).RoundTrip(newReq(t, ctx))
	require.NoError(t, err)

	require.Equal(t, 1, h.count["upstream"])
	require.Equal(t, "me", h.attrs["caller"])
	require.EqualValues(t, http.StatusOK, h.attrs["status"])
}

func TestFullChain_AgainstServer(t *testing.T) {
	t.Parallel()

	var gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := &http.Client{Transport: Chain(http.DefaultTransport,
		WithMetadata("gw"),
		WithTimeout(time.Second),
		WithLogging(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(),
	)}

	req, err := http.NewRequestWithContext(WithAuthToken(context.Background(), "tok"), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	require.JSONEq(t, `{"ok":true}`, string(body))
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, "gw", gotUA)
}
