package guard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ecar-admin/admin-gateway/internal/models"
	"github.com/ecar-admin/admin-gateway/internal/session"
	"github.com/stretchr/testify/require"
)

// fakeRefresher считает вызовы Me и отвечает заданным результатом.
type fakeRefresher struct {
	calls   atomic.Int32
	user    models.User
	err     error
	block   chan struct{}
	lastCtx context.Context
	mu      sync.Mutex
}

func (f *fakeRefresher) Me(ctx context.Context) (models.User, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastCtx = ctx
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.user, f.err
}

// capHandler — slog.Handler, запоминающий сообщения записей.
type capHandler struct {
	mu   sync.Mutex
	msgs []string
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, r.Message)
	return nil
}

func (h *capHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *capHandler) WithGroup(string) slog.Handler      { return h }

func (h *capHandler) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.msgs...)
}

func newGuard(r Refresher, store UserSetter, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return New(Options{Refresher: r, Store: store, Logger: log, RefreshTimeout: time.Second})
}

func TestIsAuthRoute(t *testing.T) {
	t.Parallel()

	g := newGuard(nil, nil, nil)
	for _, p := range []string{"/signin", "/signup", "/signin/verify", "/forgot-password", "/reset", "/reset/abc/123"} {
		require.True(t, g.IsAuthRoute(p), p)
	}
	for _, p := range []string{"/", "/cars", "/users/7", "/api/signin"} {
		require.False(t, g.IsAuthRoute(p), p)
	}
}

func TestNavigate_AuthRouteRendersWithoutRefresh(t *testing.T) {
	t.Parallel()

	r := &fakeRefresher{}
	g := newGuard(r, session.NewStore(), nil)

	for _, logged := range []bool{false, true} {
		d := g.Navigate(context.Background(), "/signin", logged)
		require.Equal(t, Decision{Render: true}, d)
	}

	g.Wait()
	require.Zero(t, r.calls.Load())
}

func TestNavigate_UnauthenticatedRedirectsWithoutRefresh(t *testing.T) {
	t.Parallel()

	r := &fakeRefresher{}
	g := newGuard(r, session.NewStore(), nil)

	d := g.Navigate(context.Background(), "/listing", false)
	require.Equal(t, Decision{Redirect: "/signin"}, d)

	g.Wait()
	require.Zero(t, r.calls.Load())
}

// Рендер не ждёт обновления; одно событие навигации — ровно один вызов.
func TestNavigate_AuthenticatedRendersImmediatelyAndRefreshesOnce(t *testing.T) {
	t.Parallel()

	r := &fakeRefresher{user: models.User{ID: 7, Email: "a@b.com"}, block: make(chan struct{})}
	store := session.NewStore()
	g := newGuard(r, store, nil)

	d := g.Navigate(context.Background(), "/listing", true)
	require.Equal(t, Decision{Render: true}, d)
	require.True(t, store.Get().IsZero(), "снимок ещё не обновлён")

	close(r.block)
	g.Wait()

	require.EqualValues(t, 1, r.calls.Load())
	require.EqualValues(t, 7, store.Get().ID)
}

func TestNavigate_EachNavigationRefreshes(t *testing.T) {
	t.Parallel()

	r := &fakeRefresher{user: models.User{ID: 7}}
	g := newGuard(r, session.NewStore(), nil)

	g.Navigate(context.Background(), "/listing", true)
	g.Navigate(context.Background(), "/sales", true)
	g.Wait()

	require.EqualValues(t, 2, r.calls.Load())
}

// Сбой обновления только логируется: снимок не трогается, редиректа нет.
func TestNavigate_RefreshFailureIsLoggedOnly(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	r := &fakeRefresher{err: errors.New("Error updating tokens")}
	store := session.NewStore()
	store.Set(models.User{ID: 3})
	g := newGuard(r, store, slog.New(h))

	d := g.Navigate(context.Background(), "/listing", true)
	require.Equal(t, Decision{Render: true}, d)

	g.Wait()
	require.EqualValues(t, 3, store.Get().ID)
	require.Contains(t, h.messages(), "guard_refresh_failed")
}

// Отмена контекста навигации не отменяет фоновое обновление.
func TestNavigate_RefreshDetachedFromNavigationContext(t *testing.T) {
	t.Parallel()

	r := &fakeRefresher{user: models.User{ID: 7}, block: make(chan struct{})}
	g := newGuard(r, session.NewStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	g.Navigate(ctx, "/listing", true)
	cancel()

	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	r.mu.Lock()
	bg := r.lastCtx
	r.mu.Unlock()
	require.NoError(t, bg.Err())
	_, hasDeadline := bg.Deadline()
	require.True(t, hasDeadline)

	close(r.block)
	g.Wait()
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	g := New(Options{})
	require.Equal(t, DefaultAuthPrefixes, g.prefixes)
	require.Equal(t, "/signin", g.signIn)
	require.Equal(t, defaultRefreshTimeout, g.timeout)

	// Без Refresher навигация работает, обновление не запускается.
	require.Equal(t, Decision{Render: true}, g.Navigate(context.Background(), "/", true))
	g.Wait()
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Middleware(nil, "")(ok)

	cases := []struct {
		name     string
		path     string
		cookie   bool
		wantCode int
	}{
		{"auth route without cookie", "/signin", false, http.StatusOK},
		{"reset route without cookie", "/reset/uid/token", false, http.StatusOK},
		{"protected without cookie", "/listing", false, http.StatusFound},
		{"protected with cookie", "/listing", true, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.cookie {
				req.AddCookie(&http.Cookie{Name: session.AccessCookie, Value: "x"})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tc.wantCode, rec.Code)
			if tc.wantCode == http.StatusFound {
				require.Equal(t, "/signin", rec.Header().Get("Location"))
			}
		})
	}
}
