// guard — решение о навигации: какие маршруты открыты без входа, куда
// перенаправить неаутентифицированного пользователя и когда запустить
// фоновое обновление сессии.
package guard

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ecar-admin/admin-gateway/internal/metrics"
	"github.com/ecar-admin/admin-gateway/internal/models"
	"github.com/ecar-admin/admin-gateway/internal/session"
)

// DefaultAuthPrefixes — маршруты входа/регистрации/восстановления пароля.
var DefaultAuthPrefixes = []string{"/signin", "/signup", "/forgot-password", "/reset"}

const (
	defaultSignInPath     = "/signin"
	defaultRefreshTimeout = 10 * time.Second
)

// Refresher обновляет сессию и возвращает текущего пользователя (GET /api/me).
type Refresher interface {
	Me(ctx context.Context) (models.User, error)
}

// UserSetter — приёмник снимка пользователя (session.Store).
type UserSetter interface {
	Set(u models.User)
}

type Options struct {
	AuthPrefixes   []string
	SignInPath     string
	Refresher      Refresher
	Store          UserSetter
	Logger         *slog.Logger
	RefreshTimeout time.Duration
}

// Decision — результат навигации. Redirect непуст, только если Render=false.
type Decision struct {
	Render   bool
	Redirect string
}

type Guard struct {
	prefixes  []string
	signIn    string
	refresher Refresher
	store     UserSetter
	log       *slog.Logger
	timeout   time.Duration

	wg sync.WaitGroup
}

func New(opts Options) *Guard {
	g := &Guard{
		prefixes:  opts.AuthPrefixes,
		signIn:    opts.SignInPath,
		refresher: opts.Refresher,
		store:     opts.Store,
		log:       opts.Logger,
		timeout:   opts.RefreshTimeout,
	}

	if len(g.prefixes) == 0 {
		g.prefixes = DefaultAuthPrefixes
	}
	if g.signIn == "" {
		g.signIn = defaultSignInPath
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	if g.timeout <= 0 {
		g.timeout = defaultRefreshTimeout
	}

	return g
}

// IsAuthRoute сообщает, что path начинается с одного из auth-префиксов.
func (g *Guard) IsAuthRoute(path string) bool {
	return isAuthRoute(g.prefixes, path)
}

func isAuthRoute(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Navigate принимает решение для одного события навигации:
//   - auth-маршрут — рендер без редиректа и без обновления;
//   - не вошёл — редирект на вход, обновление не запускается;
//   - вошёл — рендер сразу и ровно одно фоновое обновление сессии.
//
// Фоновое обновление не наследует отмену ctx: навигация не ждёт его.
// Успех кладёт пользователя в Store, сбой только логируется.
func (g *Guard) Navigate(ctx context.Context, path string, isLogged bool) Decision {
	if g.IsAuthRoute(path) {
		return Decision{Render: true}
	}

	if !isLogged {
		return Decision{Redirect: g.signIn}
	}

	g.refreshInBackground(ctx, path)

	return Decision{Render: true}
}

func (g *Guard) refreshInBackground(ctx context.Context, path string) {
	if g.refresher == nil {
		return
	}

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer cancel()

		user, err := g.refresher.Me(bg)
		if err != nil {
			metrics.GuardRefresh.WithLabelValues(metrics.ResultFailed).Inc()
			g.log.WarnContext(bg, "guard_refresh_failed",
				slog.String("path", path),
				slog.String("err", err.Error()),
			)
			return
		}

		metrics.GuardRefresh.WithLabelValues(metrics.ResultOK).Inc()
		if g.store != nil {
			g.store.Set(user)
		}
	}()
}

// Wait блокируется до завершения всех запущенных фоновых обновлений.
func (g *Guard) Wait() {
	g.wg.Wait()
}

// Middleware — серверное решение первого рендера для статики фронтенда:
// isLogged — наличие cookie access. Защищённый маршрут без неё получает
// 302 на страницу входа. Обновление сессии здесь не выполняется: его
// запускает клиент через GET /api/me.
func Middleware(prefixes []string, signInPath string) func(http.Handler) http.Handler {
	if len(prefixes) == 0 {
		prefixes = DefaultAuthPrefixes
	}
	if signInPath == "" {
		signInPath = defaultSignInPath
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isAuthRoute(prefixes, r.URL.Path) || session.HasAccessCookie(r) {
				next.ServeHTTP(w, r)
				return
			}

			http.Redirect(w, r, signInPath, http.StatusFound)
		})
	}
}
