package middleware

import (
	"context"
	"net/http"

	"github.com/ecar-admin/admin-gateway/internal/clients/transport"
	"github.com/ecar-admin/admin-gateway/internal/config"
	apierrors "github.com/ecar-admin/admin-gateway/internal/errors"
	"github.com/ecar-admin/admin-gateway/internal/models"
	"github.com/ecar-admin/admin-gateway/internal/session"
)

// CredentialResolver — источник пары токенов для запроса (credentials.Resolver).
type CredentialResolver interface {
	Resolve(ctx context.Context, jar session.Jar) (models.TokenPair, error)
}

// Credentials разрешает access-токен из cookie запроса (с прозрачной ротацией)
// и кладёт его в контекст по ключу transport.CtxAuthToken: его читает
// transport.WithMetadata при вызовах upstream. Ротированная пара уходит
// клиенту в Set-Cookie того же ответа. Без сессии — 401.
func Credentials(res CredentialResolver, cookies config.CookieConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			jar := session.NewRequestJar(w, r, cookies)

			pair, err := res.Resolve(r.Context(), jar)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := transport.WithAuthToken(r.Context(), pair.Access)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
