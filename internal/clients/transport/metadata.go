package transport

import (
	"context"
	"net/http"
)

type CtxKey string

const (
	CtxRequestID CtxKey = "request_id"
	CtxAuthToken CtxKey = "auth_token"
)

// WithAuthToken кладёт access-токен в контекст для исходящих вызовов.
func WithAuthToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CtxAuthToken, token)
}

// AuthToken достаёт access-токен из контекста.
func AuthToken(ctx context.Context) string {
	tok, _ := ctx.Value(CtxAuthToken).(string)
	return tok
}

// RequestID достаёт X-Request-Id из контекста.
func RequestID(ctx context.Context) string {
	rid, _ := ctx.Value(CtxRequestID).(string)
	return rid
}

// WithMetadata добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если есть в контексте),
//   - Authorization: Bearer <token> (если есть в контексте и заголовок не задан явно),
//   - User-Agent (если передан параметром).
//
// Исходный запрос не модифицируется.
func WithMetadata(userAgent string) Decorator {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			ctx := r.Context()
			rid := RequestID(ctx)
			tok := AuthToken(ctx)

			if rid == "" && tok == "" && userAgent == "" {
				return next.RoundTrip(r)
			}

			out := r.Clone(ctx)
			if rid != "" && out.Header.Get("X-Request-Id") == "" {
				out.Header.Set("X-Request-Id", rid)
			}
			if tok != "" && out.Header.Get("Authorization") == "" {
				out.Header.Set("Authorization", "Bearer "+tok)
			}
			if userAgent != "" {
				out.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(out)
		})
	}
}
