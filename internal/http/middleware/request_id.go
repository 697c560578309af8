package middleware

import (
	"context"
	"net/http"

	"github.com/ecar-admin/admin-gateway/internal/clients/transport"

	"github.com/google/uuid"
)

// maxRequestIDLen — входящий id длиннее считается мусором и заменяется.
const maxRequestIDLen = 128

// RequestID обеспечивает наличие X-Request-Id:
//  1. читает заголовок X-Request-Id, если он есть и разумной длины;
//  2. иначе генерирует UUID v4;
//  3. кладёт id в Response Header, Request Header (для errors.WriteError) и в контекст
//     по ключу transport.CtxRequestID (его читает transport.WithMetadata).
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
				r.Header.Set("X-Request-Id", id)
			}
			w.Header().Set("X-Request-Id", id)

			ctx := context.WithValue(r.Context(), transport.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
