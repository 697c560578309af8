package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ecar-admin/admin-gateway/internal/metrics"
	"github.com/ecar-admin/admin-gateway/pkg/log"
)

// WithLogging — логирование исходящих вызовов.
// Поведение:
//   - берёт X-Request-Id из заголовка (или генерирует UUID и добавляет);
//   - пишет одну финальную запись уровня Info: msg="upstream", status, dur;
//     ошибки транспорта — уровнем Warn.
//
// Безопасность: не логирует тело, query и заголовок Authorization.
func WithLogging(base *slog.Logger) Decorator {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			l := base
			if l == nil {
				l = log.From(r.Context())
			}

			rid := r.Header.Get("X-Request-Id")
			if rid == "" {
				rid = uuid.NewString()
				r = r.Clone(r.Context())
				r.Header.Set("X-Request-Id", rid)
			}

			l = l.With(
				slog.String("request_id", rid),
				slog.String("method", r.Method),
				slog.String("host", r.URL.Host),
				slog.String("path", r.URL.Path),
			)

			resp, err := next.RoundTrip(r)
			if err != nil {
				l.Warn("upstream",
					slog.String("err", err.Error()),
					slog.Duration("dur", time.Since(start)),
				)
				return nil, err
			}

			l.Info("upstream",
				slog.Int("status", resp.StatusCode),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}

// WithMetrics учитывает исходящие вызовы в Prometheus.
func WithMetrics() Decorator {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			code := 0
			if err == nil {
				code = resp.StatusCode
			}
			metrics.ObserveUpstream(r.Method, code, time.Since(start).Seconds())

			return resp, err
		})
	}
}
