// credentials выдаёт bearer для исходящих вызовов API: берёт access из cookie,
// а если он истёк или отсутствует — прозрачно ротирует пару по refresh.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecar-admin/admin-gateway/internal/clients/rest"
	"github.com/ecar-admin/admin-gateway/internal/metrics"
	"github.com/ecar-admin/admin-gateway/internal/models"
	"github.com/ecar-admin/admin-gateway/internal/session"
	logctx "github.com/ecar-admin/admin-gateway/pkg/log"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession — действующей сессии нет: cookie отсутствуют или upstream
// отверг refresh-токен.
var ErrNoSession = errors.New("no valid session")

// Rotator — обмен refresh-токена на новую пару (session.Service.Rotate).
// Реализация обязана схлопывать конкурентные обмены одного токена.
type Rotator interface {
	Rotate(ctx context.Context, refresh string) (models.TokenPair, map[string]any, error)
}

type Resolver struct {
	rotator Rotator
	skew    time.Duration
	now     func() time.Time
	parser  *jwt.Parser
}

// NewResolver — skew задаёт запас до exp, после которого access считается истёкшим.
func NewResolver(rotator Rotator, skew time.Duration) *Resolver {
	return &Resolver{
		rotator: rotator,
		skew:    skew,
		now:     time.Now,
		parser:  jwt.NewParser(),
	}
}

// Resolve возвращает пару, пригодную для вызова upstream.
//
// Порядок: действующий access из jar → ротация по refresh (новая пара
// записывается в jar) → ErrNoSession. Сбой upstream при ротации (5xx, сеть)
// возвращается как есть, без ErrNoSession.
func (r *Resolver) Resolve(ctx context.Context, jar session.Jar) (models.TokenPair, error) {
	const op = "credentials.Resolve"

	cur := jar.Tokens()
	if cur.Access != "" && r.usable(cur.Access) {
		metrics.CredentialsResolve.WithLabelValues(metrics.SourceCookie).Inc()
		return cur, nil
	}

	if cur.Refresh == "" {
		metrics.CredentialsResolve.WithLabelValues(metrics.SourceMissing).Inc()
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	pair, _, err := r.rotator.Rotate(ctx, cur.Refresh)
	if err != nil {
		metrics.CredentialsResolve.WithLabelValues(metrics.SourceFailed).Inc()
		logctx.From(ctx).WarnContext(ctx, "credentials_refresh_failed", slog.String("err", err.Error()))

		if rejected(err) {
			return models.TokenPair{}, fmt.Errorf("%s: %w: %w", op, ErrNoSession, err)
		}
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	jar.SetTokens(pair)
	metrics.CredentialsResolve.WithLabelValues(metrics.SourceRefreshed).Inc()

	return pair, nil
}

// usable — access не истекает в ближайшие skew. Токен без exp или
// непрозрачный (не JWT) считается действующим: решает upstream.
func (r *Resolver) usable(access string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := r.parser.ParseUnverified(access, &claims); err != nil {
		return true
	}

	if claims.ExpiresAt == nil {
		return true
	}

	return claims.ExpiresAt.Time.After(r.now().Add(r.skew))
}

// rejected — ротация отвергнута по существу, а не из-за недоступности upstream.
func rejected(err error) bool {
	if errors.Is(err, session.ErrTokensUnavailable) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	code := rest.StatusOf(err)
	return code >= http.StatusBadRequest && code < http.StatusInternalServerError
}
