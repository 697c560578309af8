package clients

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ecar-admin/admin-gateway/internal/clients/api"
	"github.com/ecar-admin/admin-gateway/internal/clients/identity"
	"github.com/ecar-admin/admin-gateway/internal/clients/transport"
	"github.com/ecar-admin/admin-gateway/internal/config"
)

// Clients агрегирует клиенты upstream REST API.
type Clients struct {
	Identity *identity.Client
	API      *api.Client

	transport *http.Transport
}

// New строит общий http.Client с цепочкой декораторов и клиенты поверх него.
func New(cfg config.Config, log *slog.Logger) (*Clients, error) {
	const op = "internal/clients/New"

	base := cfg.Upstream.BaseURL
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: unsupported base url scheme %q", op, u.Scheme)
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = 16
	tr.IdleConnTimeout = 90 * time.Second

	// Цепочка: metadata -> timeout -> logging -> metrics.
	// Логгер logging берётся из контекста запроса (request_id входящего запроса).
	hc := &http.Client{
		Transport: transport.Chain(tr,
			transport.WithMetadata(cfg.Upstream.UserAgent),
			transport.WithTimeout(cfg.Upstream.Timeout),
			transport.WithLogging(nil),
			transport.WithMetrics(),
		),
		// Редиректы upstream не прозрачны для bearer: отдаём их как есть.
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	log.Info("upstream clients configured",
		slog.String("host", u.Host),
		slog.Duration("timeout", cfg.Upstream.Timeout),
	)

	return &Clients{
		Identity:  identity.New(base, hc),
		API:       api.New(base, hc),
		transport: tr,
	}, nil
}

// Close закрывает простаивающие соединения.
func (c *Clients) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}
