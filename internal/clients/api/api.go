// api — клиенты ресурсов дилерского центра (автомобили, марки/модели,
// продажи, профили). Bearer берётся из контекста запроса
// (transport.WithAuthToken), его кладёт credentials.Middleware.
package api

import (
	"net/http"

	"github.com/ecar-admin/admin-gateway/internal/clients/rest"
)

type Client struct {
	rest *rest.Client
}

func New(baseURL string, hc *http.Client) *Client {
	return &Client{rest: rest.New(baseURL, hc)}
}
