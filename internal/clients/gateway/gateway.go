// gateway — Go-клиент сессионных эндпойнтов admin-gateway. Cookie access/refresh
// живут в cookiejar клиента, как в браузере.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/ecar-admin/admin-gateway/internal/models"
)

// ErrNotOK — эндпойнт ответил ok=false.
var ErrNotOK = errors.New("gateway: not ok")

// ResponseError — ответ ok=false с сообщением сервера.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("gateway: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *ResponseError) Unwrap() error { return ErrNotOK }

type Client struct {
	baseURL string
	http    *http.Client
}

// New создаёт клиента с собственным cookie jar поверх транспорта hc
// (nil — http.DefaultTransport).
func New(baseURL string, hc *http.Client) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("gateway.New: %w", err)
	}

	c := &http.Client{Jar: jar}
	if hc != nil {
		c.Transport = hc.Transport
		c.Timeout = hc.Timeout
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: c}, nil
}

// Jar — cookie jar клиента.
func (c *Client) Jar() http.CookieJar { return c.http.Jar }

// Me обновляет сессию (GET /api/me) и возвращает пользователя.
// ok=false — *ResponseError с message сервера.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	const op = "gateway.Me"

	var out models.MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &out); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if out.User == nil {
		return models.User{}, fmt.Errorf("%s: empty user", op)
	}

	return *out.User, nil
}

// Logout удаляет cookie сессии (POST /api/logout).
func (c *Client) Logout(ctx context.Context) error {
	const op = "gateway.Logout"

	var out models.StatusResponse
	if err := c.do(ctx, http.MethodPost, "/api/logout", nil, &out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Login выполняет вход (POST /api/login); cookie сессии сохраняются в jar.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	const op = "gateway.Login"

	var out models.MeResponse
	in := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/login", in, &out); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if out.User == nil {
		return models.User{}, nil
	}

	return *out.User, nil
}

// envelope — общая часть ответов сессионных эндпойнтов.
type envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &ResponseError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if !env.OK || resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &ResponseError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
