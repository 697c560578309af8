package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBody — предел тела успешного ответа.
const maxBody = 8 << 20

// Client — минимальный JSON-клиент поверх http.Client.
// Заголовки Authorization/X-Request-Id проставляет транспорт (см. transport.WithMetadata).
type Client struct {
	baseURL string
	http    *http.Client
}

// New создаёт клиента; завершающий "/" в baseURL отбрасывается.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// JSON выполняет запрос с JSON-телом in (nil — без тела) и декодирует ответ в out
// (nil — тело игнорируется, *[]byte — тело копируется как есть).
func (c *Client) JSON(ctx context.Context, method, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)

	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	return c.Raw(ctx, method, path, body, contentType, out)
}

// Raw выполняет запрос с произвольным телом (например, multipart/form-data).
// Не-2xx ответ возвращается как *HTTPError.
func (c *Client) Raw(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewHTTPError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil
	}

	// *[]byte — тело без декодирования; разбор на стороне вызывающего.
	if b, ok := out.(*[]byte); ok {
		*b, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
