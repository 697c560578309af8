// rest — JSON-клиент upstream REST API и типизированная ошибка HTTPError.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
)

// maxErrorBody — предел чтения тела ответа с ошибкой.
const maxErrorBody = 64 << 10

// HTTPError — ответ upstream с кодом вне 2xx.
// Detail — сообщение из тела ответа (detail / message / первая ошибка поля),
// либо текст статуса, если тело не содержит ничего пригодного.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
}

// IsStatus сообщает, что err (или обёрнутая в неё ошибка) — HTTPError с кодом code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// StatusOf возвращает код HTTPError или 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// NewHTTPError читает тело resp и собирает HTTPError. Тело не закрывает.
func NewHTTPError(resp *http.Response) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	return &HTTPError{
		StatusCode: resp.StatusCode,
		Detail:     detailFrom(body, resp.StatusCode),
	}
}

// detailFrom извлекает человекочитаемое сообщение:
// detail → message → первая ошибка поля (по алфавиту) → текст статуса.
func detailFrom(body []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "message"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}

		keys := make([]string, 0, len(payload))
		for k := range payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if list, ok := payload[k].([]any); ok && len(list) > 0 {
				if s, ok := list[0].(string); ok && s != "" {
					return s
				}
			}
		}
	}

	if text := http.StatusText(status); text != "" {
		return text
	}

	return "unexpected status"
}
