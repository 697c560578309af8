// errors стандартизирует ответы об ошибках HTTP-слоя admin-gateway.
// На вход он принимает ошибку (ответ upstream REST API, сбой транспорта,
// отсутствие сессии), а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message.
//
// Для 4xx от upstream message — detail из его ответа: это пользовательские
// сообщения валидации. Для 5xx и сетевых сбоев детали наружу не отдаются.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/ecar-admin/admin-gateway/internal/clients/rest"
	"github.com/ecar-admin/admin-gateway/internal/credentials"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrInvalidArgument — некорректный вход на стороне шлюза (битый JSON, id).
var ErrInvalidArgument = errors.New("invalid argument")

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует входную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500/internal;
//   - credentials.ErrNoSession - 401;
//   - ErrInvalidArgument - 400;
//   - отмена/дедлайн контекста - 499/504;
//   - *rest.HTTPError - маппинг статуса upstream через baseFromStatus();
//   - сетевая ошибка - 503;
//   - прочее - 500/internal.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)

	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

func classify(err error) (int, string, string) {
	if err == nil {
		return http.StatusInternalServerError, "internal", "internal error"
	}

	// Порядок важен: ErrNoSession может оборачивать HTTPError 401 upstream.
	if errors.Is(err, credentials.ErrNoSession) {
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	}

	if errors.Is(err, ErrInvalidArgument) {
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	}

	if errors.Is(err, context.Canceled) {
		return StatusClientClosedRequest, "canceled", "canceled"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	}

	var httpErr *rest.HTTPError
	if errors.As(err, &httpErr) {
		status, code, msg := baseFromStatus(httpErr.StatusCode)
		if status < http.StatusInternalServerError && httpErr.Detail != "" {
			msg = httpErr.Detail
		}
		return status, code, msg
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
		}
		return http.StatusServiceUnavailable, "unavailable", "service unavailable"
	}

	return http.StatusInternalServerError, "internal", "internal error"
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// baseFromStatus — маппинг статуса upstream -> HTTP/FE-код/сообщение:
//   - 400, 422 -> 400 invalid_argument
//   - 401 -> 401 unauthenticated
//   - 403 -> 403 permission_denied
//   - 404 -> 404 not_found
//   - 405 -> 405 method_not_allowed
//   - 409 -> 409 already_exists
//   - 412 -> 412 failed_precondition
//   - 413 -> 413 too_large
//   - 429 -> 429 resource_exhausted
//   - 503 -> 503 unavailable
//   - 504 -> 504 deadline_exceeded
//   - прочие 5xx -> 502 bad_gateway
//   - прочие 4xx -> 400 invalid_argument
func baseFromStatus(code int) (int, string, string) {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case http.StatusUnauthorized:
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case http.StatusForbidden:
		return http.StatusForbidden, "permission_denied", "permission denied"
	case http.StatusNotFound:
		return http.StatusNotFound, "not_found", "not found"
	case http.StatusMethodNotAllowed:
		return http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed"
	case http.StatusConflict:
		return http.StatusConflict, "already_exists", "already exists"
	case http.StatusPreconditionFailed:
		return http.StatusPreconditionFailed, "failed_precondition", "failed precondition"
	case http.StatusRequestEntityTooLarge:
		return http.StatusRequestEntityTooLarge, "too_large", "request too large"
	case http.StatusTooManyRequests:
		return http.StatusTooManyRequests, "resource_exhausted", "resource exhausted"
	case http.StatusServiceUnavailable:
		return http.StatusServiceUnavailable, "unavailable", "service unavailable"
	case http.StatusGatewayTimeout:
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	}

	if code >= http.StatusInternalServerError {
		return http.StatusBadGateway, "bad_gateway", "upstream error"
	}

	return http.StatusBadRequest, "invalid_argument", "invalid argument"
}
