// identity — клиент upstream identity API: ротация токенов, текущий
// пользователь, вход, регистрация, сброс пароля.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ecar-admin/admin-gateway/internal/clients/rest"
	"github.com/ecar-admin/admin-gateway/internal/clients/transport"
	"github.com/ecar-admin/admin-gateway/internal/models"
)

// Пути upstream identity API.
const (
	pathTokenRefresh  = "/auth/token/refresh"
	pathCurrentUser   = "/auth/user/"
	pathLogin         = "/auth/login/"
	pathRegistration  = "/auth/registration/"
	pathPasswordReset = "/auth/password/reset"
	pathUserRoles     = "/users/me/roles/"
)

type Client struct {
	rest *rest.Client
}

func New(baseURL string, hc *http.Client) *Client {
	return &Client{rest: rest.New(baseURL, hc)}
}

// RefreshTokens обменивает refresh-токен на новую пару.
// Помимо пары возвращает «сырое» тело ответа для диагностики; валидацию
// полноты пары выполняет вызывающая сторона.
// Пустой refresh отправляется как есть: ошибку должен вернуть upstream.
// Нераспознанное 2xx-тело (не JSON, не объект, токены не строками) ошибкой
// обмена не считается: возвращается пустая пара и то, что удалось разобрать.
func (c *Client) RefreshTokens(ctx context.Context, refresh string) (models.TokenPair, map[string]any, error) {
	const op = "identity.RefreshTokens"

	// Запрос не должен унаследовать bearer входящего запроса.
	ctx = transport.WithAuthToken(ctx, "")

	var raw []byte
	if err := c.rest.JSON(ctx, http.MethodPost, pathTokenRefresh, map[string]string{"refresh": refresh}, &raw); err != nil {
		return models.TokenPair{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		body = nil
	}

	var pair models.TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return models.TokenPair{}, body, nil
	}

	return pair, body, nil
}

// CurrentUser возвращает пользователя, которому принадлежит access.
func (c *Client) CurrentUser(ctx context.Context, access string) (models.User, error) {
	const op = "identity.CurrentUser"

	var u models.User
	if err := c.rest.JSON(transport.WithAuthToken(ctx, access), http.MethodGet, pathCurrentUser, nil, &u); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

// Login выполняет вход по e-mail/паролю.
func (c *Client) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	const op = "identity.Login"

	ctx = transport.WithAuthToken(ctx, "")

	var out models.LoginResponse
	in := models.LoginRequest{Email: email, Password: password}
	if err := c.rest.JSON(ctx, http.MethodPost, pathLogin, in, &out); err != nil {
		return models.LoginResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Register создаёт учётную запись.
func (c *Client) Register(ctx context.Context, in models.SignupRequest) (models.SignupResponse, error) {
	const op = "identity.Register"

	ctx = transport.WithAuthToken(ctx, "")

	var out models.SignupResponse
	if err := c.rest.JSON(ctx, http.MethodPost, pathRegistration, in, &out); err != nil {
		return models.SignupResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// SetAdminRole назначает пользователю роль admin. Пустой access — запрос без bearer.
func (c *Client) SetAdminRole(ctx context.Context, access string, userID int64) error {
	const op = "identity.SetAdminRole"

	in := map[string]any{"user": userID, "role": "admin"}
	if err := c.rest.JSON(transport.WithAuthToken(ctx, access), http.MethodPost, pathUserRoles, in, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ResetPassword запрашивает письмо для сброса пароля.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	const op = "identity.ResetPassword"

	ctx = transport.WithAuthToken(ctx, "")

	in := models.ResetPasswordRequest{Email: email}
	if err := c.rest.JSON(ctx, http.MethodPost, pathPasswordReset, in, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
