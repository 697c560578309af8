// Модели сессии: пара токенов, снимок пользователя и конверты ответов
// сессионных эндпойнтов (/api/me, /api/logout, /api/login).
package models

// TokenPair — пара access/refresh, выдаваемая upstream identity API.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Complete сообщает, что оба токена присутствуют.
func (p TokenPair) Complete() bool {
	return p.Access != "" && p.Refresh != ""
}

// User — снимок аутентифицированного пользователя.
// Нулевое значение — «пустой» снимок.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ProfileImage string `json:"profile_image,omitempty"`
	Description  string `json:"description,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
	IsStaff      *bool  `json:"is_staff,omitempty"`
	IsSuperuser  *bool  `json:"is_superuser,omitempty"`
}

// IsZero сообщает, что снимок пуст.
func (u User) IsZero() bool {
	return u.ID == 0 && u.Email == "" && u.FirstName == "" && u.LastName == "" &&
		u.ProfileImage == "" && u.Description == "" &&
		u.IsActive == nil && u.IsStaff == nil && u.IsSuperuser == nil
}

// MeResponse — ответ GET /api/me.
// Outside — диагностические данные, собранные до сбоя (только при ok=false).
type MeResponse struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message"`
	User    *User          `json:"user,omitempty"`
	Outside map[string]any `json:"outside,omitempty"`
}

// StatusResponse — ответ эндпойнтов без полезной нагрузки (logout, reset).
type StatusResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// LoginRequest — вход по e-mail/паролю.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse — ответ upstream /auth/login/.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user,omitempty"`
}

// SignupRequest — регистрация администратора.
type SignupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// SignupResponse — ответ upstream /auth/registration/.
type SignupResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    struct {
		PK    int64  `json:"pk"`
		Email string `json:"email"`
	} `json:"user"`
}

// ResetPasswordRequest — запрос письма для сброса пароля.
type ResetPasswordRequest struct {
	Email string `json:"email"`
}
