package session

import (
	"net/http"

	"github.com/ecar-admin/admin-gateway/internal/config"
	"github.com/ecar-admin/admin-gateway/internal/models"
)

// Имена cookie с токенами.
const (
	AccessCookie  = "access"
	RefreshCookie = "refresh"
)

// SetTokenCookies записывает обе cookie пары: HttpOnly, SameSite=Strict, Path=/.
func SetTokenCookies(w http.ResponseWriter, pair models.TokenPair, cfg config.CookieConfig) {
	http.SetCookie(w, tokenCookie(AccessCookie, pair.Access, int(cfg.AccessTTL.Seconds()), cfg))
	http.SetCookie(w, tokenCookie(RefreshCookie, pair.Refresh, int(cfg.RefreshTTL.Seconds()), cfg))
}

// ClearTokenCookies удаляет обе cookie независимо от их наличия.
func ClearTokenCookies(w http.ResponseWriter, cfg config.CookieConfig) {
	http.SetCookie(w, tokenCookie(AccessCookie, "", -1, cfg))
	http.SetCookie(w, tokenCookie(RefreshCookie, "", -1, cfg))
}

func tokenCookie(name, value string, maxAge int, cfg config.CookieConfig) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Jar — источник и приёмник токенов текущего запроса.
type Jar interface {
	// Tokens возвращает известную пару (поля могут быть пустыми).
	Tokens() models.TokenPair
	// SetTokens сохраняет новую пару.
	SetTokens(pair models.TokenPair)
}

type requestJar struct {
	w   http.ResponseWriter
	r   *http.Request
	cfg config.CookieConfig
	set *models.TokenPair
}

// NewRequestJar читает cookie из r и пишет Set-Cookie в w.
// Записанная пара видна последующим Tokens() в рамках того же запроса.
func NewRequestJar(w http.ResponseWriter, r *http.Request, cfg config.CookieConfig) Jar {
	return &requestJar{w: w, r: r, cfg: cfg}
}

func (j *requestJar) Tokens() models.TokenPair {
	if j.set != nil {
		return *j.set
	}

	return models.TokenPair{
		Access:  cookieValue(j.r, AccessCookie),
		Refresh: cookieValue(j.r, RefreshCookie),
	}
}

func (j *requestJar) SetTokens(pair models.TokenPair) {
	SetTokenCookies(j.w, pair, j.cfg)
	j.set = &pair
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// HasAccessCookie — признак isLogged для первого рендера.
func HasAccessCookie(r *http.Request) bool {
	return cookieValue(r, AccessCookie) != ""
}
