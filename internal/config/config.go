// config - источник загрузки конфигурации для admin-gateway.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cookies  CookieConfig   `yaml:"cookies"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Routes   RoutesConfig   `yaml:"routes"`
	Frontend FrontendConfig `yaml:"frontend"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

// TimeoutConfig — таймаут обработки входящего запроса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"15s"`
}

// HTTPConfig — публичный REST-сервер шлюза.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// UpstreamConfig — внешний REST API (identity + ресурсы дилерского центра).
type UpstreamConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"BASE_API_URL"        env-default:"http://localhost:8000/api"`
	Timeout   time.Duration `yaml:"timeout"    env:"UPSTREAM_TIMEOUT"    env-default:"10s"`
	UserAgent string        `yaml:"user_agent" env:"UPSTREAM_USER_AGENT" env-default:"admin-gateway"`
}

// CookieConfig — атрибуты cookie с токенами.
type CookieConfig struct {
	Secure     bool          `yaml:"secure"      env:"COOKIE_SECURE"      env-default:"true"`
	Domain     string        `yaml:"domain"      env:"COOKIE_DOMAIN"`
	AccessTTL  time.Duration `yaml:"access_ttl"  env:"COOKIE_ACCESS_TTL"  env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"COOKIE_REFRESH_TTL" env-default:"720h"`
}

// SessionConfig — параметры обновления токенов.
//
// RotationGrace — окно, в течение которого повторное предъявление уже
// ротированного refresh-токена получает ту же новую пару.
// ExpirySkew — запас до exp access-токена, после которого он считается истёкшим.
type SessionConfig struct {
	RotationGrace  time.Duration `yaml:"rotation_grace"  env:"SESSION_ROTATION_GRACE"  env-default:"15s"`
	ExpirySkew     time.Duration `yaml:"expiry_skew"     env:"SESSION_EXPIRY_SKEW"     env-default:"30s"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout" env:"SESSION_REFRESH_TIMEOUT" env-default:"10s"`
}

// RedisConfig — общий кэш ротаций между инстансами; пустой URL отключает Redis.
type RedisConfig struct {
	URL    string `yaml:"url"    env:"REDIS_URL"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"gw:rot:"`
}

// RoutesConfig — классификация маршрутов для Route Guard.
type RoutesConfig struct {
	SignInPath   string   `yaml:"signin_path"   env:"ROUTES_SIGNIN_PATH"   env-default:"/signin"`
	AuthPrefixes []string `yaml:"auth_prefixes" env:"ROUTES_AUTH_PREFIXES" env-default:"/signin,/signup,/forgot-password,/reset" env-separator:","`
}

// FrontendConfig — каталог собранного фронтенда; пустой — статика не раздаётся.
type FrontendConfig struct {
	Dir string `yaml:"dir" env:"FRONTEND_DIR"`
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	read := func(p string) (*Config, error) {
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		// ReadConfig уже накладывает ENV поверх файла.
		return validate(&cfg)
	}

	// 1) --config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}

		return read(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", envPath, err)
		}

		return read(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return read("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return validate(&cfg)
}

func validate(cfg *Config) (*Config, error) {
	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("upstream base_url is empty")
	}

	if cfg.Cookies.AccessTTL <= 0 || cfg.Cookies.RefreshTTL <= 0 {
		return nil, fmt.Errorf("cookie ttl must be positive")
	}

	if cfg.Routes.SignInPath == "" {
		return nil, fmt.Errorf("routes signin_path is empty")
	}

	// Окно дедупликации ротаций: без него конкурентные запросы с одним
	// refresh-токеном инвалидируют друг друга.
	if cfg.Session.RotationGrace <= 0 {
		return nil, fmt.Errorf("session rotation_grace must be positive")
	}

	return cfg, nil
}
