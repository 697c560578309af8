// session — сессия администратора: ротация токенов, снимок пользователя,
// cookie с токенами и кэш окна ротации.
//
// Service безопасен для конкурентного использования: параллельные ротации
// одного refresh-токена схлопываются в один вызов upstream.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecar-admin/admin-gateway/internal/clients/rest"
	"github.com/ecar-admin/admin-gateway/internal/config"
	"github.com/ecar-admin/admin-gateway/internal/metrics"
	"github.com/ecar-admin/admin-gateway/internal/models"
	"github.com/ecar-admin/admin-gateway/pkg/redact"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrExchangeFailed — upstream не обменял refresh-токен (не-2xx или сеть).
	ErrExchangeFailed = errors.New("token exchange failed")

	// ErrTokensUnavailable — ответ обмена не содержит access и refresh одновременно.
	ErrTokensUnavailable = errors.New("tokens are not available")

	// ErrUserFetchFailed — пара получена, но текущего пользователя получить не удалось.
	ErrUserFetchFailed = errors.New("user fetch failed")
)

// Сообщения ответа GET /api/me.
const (
	MsgRefreshed         = "succesfully refreshed tokens."
	MsgExchangeFailed    = "Error updating tokens"
	MsgTokensUnavailable = "tokens are not available"
	MsgUserFetchFailed   = "Failed to fetch user."
)

//go:generate mockgen -source=service.go -destination=../../mocks/identity.go -package=mocks

// Identity — upstream identity API.
type Identity interface {
	RefreshTokens(ctx context.Context, refresh string) (models.TokenPair, map[string]any, error)
	CurrentUser(ctx context.Context, access string) (models.User, error)
	Login(ctx context.Context, email, password string) (models.LoginResponse, error)
	Register(ctx context.Context, in models.SignupRequest) (models.SignupResponse, error)
	SetAdminRole(ctx context.Context, access string, userID int64) error
	ResetPassword(ctx context.Context, email string) error
}

// Stage — шаг обновления сессии, на котором произошёл сбой.
type Stage string

const (
	StageExchange  Stage = "exchange"
	StageValidate  Stage = "validate"
	StageFetchUser Stage = "fetch_user"
)

// RefreshError — терминальный сбой обновления сессии.
// Outside — данные, полученные до сбоя, с замаскированными токенами.
type RefreshError struct {
	Stage   Stage
	Err     error
	Outside map[string]any
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("session refresh %s: %v", e.Stage, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// Message — текст для поля message ответа.
func (e *RefreshError) Message() string {
	switch e.Stage {
	case StageValidate:
		return MsgTokensUnavailable
	case StageFetchUser:
		return MsgUserFetchFailed
	default:
		return MsgExchangeFailed
	}
}

// Result — итог обновления или входа.
// Rotated — новая пара получена и должна быть сохранена в cookie,
// в том числе при ErrUserFetchFailed.
type Result struct {
	Pair    models.TokenPair
	User    models.User
	Rotated bool
	Outside map[string]any
}

type Service struct {
	identity Identity
	cfg      config.SessionConfig
	log      *slog.Logger
	rcache   RotationCache

	group singleflight.Group
}

// New создаёт сервис с кэшем ротаций в памяти процесса.
func New(identity Identity, cfg config.SessionConfig, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		identity: identity,
		cfg:      cfg,
		log:      log,
		rcache:   NewMemoryRotationCache(cfg.RotationGrace),
	}
}

// SetRotationCache заменяет кэш ротаций (например, на общий Redis).
func (s *Service) SetRotationCache(c RotationCache) {
	s.rcache = c
}

// rotation — разделяемый результат одного обмена.
type rotation struct {
	pair   models.TokenPair
	raw    map[string]any
	cached bool
}

// Rotate обменивает refresh-токен на новую пару.
//
// Конкурентные вызовы с одним токеном получают результат одного обмена.
// Повторное предъявление уже ротированного токена в пределах RotationGrace
// отдаёт пару из кэша. Сам обмен выполняется на контексте, отвязанном от
// отмены вызывающего: уход одного клиента не роняет ротацию для остальных.
// Пустой refresh уходит в upstream как есть.
func (s *Service) Rotate(ctx context.Context, refresh string) (models.TokenPair, map[string]any, error) {
	const op = "session.Rotate"

	key := HashToken(refresh)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.exchange(ctx, refresh)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return models.TokenPair{}, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	case res = <-ch:
	}

	rot, _ := res.Val.(rotation)
	if res.Err != nil {
		return models.TokenPair{}, rot.raw, fmt.Errorf("%s: %w", op, res.Err)
	}

	if res.Shared || rot.cached {
		metrics.SessionRefresh.WithLabelValues(metrics.ResultSharedRotation).Inc()
	}

	return rot.pair, rot.raw, nil
}

func (s *Service) exchange(ctx context.Context, refresh string) (rotation, error) {
	log := s.log.With(slog.String("op", "session.exchange"))

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout())
	defer cancel()

	if refresh != "" && s.rcache != nil {
		pair, ok, err := s.rcache.Get(rctx, refresh)
		switch {
		case err != nil:
			log.WarnContext(ctx, "rotation_cache_get_failed", slog.String("err", err.Error()))
		case ok:
			return rotation{pair: pair, cached: true}, nil
		}
	}

	pair, raw, err := s.identity.RefreshTokens(rctx, refresh)
	if err != nil {
		result := metrics.ResultExchangeFailed
		if code := rest.StatusOf(err); code == http.StatusUnauthorized || code == http.StatusForbidden {
			result = metrics.ResultUpstreamRejected
		}
		metrics.SessionRefresh.WithLabelValues(result).Inc()

		return rotation{}, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	if !pair.Complete() {
		metrics.SessionRefresh.WithLabelValues(metrics.ResultTokensMissing).Inc()
		return rotation{raw: raw}, ErrTokensUnavailable
	}

	if refresh != "" && s.rcache != nil {
		if err := s.rcache.Set(rctx, refresh, pair); err != nil {
			log.WarnContext(ctx, "rotation_cache_set_failed", slog.String("err", err.Error()))
		}
	}

	metrics.SessionRefresh.WithLabelValues(metrics.ResultOK).Inc()

	return rotation{pair: pair, raw: raw}, nil
}

func (s *Service) refreshTimeout() time.Duration {
	if s.cfg.RefreshTimeout > 0 {
		return s.cfg.RefreshTimeout
	}
	return 10 * time.Second
}

// Refresh выполняет обновление сессии за один проход без повторов:
// обмен → проверка пары → (сохранение cookie вызывающим) → текущий пользователь.
//
// При ошибке возвращается *RefreshError. При сбое на шаге пользователя
// дополнительно возвращается Result с Rotated=true: пара уже выдана и должна
// быть сохранена.
func (s *Service) Refresh(ctx context.Context, refresh string) (*Result, error) {
	pair, raw, err := s.Rotate(ctx, refresh)
	if err != nil {
		if errors.Is(err, ErrTokensUnavailable) {
			return nil, &RefreshError{Stage: StageValidate, Err: err, Outside: redact.Tokens(raw)}
		}
		return nil, &RefreshError{Stage: StageExchange, Err: err}
	}

	res := &Result{Pair: pair, Rotated: true}

	user, err := s.identity.CurrentUser(ctx, pair.Access)
	if err != nil {
		metrics.SessionRefresh.WithLabelValues(metrics.ResultUserFetchFailed).Inc()

		res.Outside = redact.Tokens(raw)
		return res, &RefreshError{
			Stage:   StageFetchUser,
			Err:     fmt.Errorf("%w: %w", ErrUserFetchFailed, err),
			Outside: res.Outside,
		}
	}

	res.User = user
	return res, nil
}

// Login — вход по e-mail/паролю. Пользователь берётся из ответа входа,
// а при его отсутствии запрашивается отдельно.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	const op = "session.Login"

	out, err := s.identity.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pair := models.TokenPair{Access: out.Access, Refresh: out.Refresh}
	if !pair.Complete() {
		return nil, fmt.Errorf("%s: %w", op, ErrTokensUnavailable)
	}

	res := &Result{Pair: pair, Rotated: true}
	if out.User != nil && !out.User.IsZero() {
		res.User = *out.User
		return res, nil
	}

	user, err := s.identity.CurrentUser(ctx, pair.Access)
	if err != nil {
		return res, fmt.Errorf("%s: %w: %w", op, ErrUserFetchFailed, err)
	}
	res.User = user

	return res, nil
}

// Signup регистрирует администратора и назначает ему роль admin.
// Если роль назначить не удалось, учётная запись остаётся, а ошибка
// возвращается вместе с выданной парой.
func (s *Service) Signup(ctx context.Context, in models.SignupRequest) (*Result, error) {
	const op = "session.Signup"

	out, err := s.identity.Register(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pair := models.TokenPair{Access: out.Access, Refresh: out.Refresh}
	res := &Result{
		Pair:    pair,
		User:    models.User{ID: out.User.PK, Email: out.User.Email},
		Rotated: pair.Complete(),
	}

	if err := s.identity.SetAdminRole(ctx, pair.Access, out.User.PK); err != nil {
		s.log.WarnContext(ctx, "set_admin_role_failed",
			slog.String("email", redact.Email(out.User.Email)),
			slog.String("err", err.Error()),
		)
		return res, fmt.Errorf("%s: %w", op, err)
	}

	return res, nil
}

// ResetPassword запрашивает письмо для сброса пароля.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	const op = "session.ResetPassword"

	if err := s.identity.ResetPassword(ctx, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
