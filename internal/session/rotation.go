package session

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"sync"
	"time"

	"github.com/ecar-admin/admin-gateway/internal/models"
)

// RotationCache помнит результат ротации старого refresh-токена.
// Повторное предъявление того же токена в течение окна получает ту же пару,
// а не отказ upstream (гонка нескольких вкладок или инстансов).
// Реализация сама решает, как хранить токен: ключом служит его хэш
// (HashToken), внешнее хранилище шифрует пару ключом из самого токена.
type RotationCache interface {
	Get(ctx context.Context, refresh string) (models.TokenPair, bool, error)
	Set(ctx context.Context, refresh string, pair models.TokenPair) error
	Close() error
}

// RotationEntry — запись окна ротации.
type RotationEntry struct {
	Pair      models.TokenPair
	CreatedAt time.Time
}

// MemoryRotationCache — RotationCache в памяти процесса с ленивым истечением.
type MemoryRotationCache struct {
	mu    sync.Mutex
	m     map[string]RotationEntry
	grace time.Duration
	now   func() time.Time
}

func NewMemoryRotationCache(grace time.Duration) *MemoryRotationCache {
	return &MemoryRotationCache{
		m:     make(map[string]RotationEntry),
		grace: grace,
		now:   time.Now,
	}
}

func (c *MemoryRotationCache) Get(_ context.Context, refresh string) (models.TokenPair, bool, error) {
	key := HashToken(refresh)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		return models.TokenPair{}, false, nil
	}
	if c.expired(e) {
		delete(c.m, key)
		return models.TokenPair{}, false, nil
	}

	return e.Pair, true, nil
}

func (c *MemoryRotationCache) Set(_ context.Context, refresh string, pair models.TokenPair) error {
	key := HashToken(refresh)

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.m {
		if c.expired(e) {
			delete(c.m, k)
		}
	}
	c.m[key] = RotationEntry{Pair: pair, CreatedAt: c.now()}

	return nil
}

func (c *MemoryRotationCache) Close() error { return nil }

func (c *MemoryRotationCache) expired(e RotationEntry) bool {
	return c.now().After(e.CreatedAt.Add(c.grace))
}

// HashToken — ключ кэша и singleflight: сам токен нигде не хранится.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
