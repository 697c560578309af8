package session

import (
	"sync"

	"github.com/ecar-admin/admin-gateway/internal/models"
)

// Store — in-memory снимок текущего пользователя.
// Безопасен для конкурентного использования; последняя запись побеждает.
type Store struct {
	mu   sync.RWMutex
	user models.User
	subs map[int]chan models.User
	next int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]chan models.User)}
}

// Get возвращает текущий снимок (нулевой, если пользователь не задан).
func (s *Store) Get() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Set атомарно заменяет снимок и уведомляет подписчиков.
func (s *Store) Set(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.notify(u)
}

// Clear сбрасывает снимок в пустой.
func (s *Store) Clear() {
	s.Set(models.User{})
}

// Subscribe возвращает канал изменений и функцию отписки.
// Канал хранит только последнее значение: медленный подписчик пропускает
// промежуточные снимки, но не блокирует запись.
func (s *Store) Subscribe() (<-chan models.User, func()) {
	ch := make(chan models.User, 1)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// notify вызывается под s.mu.
func (s *Store) notify(u models.User) {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}
