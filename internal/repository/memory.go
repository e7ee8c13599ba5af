package repository

import (
	"context"
	"sync"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
)

// MemorySessionRepository - резервное хранилище сессий на случай недоступности БД.
type MemorySessionRepository struct {
	sessions sync.Map
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{}
}

func (r *MemorySessionRepository) GetSession(ctx context.Context, chatID int64) (*models.BotSession, error) {
	val, ok := r.sessions.Load(chatID)
	if !ok {
		return nil, nil
	}
	return val.(*models.BotSession), nil
}

func (r *MemorySessionRepository) SetSession(ctx context.Context, session *models.BotSession) error {
	r.sessions.Store(session.ChatID, session)
	return nil
}

func (r *MemorySessionRepository) ClearSession(ctx context.Context, chatID int64) error {
	r.sessions.Delete(chatID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryRateLimiter считает сообщения в фиксированном окне без внешних зависимостей.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	entries map[int64]*rateLimitEntry
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		entries: make(map[int64]*rateLimitEntry),
	}
}

func (r *MemoryRateLimiter) Allow(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[chatID]
	if !ok || now.After(entry.expiresAt) {
		r.entries[chatID] = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
		return limit >= 1, nil
	}

	entry.count++
	return entry.count <= limit, nil
}
