package service

import (
	"context"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/domain"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"

	"github.com/rs/zerolog"
)

// SessionService управляет диалоговыми состояниями бота и ограничивает
// частоту входящих сообщений.
type SessionService struct {
	sessions domain.SessionRepository
	limiter  domain.RateLimiter
	limit    int
	window   time.Duration
	logger   *zerolog.Logger
}

func NewSessionService(
	sessions domain.SessionRepository,
	limiter domain.RateLimiter,
	limit int,
	window time.Duration,
	logger *zerolog.Logger,
) *SessionService {
	if limit <= 0 {
		limit = models.RateLimitMessages
	}
	if window <= 0 {
		window = models.RateLimitWindow * time.Second
	}
	return &SessionService{
		sessions: sessions,
		limiter:  limiter,
		limit:    limit,
		window:   window,
		logger:   logger,
	}
}

func (s *SessionService) GetState(ctx context.Context, chatID int64) (string, map[string]string, error) {
	session, err := s.sessions.GetSession(ctx, chatID)
	if err != nil {
		s.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to get bot session")
		return "", nil, err
	}
	if session == nil {
		return models.StateIdle, nil, nil
	}
	return session.State, session.Data, nil
}

func (s *SessionService) SetState(ctx context.Context, chatID int64, state string, data map[string]string) error {
	// Возврат в меню без данных равносилен сбросу. Idle с данными (например,
	// реферальная метка после /start) сохраняется как есть.
	if state == models.StateIdle && len(data) == 0 {
		return s.sessions.ClearSession(ctx, chatID)
	}
	return s.sessions.SetSession(ctx, &models.BotSession{
		ChatID:    chatID,
		State:     state,
		Data:      data,
		UpdatedAt: time.Now(),
	})
}

func (s *SessionService) ClearState(ctx context.Context, chatID int64) error {
	return s.sessions.ClearSession(ctx, chatID)
}

func (s *SessionService) CheckRateLimit(ctx context.Context, chatID int64) (bool, error) {
	if s.limiter == nil {
		return true, nil
	}
	return s.limiter.Allow(ctx, chatID, s.limit, s.window)
}
