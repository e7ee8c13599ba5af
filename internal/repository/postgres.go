package repository

import (
	"context"
	"fmt"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/database"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
)

// PostgresSessionRepository хранит диалоговые сессии бота в таблице bot_sessions.
type PostgresSessionRepository struct {
	store *database.Store
}

func NewPostgresSessionRepository(store *database.Store) *PostgresSessionRepository {
	return &PostgresSessionRepository{store: store}
}

func (r *PostgresSessionRepository) GetSession(ctx context.Context, chatID int64) (*models.BotSession, error) {
	if r.store == nil {
		return nil, fmt.Errorf("postgres store is nil")
	}
	return r.store.GetSession(ctx, chatID)
}

func (r *PostgresSessionRepository) SetSession(ctx context.Context, session *models.BotSession) error {
	if r.store == nil {
		return fmt.Errorf("postgres store is nil")
	}
	return r.store.UpsertSession(ctx, session)
}

func (r *PostgresSessionRepository) ClearSession(ctx context.Context, chatID int64) error {
	if r.store == nil {
		return fmt.Errorf("postgres store is nil")
	}
	return r.store.ClearSession(ctx, chatID)
}
