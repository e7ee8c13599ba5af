package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
)

type sessionRow struct {
	ChatID    int64          `db:"chat_id"`
	State     sql.NullString `db:"state"`
	Data      []byte         `db:"data"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// UpsertSession атомарно создаёт или обновляет строку сессии чата.
// Единственное место, где нужна атомарность, — и она отдана native upsert'у.
func (s *Store) UpsertSession(ctx context.Context, session *models.BotSession) error {
	data := session.Data
	if data == nil {
		data = map[string]string{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session data: %w", err)
	}

	var state any
	if session.State != models.StateIdle {
		state = session.State
	}

	query := `INSERT INTO bot_sessions (chat_id, state, data, updated_at)
              VALUES ($1, $2, $3, NOW())
              ON CONFLICT (chat_id) DO UPDATE
              SET state = EXCLUDED.state, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	_, err = s.db.ExecContext(ctx, query, session.ChatID, state, raw)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// GetSession возвращает сессию чата, nil когда строки нет.
func (s *Store) GetSession(ctx context.Context, chatID int64) (*models.BotSession, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM bot_sessions WHERE chat_id = $1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	session := &models.BotSession{
		ChatID:    row.ChatID,
		State:     row.State.String,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &session.Data); err != nil {
			s.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("session data unreadable, resetting")
			session.Data = map[string]string{}
		}
	}
	return session, nil
}

// ClearSession возвращает чат в главное меню: state = NULL, data = {}.
// Строка не удаляется — сессии живут бессрочно.
func (s *Store) ClearSession(ctx context.Context, chatID int64) error {
	query := `INSERT INTO bot_sessions (chat_id, state, data, updated_at)
              VALUES ($1, NULL, '{}', NOW())
              ON CONFLICT (chat_id) DO UPDATE
              SET state = NULL, data = '{}', updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, chatID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
