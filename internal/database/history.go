package database

import (
	"context"
	"fmt"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
	"github.com/google/uuid"
)

type historyRow struct {
	ID        string    `db:"id"`
	ClientID  string    `db:"client_id"`
	Action    string    `db:"action"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}

// AddHistory пишет событие журнала (lead/pickup/extend и пр.).
func (s *Store) AddHistory(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now()

	payload := entry.Payload
	if payload == "" {
		payload = "{}"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, client_id, action, data, created_at) VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.ClientID, entry.Action, payload, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// ListHistory возвращает журнал клиента, свежие записи первыми.
func (s *Store) ListHistory(ctx context.Context, clientID string) ([]models.HistoryEntry, error) {
	var rows []historyRow
	query := `SELECT * FROM history WHERE client_id = $1 ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &rows, query, clientID); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.HistoryEntry{
			ID:        row.ID,
			ClientID:  row.ClientID,
			Action:    row.Action,
			Payload:   string(row.Data),
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}
