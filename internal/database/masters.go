package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
	"github.com/google/uuid"
)

type masterRow struct {
	ID        string    `db:"id"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Store) CreateMaster(ctx context.Context, m *models.Master) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode master: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO masters (id, data, created_at) VALUES ($1, $2, $3)`,
		m.ID, data, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert master: %w", err)
	}
	return nil
}

func (s *Store) UpdateMaster(ctx context.Context, m *models.Master) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode master: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE masters SET data = $2 WHERE id = $1`, m.ID, data)
	if err != nil {
		return fmt.Errorf("update master: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMasterNotFound
	}
	return nil
}

func (s *Store) GetMaster(ctx context.Context, id string) (*models.Master, error) {
	var row masterRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM masters WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMasterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get master: %w", err)
	}

	var m models.Master
	if err := json.Unmarshal(row.Data, &m); err != nil {
		return nil, fmt.Errorf("decode master %s: %w", row.ID, err)
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt
	return &m, nil
}

func (s *Store) ListMasters(ctx context.Context) ([]models.Master, error) {
	var rows []masterRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM masters ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("list masters: %w", err)
	}

	masters := make([]models.Master, 0, len(rows))
	for _, row := range rows {
		var m models.Master
		if err := json.Unmarshal(row.Data, &m); err != nil {
			return nil, fmt.Errorf("decode master %s: %w", row.ID, err)
		}
		m.ID = row.ID
		m.CreatedAt = row.CreatedAt
		masters = append(masters, m)
	}
	return masters, nil
}

func (s *Store) DeleteMaster(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM masters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete master: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMasterNotFound
	}
	return nil
}
