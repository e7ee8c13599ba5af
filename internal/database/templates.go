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

type templateRow struct {
	Name      string    `db:"name"`
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UpsertTemplate создаёт или заменяет шаблон по имени.
func (s *Store) UpsertTemplate(ctx context.Context, t *models.MessageTemplate) error {
	t.UpdatedAt = time.Now()

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}

	query := `INSERT INTO templates (name, data, updated_at) VALUES ($1, $2, $3)
              ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	_, err = s.db.ExecContext(ctx, query, t.Name, data, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, name string) (*models.MessageTemplate, error) {
	var row templateRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM templates WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	var t models.MessageTemplate
	if err := json.Unmarshal(row.Data, &t); err != nil {
		return nil, fmt.Errorf("decode template %s: %w", row.Name, err)
	}
	t.Name = row.Name
	t.UpdatedAt = row.UpdatedAt
	return &t, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]models.MessageTemplate, error) {
	var rows []templateRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM templates ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	templates := make([]models.MessageTemplate, 0, len(rows))
	for _, row := range rows {
		var t models.MessageTemplate
		if err := json.Unmarshal(row.Data, &t); err != nil {
			return nil, fmt.Errorf("decode template %s: %w", row.Name, err)
		}
		t.Name = row.Name
		t.UpdatedAt = row.UpdatedAt
		templates = append(templates, t)
	}
	return templates, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
