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

// clientRow — строка таблицы clients: JSONB-снимок записи плюс несколько
// скалярных колонок для фильтрации без обхода JSON.
type clientRow struct {
	ID         string    `db:"id"`
	Phone      string    `db:"phone"`
	ChatID     string    `db:"chat_id"`
	IsArchived bool      `db:"is_archived"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	Data       []byte    `db:"data"`
}

func (s *Store) scanClient(row clientRow) (models.Client, error) {
	var rec models.ClientRecord
	if err := json.Unmarshal(row.Data, &rec); err != nil {
		return models.Client{}, fmt.Errorf("decode client %s: %w", row.ID, err)
	}

	client, err := rec.FromRecord()
	if err != nil {
		// Битый metadata-блоб не роняет чтение: группы остаются пустыми,
		// вызывающий код может восстановить их из плоских строк.
		s.logger.Warn().Err(err).Str("client_id", row.ID).Msg("client metadata unreadable, dropping groups")
	}

	client.ID = row.ID
	client.IsArchived = row.IsArchived
	client.CreatedAt = row.CreatedAt
	client.UpdatedAt = row.UpdatedAt
	return client, nil
}

func encodeClient(c models.Client) ([]byte, error) {
	rec, err := c.ToRecord()
	if err != nil {
		return nil, fmt.Errorf("encode client %s: %w", c.ID, err)
	}
	return json.Marshal(rec)
}

// CreateClient вставляет новую запись; пустой id заменяется uuid.
func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	data, err := encodeClient(*c)
	if err != nil {
		return err
	}

	query := `INSERT INTO clients (id, phone, chat_id, is_archived, created_at, updated_at, data)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = s.db.ExecContext(ctx, query, c.ID, c.Phone, c.ChatID, c.IsArchived, c.CreatedAt, c.UpdatedAt, data)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// UpdateClient перезаписывает запись целиком. Последняя запись побеждает —
// оптимистических версий у записей клиентов нет.
func (s *Store) UpdateClient(ctx context.Context, c *models.Client) error {
	c.UpdatedAt = time.Now()

	data, err := encodeClient(*c)
	if err != nil {
		return err
	}

	query := `UPDATE clients SET phone = $2, chat_id = $3, is_archived = $4, updated_at = $5, data = $6 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, c.ID, c.Phone, c.ChatID, c.IsArchived, c.UpdatedAt, data)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (s *Store) GetClient(ctx context.Context, id string) (*models.Client, error) {
	var row clientRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM clients WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	client, err := s.scanClient(row)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetClientByChatID ищет активного клиента по привязанному Telegram-чату.
func (s *Store) GetClientByChatID(ctx context.Context, chatID string) (*models.Client, error) {
	var row clientRow
	query := `SELECT * FROM clients WHERE chat_id = $1 AND NOT is_archived ORDER BY created_at DESC LIMIT 1`
	err := s.db.GetContext(ctx, &row, query, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client by chat id: %w", err)
	}

	client, err := s.scanClient(row)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetClientByPhone ищет по скалярной колонке phone и, для старых записей
// без неё, по JSON-полю "Телефон".
func (s *Store) GetClientByPhone(ctx context.Context, phone string) (*models.Client, error) {
	var row clientRow
	query := `SELECT * FROM clients
              WHERE (phone = $1 OR data->>'Телефон' = $1) AND NOT is_archived
              ORDER BY created_at DESC LIMIT 1`
	err := s.db.GetContext(ctx, &row, query, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client by phone: %w", err)
	}

	client, err := s.scanClient(row)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// ListClients возвращает книгу клиентов, архив опционально.
func (s *Store) ListClients(ctx context.Context, includeArchived bool) ([]models.Client, error) {
	query := `SELECT * FROM clients WHERE ($1 OR NOT is_archived) ORDER BY created_at DESC`

	var rows []clientRow
	if err := s.db.SelectContext(ctx, &rows, query, includeArchived); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	clients := make([]models.Client, 0, len(rows))
	for _, row := range rows {
		client, err := s.scanClient(row)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}

// ListClientsByRemindDate возвращает активных клиентов с напоминанием на дату.
func (s *Store) ListClientsByRemindDate(ctx context.Context, date string) ([]models.Client, error) {
	query := `SELECT * FROM clients WHERE data->>'Напомнить' = $1 AND NOT is_archived`

	var rows []clientRow
	if err := s.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("list clients by remind date: %w", err)
	}

	clients := make([]models.Client, 0, len(rows))
	for _, row := range rows {
		client, err := s.scanClient(row)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}

// BindChatID записывает Telegram chat id на карточку клиента — единственный
// путь записи в clients со стороны бота.
func (s *Store) BindChatID(ctx context.Context, clientID, chatID string) error {
	query := `UPDATE clients
              SET chat_id = $2,
                  data = jsonb_set(data, '{Chat ID}', to_jsonb($2::text)),
                  updated_at = NOW()
              WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, clientID, chatID)
	if err != nil {
		return fmt.Errorf("bind chat id: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClientNotFound
	}
	return nil
}

// ArchiveClient копирует запись в history и помечает её архивной.
// Используется при переоформлении: новая запись создаётся поверх.
func (s *Store) ArchiveClient(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	var row clientRow
	err = tx.GetContext(ctx, &row, `SELECT * FROM clients WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrClientNotFound
	}
	if err != nil {
		return fmt.Errorf("load client for archive: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history (id, client_id, action, data) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), row.ID, models.HistoryArchived, row.Data)
	if err != nil {
		return fmt.Errorf("copy client to history: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE clients SET is_archived = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark client archived: %w", err)
	}

	return tx.Commit()
}

// DeleteClient удаляет запись безвозвратно.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClientNotFound
	}
	return nil
}
