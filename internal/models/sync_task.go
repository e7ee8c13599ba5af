package models

import "time"

// SyncTask — задача зеркалирования в legacy-таблицу Google Sheets.
type SyncTask struct {
	ID          int64      `json:"id" db:"id"`
	TaskType    string     `json:"task_type" db:"task_type"`
	ClientID    string     `json:"client_id" db:"client_id"`
	Payload     string     `json:"payload" db:"payload"`
	Status      string     `json:"status" db:"status"`
	RetryCount  int        `json:"retry_count" db:"retry_count"`
	LastError   *string    `json:"last_error" db:"last_error"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time `json:"processed_at" db:"processed_at"`
	NextRetryAt *time.Time `json:"next_retry_at" db:"next_retry_at"`
}
