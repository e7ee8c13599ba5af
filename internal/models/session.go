package models

import "time"

// Состояния диалога бота. Пустая строка — главное меню (idle).
const (
	StateIdle           = ""
	StateSignupPhone    = "signup_phone"
	StateSignupCar      = "signup_car"
	StateSignupDistrict = "signup_district"
	StateLkPickupDate   = "lk_pickup_date"
)

// BotSession — строка состояния диалога, одна на чат. Создаётся и
// обновляется идемпотентно (upsert) на каждом переходе; возврат в меню
// очищает состояние, но строка остаётся.
type BotSession struct {
	ChatID    int64             `json:"chat_id"`
	State     string            `json:"state"`
	Data      map[string]string `json:"data"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Get возвращает значение ключа из данных сессии, пустую строку если нет.
func (s *BotSession) Get(key string) string {
	if s == nil || s.Data == nil {
		return ""
	}
	return s.Data[key]
}

// With возвращает копию данных сессии с добавленным ключом.
func (s *BotSession) With(key, value string) map[string]string {
	data := make(map[string]string, 4)
	if s != nil {
		for k, v := range s.Data {
			data[k] = v
		}
	}
	data[key] = value
	return data
}
