package models

import "time"

// Master — контакт исполнителя услуг (шиномонтаж, мойка, доставка).
type Master struct {
	ID       string `json:"id"`
	Name     string `json:"Имя"`
	ChatID   string `json:"chatId (Telegram)"`
	Services string `json:"Услуга"`
	Phone    string `json:"Телефон"`
	Address  string `json:"Адрес"`

	CreatedAt time.Time `json:"createdAt"`
}

// MessageTemplate — HTML-шаблон сообщения с плейсхолдерами {{Поле}},
// подставляемыми из записи клиента при отправке.
type MessageTemplate struct {
	Name      string    `json:"Название шаблона"`
	Body      string    `json:"Содержимое (HTML)"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoryEntry — строка журнала: архивная копия клиента при переоформлении
// либо событие lead/pickup/extend из бота и ЛК.
type HistoryEntry struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	Action    string    `json:"action"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	HistoryArchived = "archived"
	HistoryLead     = "lead"
	HistoryPickup   = "pickup"
	HistoryExtend   = "extend"
)
