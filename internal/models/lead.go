package models

import "time"

// Lead - заявка на хранение из бота или из веб-приложения.
type Lead struct {
	Name      string    `json:"Имя клиента"`
	Phone     string    `json:"Телефон"`
	CarNumber string    `json:"Номер Авто"`
	District  string    `json:"Адрес клиента"`
	ChatID    int64     `json:"Chat ID"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}
