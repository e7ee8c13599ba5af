package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Client — один заказ на хранение. JSON-ключи сохраняют кириллические имена
// полей, которыми обменивается админка: это внешний контракт, не схема БД.
type Client struct {
	ID         string `json:"id"`
	Contract   string `json:"Договор"`
	Name       string `json:"Имя клиента"`
	Phone      string `json:"Телефон"`
	CarNumber  string `json:"Номер Авто"`
	ChatID     string `json:"Chat ID"`
	StartDate  string `json:"Начало"`
	EndDate    string `json:"Окончание"`
	RemindAt   string `json:"Напомнить"`
	Months     int    `json:"Срок"`
	PriceMonth int    `json:"Цена за месяц"`
	TotalPrice int    `json:"Общая сумма"`
	Debt       int    `json:"Долг"`
	DealStatus string `json:"Статус сделки"`

	// Плоские строки для отображения и legacy-совместимости. Всегда
	// перевыводятся из TireGroups перед записью.
	TireSize   string `json:"Размер шин"`
	BrandModel string `json:"Бренд_Модель"`
	DOT        string `json:"DOT"`

	Wash    bool `json:"Мойка"`
	Packing bool `json:"Упаковка"`
	Pickup  bool `json:"Вывоз"`

	TireGroups []TireGroup `json:"tireGroups"`
	PhotoURLs  []string    `json:"photoUrls"`

	IsArchived bool      `json:"isArchived"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ClientRecord — форма хранения: группы шин свёрнуты в metadata-блоб,
// фотографии склеены запятой в одну строку. Так записывала и таблица-предок.
type ClientRecord struct {
	Client
	Metadata  string `json:"metadata"`
	PhotoList string `json:"photoUrlsRaw"`
}

// ToRecord сворачивает клиента в форму хранения.
func (c Client) ToRecord() (ClientRecord, error) {
	rec := ClientRecord{Client: c}
	rec.TireGroups = nil
	rec.PhotoURLs = nil
	rec.PhotoList = strings.Join(c.PhotoURLs, ",")

	if len(c.TireGroups) > 0 {
		raw, err := json.Marshal(c.TireGroups)
		if err != nil {
			return rec, err
		}
		rec.Metadata = string(raw)
	}
	return rec, nil
}

// FromRecord разворачивает форму хранения обратно в Client. Ошибка разбора
// metadata не фатальна: вызывающая сторона может восстановить группы из
// плоских строк (best-effort), поэтому она возвращается отдельно.
func (rec ClientRecord) FromRecord() (Client, error) {
	c := rec.Client
	c.PhotoURLs = SplitPhotoList(rec.PhotoList)

	if strings.TrimSpace(rec.Metadata) == "" {
		return c, nil
	}

	var groups []TireGroup
	if err := json.Unmarshal([]byte(rec.Metadata), &groups); err != nil {
		return c, err
	}
	c.TireGroups = groups
	return c, nil
}

// SplitPhotoList разбирает склеенную запятыми строку ссылок.
func SplitPhotoList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

// AsMap возвращает клиента как плоскую карту значений для подстановки
// {{Поле}} в шаблоны сообщений.
func (c Client) AsMap() map[string]string {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}

	out := make(map[string]string, len(generic))
	for k, v := range generic {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			if val {
				out[k] = "Да"
			} else {
				out[k] = "Нет"
			}
		}
	}
	return out
}
