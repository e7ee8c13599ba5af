package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// clientsSheet — имя листа, в который исторически писала админка.
const clientsSheet = "WEB Клиенты"

var errRowNotFound = errors.New("client row not found")

// SheetsService зеркалирует записи клиентов в legacy-таблицу Google Sheets.
// Таблица давно не является источником истины, но остаётся витриной для
// оператора, поэтому пишем туда асинхронно и best-effort.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	rowCache      map[string]int
	cacheMu       sync.RWMutex
}

func NewSheetsService(credentialsFile, spreadsheetID string) (*SheetsService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	service := &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[string]int),
	}

	// Warm up cache in background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		service.WarmUpCache(ctx)
	}()

	// Periodic cache refresh every 1 hour
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			service.WarmUpCache(ctx)
			cancel()
		}
	}()

	return service, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, clientsSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// WarmUpCache populates the row index cache by reading the entire ID column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, clientsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[string]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id, ok := row[0].(string); ok && id != "" {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// UpsertClient обновляет строку клиента либо добавляет новую, если её нет.
func (s *SheetsService) UpsertClient(ctx context.Context, client *models.Client) error {
	if client == nil {
		return fmt.Errorf("client is nil")
	}

	rowIdx, err := s.FindClientRow(ctx, client.ID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return s.appendClient(ctx, client)
		}
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:U%d", clientsSheet, rowIdx, rowIdx)
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{clientRowValues(client)},
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (s *SheetsService) appendClient(ctx context.Context, client *models.Client) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{clientRowValues(client)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, clientsSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// DeleteClientRow очищает строку клиента в листе.
func (s *SheetsService) DeleteClientRow(ctx context.Context, clientID string) error {
	rowIdx, err := s.FindClientRow(ctx, clientID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return nil
		}
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:U%d", clientsSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Clear(s.spreadsheetID, rangeData, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err == nil {
		s.deleteCacheRow(clientID)
	}
	return err
}

// ReplaceClientsSheet полностью перезаписывает лист клиентов.
func (s *SheetsService) ReplaceClientsSheet(ctx context.Context, clients []*models.Client) error {
	clearRange := clientsSheet + "!A2:Z"
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear clients sheet: %v", err)
	}

	values := [][]interface{}{clientHeaderRow()}
	for _, client := range clients {
		values = append(values, clientRowValues(client))
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, clientsSheet+"!A1", valueRange).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update clients sheet: %v", err)
	}

	// Re-populate cache
	s.cacheMu.Lock()
	s.rowCache = make(map[string]int)
	for i, c := range clients {
		s.rowCache[c.ID] = i + 2
	}
	s.cacheMu.Unlock()

	return nil
}

// FindClientRow ищет строку клиента (1-based) по id в колонке A с кешем.
func (s *SheetsService) FindClientRow(ctx context.Context, clientID string) (int, error) {
	if clientID == "" {
		return 0, fmt.Errorf("client id is required")
	}

	if row, ok := s.getCachedRow(clientID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, clientsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id, ok := row[0].(string); ok && id == clientID {
			rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
			s.setCachedRow(clientID, rowIdx)
			return rowIdx, nil
		}
	}

	return 0, errRowNotFound
}

func (s *SheetsService) getCachedRow(id string) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id string, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func (s *SheetsService) deleteCacheRow(id string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rowCache, id)
}

// ClearCache clears the row index cache.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[string]int)
}

func clientHeaderRow() []interface{} {
	return []interface{}{
		"id", "Договор", "Имя клиента", "Телефон", "Номер Авто", "Chat ID",
		"Начало", "Окончание", "Напомнить", "Срок", "Цена за месяц",
		"Общая сумма", "Долг", "Статус сделки", "Размер шин", "Бренд_Модель",
		"DOT", "Мойка", "Упаковка", "Вывоз", "Фото",
	}
}

func clientRowValues(c *models.Client) []interface{} {
	yesNo := func(v bool) string {
		if v {
			return models.RimsYes
		}
		return models.RimsNo
	}

	photoList := ""
	if len(c.PhotoURLs) > 0 {
		raw, err := json.Marshal(c.PhotoURLs)
		if err == nil {
			photoList = string(raw)
		}
	}

	return []interface{}{
		c.ID,
		c.Contract,
		c.Name,
		c.Phone,
		c.CarNumber,
		c.ChatID,
		c.StartDate,
		c.EndDate,
		c.RemindAt,
		c.Months,
		c.PriceMonth,
		c.TotalPrice,
		c.Debt,
		c.DealStatus,
		c.TireSize,
		c.BrandModel,
		c.DOT,
		yesNo(c.Wash),
		yesNo(c.Packing),
		yesNo(c.Pickup),
		photoList,
	}
}
