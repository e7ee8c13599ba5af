package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/domain"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/events"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/parse"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/pricing"

	"github.com/rs/zerolog"
)

// ClientService — операции над заказами хранения: пересчёт производных полей
// перед записью, переоформление через архив и заявки из бота.
type ClientService struct {
	store        domain.ClientStore
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	telegram     domain.TelegramService
	adminChatID  int64
	logger       *zerolog.Logger
	now          func() time.Time
}

func NewClientService(
	store domain.ClientStore,
	eventBus domain.EventPublisher,
	sheetsWorker domain.SyncWorker,
	telegram domain.TelegramService,
	adminChatID int64,
	logger *zerolog.Logger,
) *ClientService {
	return &ClientService{
		store:        store,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		telegram:     telegram,
		adminChatID:  adminChatID,
		logger:       logger,
		now:          time.Now,
	}
}

// derive пересчитывает зависимые поля клиента по текущему состоянию формы.
// Ручные значения админки не затираются: пустое производное поле остаётся
// пустым только если расчёт не дал результата.
func (s *ClientService) derive(c *models.Client) {
	groups := c.TireGroups
	if len(groups) == 0 {
		// Старые записи несут только плоские строки
		if legacy, err := parse.TireGroups(c.TireSize, c.BrandModel); err == nil {
			groups = legacy
		}
	}

	res := pricing.Derive(pricing.Input{
		StartDate: c.StartDate,
		Months:    c.Months,
		Contract:  c.Contract,
		Wash:      c.Wash,
		Packing:   c.Packing,
		Pickup:    c.Pickup,
		Groups:    groups,
	}, s.now())

	c.Contract = res.Contract
	if res.EndDate != "" {
		c.EndDate = res.EndDate
		c.RemindAt = res.RemindAt
	}
	c.PriceMonth = res.PriceMonth
	if res.TotalPrice > 0 {
		c.TotalPrice = res.TotalPrice
	}
	if len(c.TireGroups) > 0 {
		c.TireGroups = groups
		c.TireSize = res.TireSize
		c.BrandModel = res.BrandModel
		if res.DOT != "" {
			c.DOT = res.DOT
		}
	}
}

func (s *ClientService) AddClient(ctx context.Context, c *models.Client) (*models.Client, error) {
	c.Phone = parse.Phone(c.Phone)
	s.derive(c)

	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventClientCreated, c, "crm")
	s.enqueueUpsert(ctx, c)
	return c, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, c *models.Client) (*models.Client, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("update client: empty id")
	}
	c.Phone = parse.Phone(c.Phone)
	s.derive(c)

	if err := s.store.UpdateClient(ctx, c); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventClientUpdated, c, "crm")
	s.enqueueUpsert(ctx, c)
	return c, nil
}

// ReorderClient переоформляет договор: старая запись уходит в архив и журнал,
// новая создаётся с новым номером и свежим расчётом.
func (s *ClientService) ReorderClient(ctx context.Context, c *models.Client) (*models.Client, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("reorder client: empty id")
	}

	if err := s.store.ArchiveClient(ctx, c.ID); err != nil {
		return nil, err
	}
	s.publishEvent(events.EventClientArchived, c, "crm")

	fresh := *c
	fresh.ID = ""
	fresh.Contract = ""
	fresh.IsArchived = false
	if fresh.StartDate == "" {
		fresh.StartDate = s.now().Format(models.DateLayout)
	}
	s.derive(&fresh)

	if err := s.store.CreateClient(ctx, &fresh); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventClientCreated, &fresh, "crm")
	s.enqueueUpsert(ctx, &fresh)
	return &fresh, nil
}

func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	if err := s.store.DeleteClient(ctx, id); err != nil {
		return err
	}

	s.publishEvent(events.EventClientDeleted, &models.Client{ID: id}, "crm")
	if s.sheetsWorker != nil {
		if err := s.sheetsWorker.EnqueueDelete(ctx, id); err != nil {
			s.logger.Error().Err(err).Str("client_id", id).Msg("sheets enqueue error")
		}
	}
	return nil
}

func (s *ClientService) GetClients(ctx context.Context, includeArchived bool) ([]models.Client, error) {
	return s.store.ListClients(ctx, includeArchived)
}

func (s *ClientService) GetClientByChatID(ctx context.Context, chatID int64) (*models.Client, error) {
	return s.store.GetClientByChatID(ctx, strconv.FormatInt(chatID, 10))
}

// RequestPickup фиксирует заявку на вывоз шин из личного кабинета и
// уведомляет администратора.
func (s *ClientService) RequestPickup(ctx context.Context, chatID int64, date string) error {
	client, err := s.store.GetClientByChatID(ctx, strconv.FormatInt(chatID, 10))
	if err != nil {
		return err
	}

	payload, _ := json.Marshal(map[string]string{"date": date})
	if err := s.store.AddHistory(ctx, &models.HistoryEntry{
		ClientID: client.ID,
		Action:   models.HistoryPickup,
		Payload:  string(payload),
	}); err != nil {
		s.logger.Error().Err(err).Str("client_id", client.ID).Msg("failed to record pickup request")
	}

	text := fmt.Sprintf("🚚 Заявка на вывоз\n\nКлиент: %s\nДоговор: %s\nТелефон: %s\nЖелаемая дата: %s",
		client.Name, client.Contract, client.Phone, date)
	s.notifyAdmin(text)
	return nil
}

// RequestExtend фиксирует заявку на продление хранения.
func (s *ClientService) RequestExtend(ctx context.Context, chatID int64, months int) error {
	client, err := s.store.GetClientByChatID(ctx, strconv.FormatInt(chatID, 10))
	if err != nil {
		return err
	}

	payload, _ := json.Marshal(map[string]int{"months": months})
	if err := s.store.AddHistory(ctx, &models.HistoryEntry{
		ClientID: client.ID,
		Action:   models.HistoryExtend,
		Payload:  string(payload),
	}); err != nil {
		s.logger.Error().Err(err).Str("client_id", client.ID).Msg("failed to record extend request")
	}

	text := fmt.Sprintf("🔄 Заявка на продление\n\nКлиент: %s\nДоговор: %s\nТелефон: %s\nСрок: +%d мес.",
		client.Name, client.Contract, client.Phone, months)
	s.notifyAdmin(text)
	return nil
}

// SubmitLead сохраняет заявку нового клиента и пересылает её администратору.
func (s *ClientService) SubmitLead(ctx context.Context, lead *models.Lead) error {
	lead.Phone = parse.Phone(lead.Phone)
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = s.now()
	}

	payload, err := json.Marshal(lead)
	if err != nil {
		return err
	}
	if err := s.store.AddHistory(ctx, &models.HistoryEntry{
		Action:  models.HistoryLead,
		Payload: string(payload),
	}); err != nil {
		s.logger.Error().Err(err).Msg("failed to record lead")
	}

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventLeadSubmitted, lead)
	}

	var b strings.Builder
	b.WriteString("🔥 Новая заявка на хранение\n\n")
	fmt.Fprintf(&b, "Имя: %s\n", lead.Name)
	fmt.Fprintf(&b, "Телефон: %s\n", lead.Phone)
	if lead.CarNumber != "" {
		fmt.Fprintf(&b, "Авто: %s\n", lead.CarNumber)
	}
	if lead.District != "" {
		fmt.Fprintf(&b, "Район: %s\n", lead.District)
	}
	if lead.Source != "" {
		fmt.Fprintf(&b, "Источник: %s\n", lead.Source)
	}
	s.notifyAdmin(b.String())
	return nil
}

func (s *ClientService) notifyAdmin(text string) {
	if s.telegram == nil || s.adminChatID == 0 {
		return
	}
	if _, err := s.telegram.SendMessage(s.adminChatID, text); err != nil {
		s.logger.Error().Err(err).Int64("chat_id", s.adminChatID).Msg("failed to notify admin")
	}
}

func (s *ClientService) publishEvent(eventType string, c *models.Client, changedBy string) {
	if s.eventBus == nil {
		return
	}

	var chatID int64
	if c.ChatID != "" {
		chatID, _ = strconv.ParseInt(strings.TrimSpace(c.ChatID), 10, 64)
	}

	payload := events.ClientEventPayload{
		ClientID:  c.ID,
		Contract:  c.Contract,
		Name:      c.Name,
		Phone:     c.Phone,
		ChatID:    chatID,
		Status:    c.DealStatus,
		ChangedBy: changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("client_id", c.ID).Msg("publish event error")
	}
}

func (s *ClientService) enqueueUpsert(ctx context.Context, c *models.Client) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueUpsert(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("client_id", c.ID).Msg("sheets enqueue error")
	}
}
