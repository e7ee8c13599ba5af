package api

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
)

type mockClientService struct {
	mock.Mock
}

func (m *mockClientService) AddClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockClientService) UpdateClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockClientService) ReorderClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockClientService) DeleteClient(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockClientService) GetClients(ctx context.Context, includeArchived bool) ([]models.Client, error) {
	args := m.Called(ctx, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Client), args.Error(1)
}

func (m *mockClientService) GetClientByChatID(ctx context.Context, chatID int64) (*models.Client, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockClientService) RequestPickup(ctx context.Context, chatID int64, date string) error {
	return m.Called(ctx, chatID, date).Error(0)
}

func (m *mockClientService) RequestExtend(ctx context.Context, chatID int64, months int) error {
	return m.Called(ctx, chatID, months).Error(0)
}

func (m *mockClientService) SubmitLead(ctx context.Context, lead *models.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

type mockMasterStore struct {
	mock.Mock
}

func (m *mockMasterStore) CreateMaster(ctx context.Context, master *models.Master) error {
	return m.Called(ctx, master).Error(0)
}

func (m *mockMasterStore) UpdateMaster(ctx context.Context, master *models.Master) error {
	return m.Called(ctx, master).Error(0)
}

func (m *mockMasterStore) GetMaster(ctx context.Context, id string) (*models.Master, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Master), args.Error(1)
}

func (m *mockMasterStore) ListMasters(ctx context.Context) ([]models.Master, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Master), args.Error(1)
}

func (m *mockMasterStore) DeleteMaster(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockTemplateStore struct {
	mock.Mock
}

func (m *mockTemplateStore) UpsertTemplate(ctx context.Context, tpl *models.MessageTemplate) error {
	return m.Called(ctx, tpl).Error(0)
}

func (m *mockTemplateStore) GetTemplate(ctx context.Context, name string) (*models.MessageTemplate, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageTemplate), args.Error(1)
}

func (m *mockTemplateStore) ListTemplates(ctx context.Context) ([]models.MessageTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MessageTemplate), args.Error(1)
}

func (m *mockTemplateStore) DeleteTemplate(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

type mockSetupStore struct {
	mock.Mock
}

func (m *mockSetupStore) Setup(ctx context.Context) (time.Duration, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *mockSetupStore) Ping(ctx context.Context) (time.Duration, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Duration), args.Error(1)
}

type mockTelegram struct {
	mock.Mock
}

func (m *mockTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	args := m.Called(c)
	return args.Get(0).(*tgbotapi.APIResponse), args.Error(1)
}

func (m *mockTelegram) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	args := m.Called(chatID, text)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegram) SendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	args := m.Called(chatID, text)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegram) SendHTML(chatID int64, text string) (tgbotapi.Message, error) {
	args := m.Called(chatID, text)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegram) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	args := m.Called(chatID, text, keyboard)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegram) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	args := m.Called(chatID, messageID, text, keyboard)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegram) AnswerCallback(callbackID, text string) error {
	return m.Called(callbackID, text).Error(0)
}

func (m *mockTelegram) GetSelf() tgbotapi.User {
	args := m.Called()
	return args.Get(0).(tgbotapi.User)
}

type mockClientStore struct {
	mock.Mock
}

func (m *mockClientStore) CreateClient(ctx context.Context, client *models.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *mockClientStore) UpdateClient(ctx context.Context, client *models.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *mockClientStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockClientStore) GetClientByChatID(ctx context.Context, chatID string) (*models.Client, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockClientStore) GetClientByPhone(ctx context.Context, phone string) (*models.Client, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *mockClientStore) ListClients(ctx context.Context, includeArchived bool) ([]models.Client, error) {
	args := m.Called(ctx, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Client), args.Error(1)
}

func (m *mockClientStore) ListClientsByRemindDate(ctx context.Context, date string) ([]models.Client, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Client), args.Error(1)
}

func (m *mockClientStore) BindChatID(ctx context.Context, clientID, chatID string) error {
	return m.Called(ctx, clientID, chatID).Error(0)
}

func (m *mockClientStore) ArchiveClient(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockClientStore) DeleteClient(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockClientStore) AddHistory(ctx context.Context, entry *models.HistoryEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockClientStore) ListHistory(ctx context.Context, clientID string) ([]models.HistoryEntry, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryEntry), args.Error(1)
}
