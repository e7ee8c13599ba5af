package service

import (
	"context"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"
)

type mockClientStore struct {
	mock.Mock
}

func (m *mockClientStore) CreateClient(ctx context.Context, c *models.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockClientStore) UpdateClient(ctx context.Context, c *models.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
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
	args := m.Called(ctx, clientID, chatID)
	return args.Error(0)
}

func (m *mockClientStore) ArchiveClient(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockClientStore) DeleteClient(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockClientStore) AddHistory(ctx context.Context, entry *models.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockClientStore) ListHistory(ctx context.Context, clientID string) ([]models.HistoryEntry, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryEntry), args.Error(1)
}

type mockSyncWorker struct {
	mock.Mock
}

func (m *mockSyncWorker) EnqueueUpsert(ctx context.Context, c *models.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockSyncWorker) EnqueueDelete(ctx context.Context, clientID string) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

func (m *mockSyncWorker) EnqueueFullSync(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
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

func (m *mockTelegram) SendWithInlineKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	args := m.Called(chatID, text, kb)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegram) EditMessage(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	args := m.Called(chatID, messageID, text, kb)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegram) AnswerCallback(callbackID, text string) error {
	args := m.Called(callbackID, text)
	return args.Error(0)
}

func (m *mockTelegram) GetSelf() tgbotapi.User {
	args := m.Called()
	return args.Get(0).(tgbotapi.User)
}

type mockTemplateStore struct {
	mock.Mock
}

func (m *mockTemplateStore) UpsertTemplate(ctx context.Context, tpl *models.MessageTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
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
	args := m.Called(ctx, name)
	return args.Error(0)
}
