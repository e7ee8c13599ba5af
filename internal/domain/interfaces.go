package domain

import (
	"context"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type ClientStore interface {
	CreateClient(ctx context.Context, client *models.Client) error
	UpdateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, id string) (*models.Client, error)
	GetClientByChatID(ctx context.Context, chatID string) (*models.Client, error)
	GetClientByPhone(ctx context.Context, phone string) (*models.Client, error)
	ListClients(ctx context.Context, includeArchived bool) ([]models.Client, error)
	ListClientsByRemindDate(ctx context.Context, date string) ([]models.Client, error)
	BindChatID(ctx context.Context, clientID, chatID string) error
	ArchiveClient(ctx context.Context, id string) error
	DeleteClient(ctx context.Context, id string) error
	AddHistory(ctx context.Context, entry *models.HistoryEntry) error
	ListHistory(ctx context.Context, clientID string) ([]models.HistoryEntry, error)
}

type MasterStore interface {
	CreateMaster(ctx context.Context, master *models.Master) error
	UpdateMaster(ctx context.Context, master *models.Master) error
	GetMaster(ctx context.Context, id string) (*models.Master, error)
	ListMasters(ctx context.Context) ([]models.Master, error)
	DeleteMaster(ctx context.Context, id string) error
}

type TemplateStore interface {
	UpsertTemplate(ctx context.Context, tpl *models.MessageTemplate) error
	GetTemplate(ctx context.Context, name string) (*models.MessageTemplate, error)
	ListTemplates(ctx context.Context) ([]models.MessageTemplate, error)
	DeleteTemplate(ctx context.Context, name string) error
}

type SessionRepository interface {
	GetSession(ctx context.Context, chatID int64) (*models.BotSession, error)
	SetSession(ctx context.Context, session *models.BotSession) error
	ClearSession(ctx context.Context, chatID int64) error
}

type RateLimiter interface {
	Allow(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error)
}

type SessionManager interface {
	GetState(ctx context.Context, chatID int64) (string, map[string]string, error)
	SetState(ctx context.Context, chatID int64, state string, data map[string]string) error
	ClearState(ctx context.Context, chatID int64) error
	CheckRateLimit(ctx context.Context, chatID int64) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetSelf() tgbotapi.User
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendHTML(chatID int64, text string) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetSelf() tgbotapi.User
}

type SheetsWriter interface {
	TestConnection(ctx context.Context) error
	UpsertClient(ctx context.Context, client *models.Client) error
	DeleteClientRow(ctx context.Context, clientID string) error
	ReplaceClientsSheet(ctx context.Context, clients []*models.Client) error
}

type SyncWorker interface {
	EnqueueUpsert(ctx context.Context, client *models.Client) error
	EnqueueDelete(ctx context.Context, clientID string) error
	EnqueueFullSync(ctx context.Context) error
}

type ClientService interface {
	AddClient(ctx context.Context, client *models.Client) (*models.Client, error)
	UpdateClient(ctx context.Context, client *models.Client) (*models.Client, error)
	ReorderClient(ctx context.Context, client *models.Client) (*models.Client, error)
	DeleteClient(ctx context.Context, id string) error
	GetClients(ctx context.Context, includeArchived bool) ([]models.Client, error)
	GetClientByChatID(ctx context.Context, chatID int64) (*models.Client, error)
	RequestPickup(ctx context.Context, chatID int64, date string) error
	RequestExtend(ctx context.Context, chatID int64, months int) error
	SubmitLead(ctx context.Context, lead *models.Lead) error
}
