// Package bot — конечный автомат диалога Telegram. Работает поверх вебхука:
// каждое обновление обрабатывается независимо, состояние диалога живёт в
// bot_sessions и переживает перезапуск процесса.
package bot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/config"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/domain"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const updateTimeout = 30 * time.Second

const (
	rateLimitedText   = "⚠️ Вы отправляете сообщения слишком часто. Пожалуйста, подождите немного."
	internalErrorText = "❌ Произошла ошибка при обработке вашего запроса. Попробуйте позже."
)

// Handler принимает обновления вебхука и превращает их в ответы Telegram API
// и мутации сессий. Все внешние зависимости за интерфейсами.
type Handler struct {
	telegram domain.TelegramService
	clients  domain.ClientService
	store    domain.ClientStore
	sessions domain.SessionManager
	cfg      config.TelegramConfig
	logger   zerolog.Logger
}

func NewHandler(
	telegram domain.TelegramService,
	clients domain.ClientService,
	store domain.ClientStore,
	sessions domain.SessionManager,
	cfg config.TelegramConfig,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		telegram: telegram,
		clients:  clients,
		store:    store,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// ProcessUpdate — единая точка входа вебхука. Никогда не возвращает ошибку
// наружу: сбои логируются и считаются, а HTTP-слой всегда отвечает 200,
// чтобы Telegram не устраивал шторм повторных доставок.
func (h *Handler) ProcessUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		metrics.ObserveUpdateDuration(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	requestID := uuid.New().String()
	l := h.logger.With().Str("request_id", requestID).Logger()
	ctx = l.WithContext(ctx)

	defer h.recoverPanic(&l)

	chatID := updateChatID(update)
	if chatID == 0 {
		l.Debug().Msg("update without chat, skipping")
		return
	}

	if chatID != h.cfg.AdminChatID {
		allowed, err := h.sessions.CheckRateLimit(ctx, chatID)
		if err != nil {
			l.Error().Err(err).Int64("chat_id", chatID).Msg("rate limit check failed")
		} else if !allowed {
			l.Warn().Int64("chat_id", chatID).Msg("rate limit exceeded")
			h.telegram.SendMessage(chatID, rateLimitedText)
			return
		}
	}

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Contact != nil:
		h.handleContact(ctx, update.Message)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	default:
		l.Debug().Msg("unsupported update kind, skipping")
	}
}

func (h *Handler) recoverPanic(l *zerolog.Logger) {
	if r := recover(); r != nil {
		metrics.IncWebhookFailure()
		l.Error().Interface("panic", r).Msg("panic while processing update")
	}
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID
	}
	return 0
}

// fail логирует ошибку ветки обработчика и отвечает пользователю общим
// сообщением. Внешний контракт (200 OK) при этом сохраняется.
func (h *Handler) fail(ctx context.Context, chatID int64, err error, what string) {
	metrics.IncWebhookFailure()
	zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg(what)
	h.telegram.SendMessage(chatID, internalErrorText)
}
