package bot

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/database"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Отвечаем на callback сразу, чтобы убрать "часики" на кнопке,
	// какая бы ветка дальше ни выполнилась.
	h.telegram.AnswerCallback(cb.ID, "")

	if cb.Message == nil {
		zerolog.Ctx(ctx).Debug().Str("data", cb.Data).Msg("callback without message, skipping")
		return
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	zerolog.Ctx(ctx).Debug().
		Int64("chat_id", chatID).
		Str("data", cb.Data).
		Msg("handling callback")

	switch cb.Data {
	case cbMainMenu:
		h.sessions.ClearState(ctx, chatID)
		h.editTo(chatID, messageID, mainMenuText, mainMenuKeyboard())

	case cbFlowLk:
		h.showPersonalAccount(ctx, chatID, messageID)

	case cbInfoPrices:
		h.editTo(chatID, messageID, pricesText(), backToMenuKeyboard())

	case cbFlowSignup:
		// Текущие данные сессии переносятся в анкету: /start по реферальной
		// ссылке оставляет там ref, который должен дожить до лида.
		_, data, err := h.sessions.GetState(ctx, chatID)
		if err != nil {
			h.fail(ctx, chatID, err, "signup state transition failed")
			return
		}
		if err := h.sessions.SetState(ctx, chatID, models.StateSignupPhone, data); err != nil {
			h.fail(ctx, chatID, err, "signup state transition failed")
			return
		}
		h.editTo(chatID, messageID, askPhoneText, backToMenuKeyboard())

	case cbLkReferral:
		text := referralText(h.telegram.GetSelf().UserName, chatID)
		h.editTo(chatID, messageID, text, backToMenuKeyboard())

	case cbLkPickup:
		if err := h.sessions.SetState(ctx, chatID, models.StateLkPickupDate, nil); err != nil {
			h.fail(ctx, chatID, err, "pickup state transition failed")
			return
		}
		h.editTo(chatID, messageID, askPickupDateText, backToMenuKeyboard())

	case cbLkExtend:
		h.requestExtend(ctx, chatID, messageID)

	case cbBindPhone:
		// Reply-клавиатуру нельзя прикрепить через editMessageText,
		// поэтому привязка номера идёт отдельным сообщением.
		msg := tgbotapi.NewMessage(chatID, bindPhoneText)
		msg.ReplyMarkup = contactRequestKeyboard()
		h.telegram.Send(msg)

	default:
		zerolog.Ctx(ctx).Warn().Str("data", cb.Data).Msg("unknown callback data")
	}
}

func (h *Handler) showPersonalAccount(ctx context.Context, chatID int64, messageID int) {
	client, err := h.clients.GetClientByChatID(ctx, chatID)
	if errors.Is(err, database.ErrClientNotFound) {
		h.editTo(chatID, messageID, notLinkedText, notLinkedKeyboard())
		return
	}
	if err != nil {
		h.fail(ctx, chatID, err, "personal account lookup failed")
		return
	}
	h.editTo(chatID, messageID, lkText(client), lkKeyboard())
}

func (h *Handler) requestExtend(ctx context.Context, chatID int64, messageID int) {
	err := h.clients.RequestExtend(ctx, chatID, 1)
	if errors.Is(err, database.ErrClientNotFound) {
		h.editTo(chatID, messageID, notLinkedText, notLinkedKeyboard())
		return
	}
	if err != nil {
		h.fail(ctx, chatID, err, "extend request failed")
		return
	}
	h.editTo(chatID, messageID, extendDoneText, backToMenuKeyboard())
}

func (h *Handler) editTo(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	h.telegram.EditMessage(chatID, messageID, text, &keyboard)
}
