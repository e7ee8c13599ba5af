package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/database"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/parse"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	l := zerolog.Ctx(ctx)

	l.Debug().
		Int64("chat_id", chatID).
		Str("username", msg.From.UserName).
		Str("text", text).
		Msg("handling message")

	if msg.IsCommand() && msg.Command() == "start" {
		h.handleStart(ctx, msg)
		return
	}
	if strings.EqualFold(text, "сброс") || strings.EqualFold(text, "reset") {
		if err := h.sessions.ClearState(ctx, chatID); err != nil {
			h.fail(ctx, chatID, err, "session reset failed")
			return
		}
		h.sendMainMenu(chatID)
		return
	}

	state, data, err := h.sessions.GetState(ctx, chatID)
	if err != nil {
		h.fail(ctx, chatID, err, "session lookup failed")
		return
	}

	switch state {
	case models.StateSignupPhone:
		if err := h.sessions.SetState(ctx, chatID, models.StateSignupCar, withKey(data, "phone", text)); err != nil {
			h.fail(ctx, chatID, err, "signup state transition failed")
			return
		}
		h.telegram.SendMessage(chatID, askCarText)

	case models.StateSignupCar:
		if err := h.sessions.SetState(ctx, chatID, models.StateSignupDistrict, withKey(data, "car", text)); err != nil {
			h.fail(ctx, chatID, err, "signup state transition failed")
			return
		}
		h.telegram.SendMessage(chatID, askDistrictText)

	case models.StateSignupDistrict:
		h.finishSignup(ctx, msg, withKey(data, "district", text))

	case models.StateLkPickupDate:
		h.finishPickup(ctx, chatID, text)

	default:
		// Нераспознанный текст подсказываем только в личке, чтобы не
		// спамить в группах, куда бота могли добавить.
		if msg.Chat.IsPrivate() {
			h.telegram.SendMessage(chatID, menuPromptText)
		}
	}
}

// handleStart обрабатывает /start и реферальный deep-link ref_<chat>.
func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	payload := strings.TrimSpace(msg.CommandArguments())

	data := map[string]string{}
	if ref, ok := strings.CutPrefix(payload, "ref_"); ok && ref != "" {
		data["ref"] = ref
		h.telegram.SendMessage(h.cfg.AdminChatID, fmt.Sprintf(
			"🎁 Новый пользователь по реферальной ссылке.\nПригласил: %s\nНовый chat_id: %d",
			ref, chatID))
	}

	if err := h.sessions.SetState(ctx, chatID, models.StateIdle, data); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("session reset failed")
	}
	h.sendMainMenu(chatID)
}

func (h *Handler) sendMainMenu(chatID int64) {
	h.telegram.SendWithInlineKeyboard(chatID, mainMenuText, mainMenuKeyboard())
}

func (h *Handler) finishSignup(ctx context.Context, msg *tgbotapi.Message, data map[string]string) {
	chatID := msg.Chat.ID

	lead := &models.Lead{
		Name:      strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName),
		Phone:     data["phone"],
		CarNumber: data["car"],
		District:  data["district"],
		ChatID:    chatID,
		Source:    "telegram_bot",
	}
	if ref := data["ref"]; ref != "" {
		lead.Source = "telegram_ref_" + ref
	}

	if err := h.clients.SubmitLead(ctx, lead); err != nil {
		h.fail(ctx, chatID, err, "lead submission failed")
		return
	}

	// Лид уже отправлен, поэтому сбой сброса сессии не превращаем в ошибку
	// для пользователя, но логируем: следующий текст попадёт в тот же шаг.
	if err := h.sessions.ClearState(ctx, chatID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("session clear after signup failed")
	}
	h.telegram.SendWithInlineKeyboard(chatID, signupDoneText, backToMenuKeyboard())
}

func (h *Handler) finishPickup(ctx context.Context, chatID int64, date string) {
	err := h.clients.RequestPickup(ctx, chatID, date)
	switch {
	case errors.Is(err, database.ErrClientNotFound):
		h.sessions.ClearState(ctx, chatID)
		h.telegram.SendWithInlineKeyboard(chatID, notLinkedText, notLinkedKeyboard())
		return
	case err != nil:
		h.fail(ctx, chatID, err, "pickup request failed")
		return
	}

	if err := h.sessions.ClearState(ctx, chatID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("session clear after pickup failed")
	}
	h.telegram.SendWithInlineKeyboard(chatID, pickupDoneText, backToMenuKeyboard())
}

// handleContact привязывает Telegram-аккаунт к договору по номеру телефона.
// Единственный путь записи в clients со стороны бота.
func (h *Handler) handleContact(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	l := zerolog.Ctx(ctx)

	phone := parse.Phone(msg.Contact.PhoneNumber)
	client, err := h.store.GetClientByPhone(ctx, phone)
	if errors.Is(err, database.ErrClientNotFound) {
		text := "😕 Договор с таким номером телефона не найден.\n\n" +
			"Если вы уже храните шины у нас, напишите менеджеру: " + h.cfg.ManagerContact
		h.telegram.SendWithInlineKeyboard(chatID, text, backToMenuKeyboard())
		return
	}
	if err != nil {
		h.fail(ctx, chatID, err, "client lookup by phone failed")
		return
	}

	if err := h.store.BindChatID(ctx, client.ID, fmt.Sprintf("%d", chatID)); err != nil {
		h.fail(ctx, chatID, err, "chat binding failed")
		return
	}

	l.Info().
		Int64("chat_id", chatID).
		Str("client_id", client.ID).
		Str("contract", client.Contract).
		Msg("chat bound to client")

	h.telegram.SendWithInlineKeyboard(chatID, lkText(client), lkKeyboard())
}

func withKey(data map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out[key] = value
	return out
}
