package bot

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/config"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/database"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/repository"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/service"
)

const (
	testChatID  = int64(100)
	testAdminID = int64(555)
)

type fixture struct {
	handler  *Handler
	telegram *mockTelegram
	clients  *mockClientService
	store    *mockClientStore
	sessions *service.SessionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.New(io.Discard)
	sessions := service.NewSessionService(
		repository.NewMemorySessionRepository(),
		repository.NewMemoryRateLimiter(),
		100, time.Minute, &logger,
	)
	telegram := &mockTelegram{}
	clients := &mockClientService{}
	store := &mockClientStore{}
	cfg := config.TelegramConfig{
		AdminChatID:    testAdminID,
		ManagerContact: "@otelshin_manager",
	}
	return &fixture{
		handler:  NewHandler(telegram, clients, store, sessions, cfg, logger),
		telegram: telegram,
		clients:  clients,
		store:    store,
		sessions: sessions,
	}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chatID, FirstName: "Иван", UserName: "ivan"},
		Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		cmdLen := len(text)
		for i, r := range text {
			if r == ' ' {
				cmdLen = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
		},
		Data: data,
	}}
}

func TestHandleStart(t *testing.T) {
	f := newFixture(t)
	f.telegram.On("SendWithInlineKeyboard", testChatID, mainMenuText, mock.Anything).
		Return(tgbotapi.Message{}, nil)

	f.handler.ProcessUpdate(context.Background(), textUpdate(testChatID, "/start"))

	f.telegram.AssertExpectations(t)
	state, _, err := f.sessions.GetState(context.Background(), testChatID)
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, state)
}

func TestHandleStartWithReferral(t *testing.T) {
	f := newFixture(t)
	f.telegram.On("SendMessage", testAdminID, mock.MatchedBy(func(text string) bool {
		return len(text) > 0
	})).Return(tgbotapi.Message{}, nil)
	f.telegram.On("SendWithInlineKeyboard", testChatID, mainMenuText, mock.Anything).
		Return(tgbotapi.Message{}, nil)

	f.handler.ProcessUpdate(context.Background(), textUpdate(testChatID, "/start ref_42"))

	f.telegram.AssertExpectations(t)
	state, data, err := f.sessions.GetState(context.Background(), testChatID)
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, state)
	assert.Equal(t, "42", data["ref"])
}

func TestSignupFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.telegram.On("AnswerCallback", "cb-1", "").Return(nil)
	f.telegram.On("EditMessage", testChatID, 7, askPhoneText, mock.Anything).
		Return(tgbotapi.Message{}, nil)
	f.telegram.On("SendMessage", testChatID, askCarText).Return(tgbotapi.Message{}, nil)
	f.telegram.On("SendMessage", testChatID, askDistrictText).Return(tgbotapi.Message{}, nil)
	f.telegram.On("SendWithInlineKeyboard", testChatID, signupDoneText, mock.Anything).
		Return(tgbotapi.Message{}, nil)
	f.clients.On("SubmitLead", mock.Anything, mock.MatchedBy(func(lead *models.Lead) bool {
		return lead.Phone == "+79780000001" &&
			lead.CarNumber == "А123ВС82" &&
			lead.District == "Симферополь, Киевская" &&
			lead.ChatID == testChatID
	})).Return(nil)

	f.handler.ProcessUpdate(ctx, callbackUpdate(testChatID, cbFlowSignup))

	state, _, _ := f.sessions.GetState(ctx, testChatID)
	require.Equal(t, models.StateSignupPhone, state)

	f.handler.ProcessUpdate(ctx, textUpdate(testChatID, "+79780000001"))
	f.handler.ProcessUpdate(ctx, textUpdate(testChatID, "А123ВС82"))
	f.handler.ProcessUpdate(ctx, textUpdate(testChatID, "Симферополь, Киевская"))

	f.telegram.AssertExpectations(t)
	f.clients.AssertExpectations(t)

	state, _, err := f.sessions.GetState(ctx, testChatID)
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, state)
}

func TestSignupFlowKeepsReferralSource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.telegram.On("SendMessage", testAdminID, mock.MatchedBy(func(text string) bool {
		return len(text) > 0
	})).Return(tgbotapi.Message{}, nil)
	f.telegram.On("SendWithInlineKeyboard", testChatID, mainMenuText, mock.Anything).
		Return(tgbotapi.Message{}, nil)
	f.telegram.On("AnswerCallback", "cb-1", "").Return(nil)
	f.telegram.On("EditMessage", testChatID, 7, askPhoneText, mock.Anything).
		Return(tgbotapi.Message{}, nil)
	f.telegram.On("SendMessage", testChatID, askCarText).Return(tgbotapi.Message{}, nil)
	f.telegram.On("SendMessage", testChatID, askDistrictText).Return(tgbotapi.Message{}, nil)
	f.telegram.On("SendWithInlineKeyboard", testChatID, signupDoneText, mock.Anything).
		Return(tgbotapi.Message{}, nil)
	f.clients.On("SubmitLead", mock.Anything, mock.MatchedBy(func(lead *models.Lead) bool {
		return lead.Source == "telegram_ref_42"
	})).Return(nil)

	// ref из deep-link должен пережить вход в анкету и попасть в источник лида
	f.handler.ProcessUpdate(ctx, textUpdate(testChatID, "/start ref_42"))
	f.handler.ProcessUpdate(ctx, callbackUpdate(testChatID, cbFlowSignup))

	_, data, err := f.sessions.GetState(ctx, testChatID)
	require.NoError(t, err)
	require.Equal(t, "42", data["ref"])

	f.handler.ProcessUpdate(ctx, textUpdate(testChatID, "+79780000001"))
	f.handler.ProcessUpdate(ctx, textUpdate(testChatID, "А123ВС82"))
	f.handler.ProcessUpdate(ctx, textUpdate(testChatID, "Симферополь"))

	f.clients.AssertExpectations(t)
	f.telegram.AssertExpectations(t)
}

func TestPickupFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.telegram.On("AnswerCallback", "cb-1", "").Return(nil)
	f.telegram.On("EditMessage", testChatID, 7, askPickupDateText, mock.Anything).
		Return(tgbotapi.Message{}, nil)
	f.telegram.On("SendWithInlineKeyboard", testChatID, pickupDoneText, mock.Anything).
		Return(tgbotapi.Message{}, nil)
	f.clients.On("RequestPickup", mock.Anything, testChatID, "25.12.2026").Return(nil)

	f.handler.ProcessUpdate(ctx, callbackUpdate(testChatID, cbLkPickup))
	f.handler.ProcessUpdate(ctx, textUpdate(testChatID, "25.12.2026"))

	f.telegram.AssertExpectations(t)
	f.clients.AssertExpectations(t)

	state, _, _ := f.sessions.GetState(ctx, testChatID)
	assert.Equal(t, models.StateIdle, state)
}

func TestPickupWithoutBoundClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sessions.SetState(ctx, testChatID, models.StateLkPickupDate, nil))
	f.clients.On("RequestPickup", mock.Anything, testChatID, "завтра").
		Return(database.ErrClientNotFound)
	f.telegram.On("SendWithInlineKeyboard", testChatID, notLinkedText, mock.Anything).
		Return(tgbotapi.Message{}, nil)

	f.handler.ProcessUpdate(ctx, textUpdate(testChatID, "завтра"))

	f.telegram.AssertExpectations(t)
}

func TestContactBindsClient(t *testing.T) {
	f := newFixture(t)
	client := &models.Client{
		ID:       "c-1",
		Contract: "240115-101500",
		Name:     "Иван Иванов",
		EndDate:  "2026-10-01",
	}
	f.store.On("GetClientByPhone", mock.Anything, "+79780000001").Return(client, nil)
	f.store.On("BindChatID", mock.Anything, "c-1", "100").Return(nil)
	f.telegram.On("SendWithInlineKeyboard", testChatID, lkText(client), mock.Anything).
		Return(tgbotapi.Message{}, nil)

	update := textUpdate(testChatID, "")
	update.Message.Contact = &tgbotapi.Contact{PhoneNumber: "7 (978) 000-00-01"}
	f.handler.ProcessUpdate(context.Background(), update)

	f.store.AssertExpectations(t)
	f.telegram.AssertExpectations(t)
}

func TestContactNotFound(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetClientByPhone", mock.Anything, "+79780000002").
		Return(nil, database.ErrClientNotFound)
	f.telegram.On("SendWithInlineKeyboard", testChatID, mock.MatchedBy(func(text string) bool {
		return len(text) > 0
	}), mock.Anything).Return(tgbotapi.Message{}, nil)

	update := textUpdate(testChatID, "")
	update.Message.Contact = &tgbotapi.Contact{PhoneNumber: "79780000002"}
	f.handler.ProcessUpdate(context.Background(), update)

	f.store.AssertExpectations(t)
	f.store.AssertNotCalled(t, "BindChatID", mock.Anything, mock.Anything, mock.Anything)
}

func TestCallbackPrices(t *testing.T) {
	f := newFixture(t)
	f.telegram.On("AnswerCallback", "cb-1", "").Return(nil)
	f.telegram.On("EditMessage", testChatID, 7, pricesText(), mock.Anything).
		Return(tgbotapi.Message{}, nil)

	f.handler.ProcessUpdate(context.Background(), callbackUpdate(testChatID, cbInfoPrices))

	f.telegram.AssertExpectations(t)
}

func TestCallbackPersonalAccountNotLinked(t *testing.T) {
	f := newFixture(t)
	f.telegram.On("AnswerCallback", "cb-1", "").Return(nil)
	f.clients.On("GetClientByChatID", mock.Anything, testChatID).
		Return(nil, database.ErrClientNotFound)
	f.telegram.On("EditMessage", testChatID, 7, notLinkedText, mock.Anything).
		Return(tgbotapi.Message{}, nil)

	f.handler.ProcessUpdate(context.Background(), callbackUpdate(testChatID, cbFlowLk))

	f.telegram.AssertExpectations(t)
}

func TestCallbackExtend(t *testing.T) {
	f := newFixture(t)
	f.telegram.On("AnswerCallback", "cb-1", "").Return(nil)
	f.clients.On("RequestExtend", mock.Anything, testChatID, 1).Return(nil)
	f.telegram.On("EditMessage", testChatID, 7, extendDoneText, mock.Anything).
		Return(tgbotapi.Message{}, nil)

	f.handler.ProcessUpdate(context.Background(), callbackUpdate(testChatID, cbLkExtend))

	f.telegram.AssertExpectations(t)
	f.clients.AssertExpectations(t)
}

func TestCallbackUnknownStillAnswered(t *testing.T) {
	f := newFixture(t)
	f.telegram.On("AnswerCallback", "cb-1", "").Return(nil)

	f.handler.ProcessUpdate(context.Background(), callbackUpdate(testChatID, "no_such_button"))

	f.telegram.AssertExpectations(t)
}

func TestIdleTextPromptsMenuOnlyInPrivate(t *testing.T) {
	f := newFixture(t)
	f.telegram.On("SendMessage", testChatID, menuPromptText).Return(tgbotapi.Message{}, nil)

	f.handler.ProcessUpdate(context.Background(), textUpdate(testChatID, "привет"))
	f.telegram.AssertExpectations(t)

	group := textUpdate(testChatID, "привет")
	group.Message.Chat.Type = "group"
	f.handler.ProcessUpdate(context.Background(), group)
	f.telegram.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestRateLimitExceeded(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sessions := service.NewSessionService(
		repository.NewMemorySessionRepository(),
		repository.NewMemoryRateLimiter(),
		1, time.Minute, &logger,
	)
	telegram := &mockTelegram{}
	h := NewHandler(telegram, &mockClientService{}, &mockClientStore{}, sessions,
		config.TelegramConfig{AdminChatID: testAdminID}, logger)

	telegram.On("SendMessage", testChatID, menuPromptText).Return(tgbotapi.Message{}, nil).Once()
	telegram.On("SendMessage", testChatID, rateLimitedText).Return(tgbotapi.Message{}, nil).Once()

	h.ProcessUpdate(context.Background(), textUpdate(testChatID, "раз"))
	h.ProcessUpdate(context.Background(), textUpdate(testChatID, "два"))

	telegram.AssertExpectations(t)
}

// brokenSessions имитирует отвалившееся хранилище сессий: чтение работает,
// запись падает.
type brokenSessions struct {
	state string
	data  map[string]string
	err   error
}

func (s *brokenSessions) GetState(context.Context, int64) (string, map[string]string, error) {
	return s.state, s.data, nil
}

func (s *brokenSessions) SetState(context.Context, int64, string, map[string]string) error {
	return s.err
}

func (s *brokenSessions) ClearState(context.Context, int64) error { return s.err }

func (s *brokenSessions) CheckRateLimit(context.Context, int64) (bool, error) { return true, nil }

func TestSignupStepFailsClosedOnSessionError(t *testing.T) {
	logger := zerolog.New(io.Discard)
	telegram := &mockTelegram{}
	sessions := &brokenSessions{state: models.StateSignupPhone, err: errors.New("storage down")}
	h := NewHandler(telegram, &mockClientService{}, &mockClientStore{}, sessions,
		config.TelegramConfig{AdminChatID: testAdminID}, logger)

	telegram.On("SendMessage", testChatID, internalErrorText).Return(tgbotapi.Message{}, nil)

	h.ProcessUpdate(context.Background(), textUpdate(testChatID, "+79780000001"))

	// переход не записан, значит и следующий вопрос анкеты не задаётся
	telegram.AssertExpectations(t)
	telegram.AssertNotCalled(t, "SendMessage", testChatID, askCarText)
}

func TestPanicIsRecovered(t *testing.T) {
	f := newFixture(t)
	f.telegram.On("AnswerCallback", "cb-1", "").Panic("boom")

	assert.NotPanics(t, func() {
		f.handler.ProcessUpdate(context.Background(), callbackUpdate(testChatID, cbMainMenu))
	})
}
