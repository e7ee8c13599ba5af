package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/domain"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"

	"github.com/rs/zerolog"
)

// TemplateService — рассылка HTML-шаблонов с подстановкой полей клиента.
type TemplateService struct {
	templates domain.TemplateStore
	clients   domain.ClientStore
	telegram  domain.TelegramService
	logger    *zerolog.Logger
}

func NewTemplateService(
	templates domain.TemplateStore,
	clients domain.ClientStore,
	telegram domain.TelegramService,
	logger *zerolog.Logger,
) *TemplateService {
	return &TemplateService{
		templates: templates,
		clients:   clients,
		telegram:  telegram,
		logger:    logger,
	}
}

var placeholderRe = regexp.MustCompile(`\{\{[^{}]+\}\}`)

// Render подставляет значения клиента вместо плейсхолдеров {{Поле}}.
// Неизвестные плейсхолдеры заменяются пустой строкой.
func Render(body string, c models.Client) string {
	values := c.AsMap()
	return placeholderRe.ReplaceAllStringFunc(body, func(m string) string {
		key := strings.TrimSpace(strings.Trim(m, "{}"))
		return values[key]
	})
}

// SendTemplate отправляет шаблон клиенту в Telegram. Если text непустой,
// он используется вместо тела шаблона.
func (s *TemplateService) SendTemplate(ctx context.Context, chatID int64, templateName, text string) error {
	body := text
	if body == "" {
		tpl, err := s.templates.GetTemplate(ctx, templateName)
		if err != nil {
			return fmt.Errorf("get template %q: %w", templateName, err)
		}
		body = tpl.Body
	}

	client, err := s.clients.GetClientByChatID(ctx, strconv.FormatInt(chatID, 10))
	if err == nil && client != nil {
		body = Render(body, *client)
	}

	if _, err := s.telegram.SendHTML(chatID, body); err != nil {
		s.logger.Error().Err(err).Int64("chat_id", chatID).Str("template", templateName).Msg("failed to send template")
		return err
	}
	return nil
}
