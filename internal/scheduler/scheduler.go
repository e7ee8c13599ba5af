// Package scheduler запускает ежедневный обход поля "Напомнить": клиенты,
// у которых дата напоминания наступила, получают сообщение в Telegram, а
// администратор — сводку.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/domain"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

type Scheduler struct {
	clients     domain.ClientStore
	telegram    domain.TelegramService
	adminChatID int64
	logger      *zerolog.Logger
	cron        gocron.Scheduler
}

func New(clients domain.ClientStore, telegram domain.TelegramService, adminChatID int64, logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		clients:     clients,
		telegram:    telegram,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// Start регистрирует ежедневную задачу в reminderTime ("ЧЧ:ММ" локального
// времени) и запускает планировщик.
func (s *Scheduler) Start(ctx context.Context, reminderTime string) error {
	hour, minute := parseClock(reminderTime)

	cron, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("new scheduler: %w", err)
	}

	_, err = cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(func() {
			jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			s.SweepReminders(jobCtx)
		}),
	)
	if err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}

	cron.Start()
	s.cron = cron
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		if err := s.cron.Shutdown(); err != nil {
			s.logger.Error().Err(err).Msg("scheduler shutdown error")
		}
	}
}

// SweepReminders отправляет напоминания всем клиентам с сегодняшней датой
// в поле "Напомнить".
func (s *Scheduler) SweepReminders(ctx context.Context) {
	today := time.Now().Format(models.DateLayout)

	clients, err := s.clients.ListClientsByRemindDate(ctx, today)
	if err != nil {
		s.logger.Error().Err(err).Str("date", today).Msg("reminder: list clients error")
		return
	}
	if len(clients) == 0 {
		return
	}

	var reached, missed int
	for i := range clients {
		if s.remindClient(&clients[i]) {
			reached++
		} else {
			missed++
		}
	}

	s.logger.Info().
		Str("date", today).
		Int("reached", reached).
		Int("missed", missed).
		Msg("reminder sweep finished")

	s.notifyAdmin(clients, reached, missed)
}

func (s *Scheduler) remindClient(c *models.Client) bool {
	chatID, err := strconv.ParseInt(strings.TrimSpace(c.ChatID), 10, 64)
	if err != nil || chatID == 0 {
		return false
	}

	text := fmt.Sprintf(
		"⏰ Напоминание о хранении\n\nДоговор: %s\nСрок хранения заканчивается %s.\n\nПродлить или оформить вывоз можно в личном кабинете: /start",
		c.Contract, c.EndDate)
	if _, err := s.telegram.SendMessage(chatID, text); err != nil {
		s.logger.Error().Err(err).Int64("chat_id", chatID).Str("client_id", c.ID).Msg("reminder: send error")
		return false
	}
	return true
}

func (s *Scheduler) notifyAdmin(clients []models.Client, reached, missed int) {
	if s.adminChatID == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⏰ Напоминания на сегодня: %d (доставлено %d, без чата %d)\n\n", len(clients), reached, missed)
	for i := range clients {
		fmt.Fprintf(&b, "• %s, договор %s, до %s\n", clients[i].Name, clients[i].Contract, clients[i].EndDate)
	}

	if _, err := s.telegram.SendMessage(s.adminChatID, b.String()); err != nil {
		s.logger.Error().Err(err).Msg("reminder: admin summary send error")
	}
}

// parseClock разбирает "ЧЧ:ММ"; на мусор отвечает значением по умолчанию 09:00.
func parseClock(raw string) (int, int) {
	hour, minute := 9, 0
	if raw == "" {
		return hour, minute
	}
	if _, err := fmt.Sscanf(raw, "%d:%d", &hour, &minute); err != nil {
		return 9, 0
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 9, 0
	}
	return hour, minute
}
