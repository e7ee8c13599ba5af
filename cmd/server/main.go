package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/api"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/bot"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/config"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/database"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/domain"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/events"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/google"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/logging"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/metrics"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/repository"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/scheduler"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/service"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	logger := logging.Component(baseLogger, "server")

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	store := database.NewStore(db, &logger)
	if _, err := store.Setup(ctx); err != nil {
		return err
	}

	tgAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return err
	}
	logger.Info().Str("bot", tgAPI.Self.UserName).Msg("authorized on telegram")
	registerWebhook(tgAPI, cfg.Telegram, &logger)

	telegram := service.NewTelegramService(senderAdapter{tgAPI})

	// Redis опционален: без него rate limit живёт в памяти, а очередь
	// синхронизации — в Postgres.
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
	}

	sessionRepo := repository.NewFailoverSessionRepository(
		repository.NewPostgresSessionRepository(store),
		repository.NewMemorySessionRepository(),
		&logger,
	)
	var rateLimiter domain.RateLimiter = repository.NewMemoryRateLimiter()
	if redisClient != nil {
		rateLimiter = repository.NewFailoverRateLimiter(
			repository.NewRedisRateLimiter(redisClient),
			repository.NewMemoryRateLimiter(),
			&logger,
		)
	}
	sessions := service.NewSessionService(
		sessionRepo, rateLimiter,
		cfg.Bot.RateLimitMessages, time.Duration(cfg.Bot.RateLimitWindow)*time.Second,
		&logger,
	)

	sheetsService, err := initSheets(ctx, cfg.Google, &logger)
	if err != nil {
		return err
	}

	var sheetsWorker *worker.SheetsWorker
	if sheetsService != nil {
		retry := worker.RetryPolicy{
			MaxRetries:    5,
			InitialDelay:  2 * time.Second,
			MaxDelay:      time.Minute,
			BackoffFactor: 2,
		}
		sheetsWorker = worker.NewSheetsWorker(store, sheetsService, redisClient, retry, &logger)
		go sheetsWorker.Start(ctx)
	}

	eventBus := events.NewEventBus()
	subscribeClientEvents(eventBus, &logger)

	clients := service.NewClientService(
		store, eventBus, syncWorkerOrNil(sheetsWorker), telegram,
		cfg.Telegram.AdminChatID, &logger,
	)
	renderer := service.NewTemplateService(store, store, telegram, &logger)

	botHandler := bot.NewHandler(telegram, clients, store, sessions, cfg.Telegram, logger)

	reminders := scheduler.New(store, telegram, cfg.Telegram.AdminChatID, &logger)
	if err := reminders.Start(ctx, cfg.Bot.ReminderTime); err != nil {
		return err
	}
	defer reminders.Stop()

	server := api.NewServer(cfg.API, api.Deps{
		Clients:   clients,
		Store:     store,
		Masters:   store,
		Templates: store,
		Renderer:  renderer,
		Setup:     store,
		Sheets:    sheetsWriterOrNil(sheetsService),
		Bot:       botHandler,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerWebhook(tgAPI *tgbotapi.BotAPI, cfg config.TelegramConfig, logger *zerolog.Logger) {
	if cfg.WebAppURL == "" {
		logger.Warn().Msg("webapp url is empty, webhook not registered")
		return
	}
	wh, err := tgbotapi.NewWebhook(cfg.WebAppURL + "/api/bot")
	if err != nil {
		logger.Error().Err(err).Msg("webhook config failed")
		return
	}
	if _, err := tgAPI.Request(wh); err != nil {
		logger.Error().Err(err).Msg("webhook registration failed")
		return
	}
	logger.Info().Str("url", cfg.WebAppURL+"/api/bot").Msg("webhook registered")
}

func initSheets(ctx context.Context, cfg config.GoogleConfig, logger *zerolog.Logger) (*google.SheetsService, error) {
	if cfg.CredentialsFile == "" || cfg.SpreadsheetID == "" {
		logger.Warn().Msg("google sheets is not configured, legacy mirror disabled")
		return nil, nil
	}
	svc, err := google.NewSheetsService(cfg.CredentialsFile, cfg.SpreadsheetID)
	if err != nil {
		return nil, err
	}
	if err := svc.TestConnection(ctx); err != nil {
		return nil, err
	}
	logger.Info().Str("spreadsheet", cfg.SpreadsheetID).Msg("google sheets connected")
	return svc, nil
}

func subscribeClientEvents(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventClientCreated,
		events.EventClientUpdated,
		events.EventClientArchived,
		events.EventClientDeleted,
		events.EventLeadSubmitted,
	} {
		et := eventType
		bus.Subscribe(et, func(e *events.Event) error {
			logger.Info().Str("event", et).RawJSON("payload", e.Payload).Msg("domain event")
			return nil
		})
	}
}

// senderAdapter подгоняет *tgbotapi.BotAPI под интерфейс отправителя.
type senderAdapter struct {
	*tgbotapi.BotAPI
}

func (a senderAdapter) GetSelf() tgbotapi.User {
	return a.Self
}

// *SheetsWorker в nil-интерфейс заворачивать нельзя: typed nil пройдёт
// проверку != nil внутри сервиса.
func syncWorkerOrNil(w *worker.SheetsWorker) domain.SyncWorker {
	if w == nil {
		return nil
	}
	return w
}

func sheetsWriterOrNil(s *google.SheetsService) domain.SheetsWriter {
	if s == nil {
		return nil
	}
	return s
}
