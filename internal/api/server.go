// Package api — HTTP-поверхность CRM: экшен-роутер для SPA, вебхук Telegram,
// первичная настройка схемы и экспорт клиентов.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/bot"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/config"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/domain"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/metrics"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/service"
)

// SetupStore — часть хранилища, нужная эндпоинту первичной настройки.
type SetupStore interface {
	Setup(ctx context.Context) (time.Duration, error)
	Ping(ctx context.Context) (time.Duration, error)
}

// Server собирает все HTTP-маршруты поверх chi.
type Server struct {
	cfg       config.APIConfig
	clients   domain.ClientService
	store     domain.ClientStore
	masters   domain.MasterStore
	tpls      domain.TemplateStore
	templates *service.TemplateService
	setup     SetupStore
	sheets    domain.SheetsWriter
	botH      *bot.Handler
	logger    zerolog.Logger

	server *http.Server
}

type Deps struct {
	Clients   domain.ClientService
	Store     domain.ClientStore
	Masters   domain.MasterStore
	Templates domain.TemplateStore
	Renderer  *service.TemplateService
	Setup     SetupStore
	// Sheets опционален: без ключа сервис-аккаунта testconnection
	// проверяет только базу.
	Sheets domain.SheetsWriter
	Bot    *bot.Handler
}

func NewServer(cfg config.APIConfig, deps Deps, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		clients:   deps.Clients,
		store:     deps.Store,
		masters:   deps.Masters,
		tpls:      deps.Templates,
		templates: deps.Renderer,
		setup:     deps.Setup,
		sheets:    deps.Sheets,
		botH:      deps.Bot,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	auth := NewHTTPAuth(cfg)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/bot", s.handleWebhook)
	r.Post("/api/setup", s.handleSetup)

	r.Group(func(r chi.Router) {
		r.Use(auth.Wrap)
		r.Post("/api/crm", s.handleCRM)
		r.Get("/api/export/clients", s.handleExportClients)
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler отдаёт собранный роутер; используется в тестах через httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.setup != nil {
		if _, err := s.setup.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "message": "database unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		l := s.logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Logger()
		ctx := l.WithContext(r.Context())

		next.ServeHTTP(ww, r.WithContext(ctx))

		metrics.IncHTTP(r.URL.Path)
		l.Info().
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
