package api

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/metrics"
)

// handleWebhook принимает обновления Telegram. Ответ всегда 200 "OK":
// не-200 заставляет Telegram повторять доставку, и один битый апдейт
// превращается в шторм ретраев. Сбои при этом логируются и считаются.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}()

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		metrics.IncWebhookFailure()
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("webhook body decode failed")
		return
	}

	if s.botH == nil {
		metrics.IncWebhookFailure()
		zerolog.Ctx(r.Context()).Error().Msg("webhook received but bot handler is not configured")
		return
	}

	s.botH.ProcessUpdate(r.Context(), update)
}

// handleSetup создаёт таблицы и индексы. Идемпотентен, можно дёргать
// повторно после изменения схемы.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	took, err := s.setup.Setup(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("database setup failed")
		writeActionError(w, http.StatusInternalServerError, err.Error())
		return
	}

	zerolog.Ctx(r.Context()).Info().Dur("took", took).Msg("database setup done")
	writeJSON(w, http.StatusOK, actionResponse{
		Status:    "success",
		Message:   "database ready",
		LatencyMs: took.Milliseconds(),
	})
}
