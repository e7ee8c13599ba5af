package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/database"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/metrics"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
)

// actionRequest — типизированный конверт экшена CRM. Каждый экшен читает
// только свои поля; неизвестный экшен отклоняется до обращения к базе.
type actionRequest struct {
	Action string `json:"action"`
	User   string `json:"user,omitempty"`

	Client   *models.Client          `json:"client,omitempty"`
	Master   *models.Master          `json:"master,omitempty"`
	Template *models.MessageTemplate `json:"template,omitempty"`
	Lead     *models.Lead            `json:"lead,omitempty"`

	ID              string `json:"id,omitempty"`
	Name            string `json:"name,omitempty"`
	ChatID          int64  `json:"chatId,omitempty"`
	Message         string `json:"message,omitempty"`
	TemplateName    string `json:"templateName,omitempty"`
	Date            string `json:"date,omitempty"`
	Months          int    `json:"months,omitempty"`
	IncludeArchived bool   `json:"includeArchived,omitempty"`
}

type actionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`

	Client    *models.Client           `json:"client,omitempty"`
	Clients   []models.Client          `json:"clients,omitempty"`
	Masters   []models.Master          `json:"masters,omitempty"`
	Templates []models.MessageTemplate `json:"templates,omitempty"`

	LatencyMs int64 `json:"latencyMs,omitempty"`
}

func (s *Server) handleCRM(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeActionError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Action == "" {
		writeActionError(w, http.StatusBadRequest, "action is required")
		return
	}

	l := zerolog.Ctx(r.Context()).With().
		Str("action", req.Action).
		Str("user", req.User).
		Logger()

	resp, status, err := s.dispatch(r, &req)
	if err != nil {
		metrics.IncCRMAction(req.Action, "error")
		l.Error().Err(err).Msg("crm action failed")
		writeActionError(w, status, err.Error())
		return
	}

	metrics.IncCRMAction(req.Action, "success")
	l.Info().Msg("crm action done")
	resp.Status = "success"
	writeJSON(w, http.StatusOK, resp)
}

var (
	errUnknownAction = errors.New("unknown action")
	errMissingField  = errors.New("missing required field")
)

// dispatch — плоский switch по имени экшена, контракт таблицы-предка.
func (s *Server) dispatch(r *http.Request, req *actionRequest) (*actionResponse, int, error) {
	ctx := r.Context()
	resp := &actionResponse{}

	switch req.Action {
	case "testconnection":
		lat, err := s.setup.Ping(ctx)
		if err != nil {
			return nil, http.StatusServiceUnavailable, err
		}
		if s.sheets != nil {
			if err := s.sheets.TestConnection(ctx); err != nil {
				return nil, http.StatusServiceUnavailable, err
			}
		}
		resp.LatencyMs = lat.Milliseconds()
		resp.Message = "connection ok"

	case "getclients":
		clients, err := s.clients.GetClients(ctx, req.IncludeArchived)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		resp.Clients = clients

	case "addclient":
		if req.Client == nil {
			return nil, http.StatusBadRequest, errMissingField
		}
		client, err := s.clients.AddClient(ctx, req.Client)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		resp.Client = client

	case "updateclient":
		if req.Client == nil {
			return nil, http.StatusBadRequest, errMissingField
		}
		client, err := s.clients.UpdateClient(ctx, req.Client)
		if err != nil {
			return nil, statusFor(err), err
		}
		resp.Client = client

	case "reorderclient":
		if req.Client == nil {
			return nil, http.StatusBadRequest, errMissingField
		}
		client, err := s.clients.ReorderClient(ctx, req.Client)
		if err != nil {
			return nil, statusFor(err), err
		}
		resp.Client = client

	case "deleteclient":
		if req.ID == "" {
			return nil, http.StatusBadRequest, errMissingField
		}
		if err := s.clients.DeleteClient(ctx, req.ID); err != nil {
			return nil, statusFor(err), err
		}

	case "get_client_by_chatid":
		client, err := s.clients.GetClientByChatID(ctx, req.ChatID)
		if err != nil {
			return nil, statusFor(err), err
		}
		resp.Client = client

	case "lk_pickup":
		if err := s.clients.RequestPickup(ctx, req.ChatID, req.Date); err != nil {
			return nil, statusFor(err), err
		}

	case "lk_extend":
		months := req.Months
		if months <= 0 {
			months = 1
		}
		if err := s.clients.RequestExtend(ctx, req.ChatID, months); err != nil {
			return nil, statusFor(err), err
		}

	case "submit_lead":
		if req.Lead == nil {
			return nil, http.StatusBadRequest, errMissingField
		}
		if err := s.clients.SubmitLead(ctx, req.Lead); err != nil {
			return nil, http.StatusInternalServerError, err
		}

	case "getmasters":
		masters, err := s.masters.ListMasters(ctx)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		resp.Masters = masters

	case "addmaster":
		if req.Master == nil {
			return nil, http.StatusBadRequest, errMissingField
		}
		if err := s.masters.CreateMaster(ctx, req.Master); err != nil {
			return nil, http.StatusInternalServerError, err
		}

	case "updatemaster":
		if req.Master == nil || req.Master.ID == "" {
			return nil, http.StatusBadRequest, errMissingField
		}
		if err := s.masters.UpdateMaster(ctx, req.Master); err != nil {
			return nil, statusFor(err), err
		}

	case "deletemaster":
		if req.ID == "" {
			return nil, http.StatusBadRequest, errMissingField
		}
		if err := s.masters.DeleteMaster(ctx, req.ID); err != nil {
			return nil, statusFor(err), err
		}

	case "gettemplates":
		templates, err := s.tpls.ListTemplates(ctx)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		resp.Templates = templates

	case "addtemplate", "updatetemplate":
		if req.Template == nil || req.Template.Name == "" {
			return nil, http.StatusBadRequest, errMissingField
		}
		if err := s.tpls.UpsertTemplate(ctx, req.Template); err != nil {
			return nil, http.StatusInternalServerError, err
		}

	case "deletetemplate":
		if req.Name == "" {
			return nil, http.StatusBadRequest, errMissingField
		}
		if err := s.tpls.DeleteTemplate(ctx, req.Name); err != nil {
			return nil, statusFor(err), err
		}

	case "sendMessage":
		if req.ChatID == 0 {
			return nil, http.StatusBadRequest, errMissingField
		}
		if err := s.templates.SendTemplate(ctx, req.ChatID, req.TemplateName, req.Message); err != nil {
			return nil, statusFor(err), err
		}

	default:
		return nil, http.StatusBadRequest, errUnknownAction
	}

	return resp, http.StatusOK, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrClientNotFound),
		errors.Is(err, database.ErrMasterNotFound),
		errors.Is(err, database.ErrTemplateNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeActionError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, actionResponse{Status: "error", Message: message})
}
