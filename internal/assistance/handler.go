package assistance

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/vitalpath/vitalpath/internal/api"
	"github.com/vitalpath/vitalpath/internal/briefing"
	"github.com/vitalpath/vitalpath/internal/patients"
	"github.com/vitalpath/vitalpath/internal/tasks"
)

// Handler serves the briefing endpoints.
type Handler struct {
	service  *Service
	resolver Resolver
	store    *patients.Store
	validate *validator.Validate
}

// NewHandler creates an assistance handler.
func NewHandler(service *Service, resolver Resolver, store *patients.Store) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
		store:    store,
		validate: validator.New(),
	}
}

// GenerateDetailRequest is the body of POST /api/generate-detail.
// Refresh is raw because callers have historically sent non-boolean
// values there; anything but literal true means false.
type GenerateDetailRequest struct {
	TodoID       string          `json:"todo_id" validate:"required"`
	PatientIndex *int            `json:"patient_index" validate:"required"`
	UserRole     string          `json:"user_role" validate:"omitempty,oneof=RN HC RD PharmD"`
	Refresh      json.RawMessage `json:"refresh,omitempty"`
}

func (r *GenerateDetailRequest) refresh() bool {
	var b bool
	if err := json.Unmarshal(r.Refresh, &b); err != nil {
		return false
	}
	return b
}

// GenerateDetail handles POST /api/generate-detail.
func (h *Handler) GenerateDetail(w http.ResponseWriter, r *http.Request) {
	var req GenerateDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewBadRequestError("missing todo_id or patient_index"))
		return
	}
	if req.UserRole == "" {
		req.UserRole = "RN"
	}

	detail, err := h.service.GenerateDetail(r.Context(), req.TodoID, *req.PatientIndex, req.UserRole, req.refresh())
	if err != nil {
		h.handleGenerationError(w, err)
		return
	}
	api.JSONRaw(w, http.StatusOK, detail)
}

// CheckCachedRequest is the body of POST /api/check-cached-tasks.
type CheckCachedRequest struct {
	PatientIndex *int `json:"patient_index" validate:"required"`
}

// CheckCachedTasks handles POST /api/check-cached-tasks.
func (h *Handler) CheckCachedTasks(w http.ResponseWriter, r *http.Request) {
	var req CheckCachedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewBadRequestError("missing patient_index"))
		return
	}

	cached, err := h.service.CachedTasks(r.Context(), *req.PatientIndex, tasks.IDs())
	if err != nil {
		h.handleGenerationError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{"cached_task_ids": cached})
}

// GetProtocolRequest is the body of POST /api/get-protocol.
type GetProtocolRequest struct {
	TodoID       string `json:"todo_id" validate:"required"`
	PatientIndex *int   `json:"patient_index" validate:"required"`
}

// GetProtocol handles POST /api/get-protocol: the protocol preview shown
// before any generation happens.
func (h *Handler) GetProtocol(w http.ResponseWriter, r *http.Request) {
	var req GetProtocolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewBadRequestError("missing todo_id or patient_index"))
		return
	}

	task := tasks.ByID(req.TodoID)
	if task == nil {
		api.HandleError(w, api.ErrTaskNotFound)
		return
	}

	patient, err := h.store.Get(*req.PatientIndex)
	if err != nil {
		h.handleGenerationError(w, err)
		return
	}

	protocol, err := h.resolver.Resolve(r.Context(), req.TodoID)
	if err != nil {
		api.HandleError(w, api.NewUpstreamError(err))
		return
	}

	hasCached, err := h.service.HasCached(r.Context(), *req.PatientIndex, req.TodoID)
	if err != nil {
		api.HandleError(w, api.NewUpstreamError(err))
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"task_id":       task.ID,
		"task_name":     task.Name,
		"task_title":    task.Name,
		"priority":      task.Priority,
		"category":      task.Category,
		"patient_name":  patient.Demographics.Name,
		"patient_index": *req.PatientIndex,
		"protocol": map[string]any{
			"task_code": protocol.TaskCode,
			"task_name": protocol.TaskName,
			"priority":  protocol.Priority,
			"content":   protocol.Content,
			"full_text": protocol.FullText,
		},
		"has_cached_assistance": hasCached,
	})
}

func (h *Handler) handleGenerationError(w http.ResponseWriter, err error) {
	slog.Error("briefing request failed", "error", err)

	var malformed *briefing.MalformedOutputError
	switch {
	case errors.Is(err, patients.ErrIndexOutOfRange):
		api.HandleError(w, api.ErrPatientIndex)
	case errors.Is(err, briefing.ErrGenerationTimeout):
		api.JSONErrorMessage(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &malformed):
		api.JSONErrorMessage(w, http.StatusBadGateway, err.Error())
	default:
		api.HandleError(w, api.NewUpstreamError(err))
	}
}
