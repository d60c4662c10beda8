package patients

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vitalpath/vitalpath/internal/api"
	inats "github.com/vitalpath/vitalpath/internal/nats"
)

// Handler handles patient HTTP endpoints.
type Handler struct {
	store     *Store
	publisher *inats.Publisher
	validate  *validator.Validate
}

// NewHandler creates a new patients handler. publisher may be nil.
func NewHandler(store *Store, publisher *inats.Publisher) *Handler {
	return &Handler{
		store:     store,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// List returns demographics-only projections for the patient picker.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.Load()
	if err != nil {
		slog.Error("loading patients", "error", err)
		api.HandleError(w, api.NewUpstreamError(err))
		return
	}

	type projection struct {
		Demographics Demographics `json:"demographics"`
	}
	out := make([]projection, len(records))
	for i, rec := range records {
		out[i] = projection{Demographics: rec.Demographics}
	}
	api.JSON(w, http.StatusOK, out)
}

// Get returns the full chart for the patient at the given index.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid patient index"))
		return
	}

	rec, err := h.store.Get(index)
	if err != nil {
		if errors.Is(err, ErrIndexOutOfRange) {
			api.HandleError(w, api.ErrPatientIndex)
			return
		}
		slog.Error("getting patient", "error", err, "index", index)
		api.HandleError(w, api.NewUpstreamError(err))
		return
	}

	api.JSON(w, http.StatusOK, rec)
}

// SavePatientRequest is the body of POST /api/save-patient.
type SavePatientRequest struct {
	PatientIndex *int            `json:"patient_index" validate:"required"`
	PatientData  json.RawMessage `json:"patient_data" validate:"required"`
}

// Save overwrites the record at the given index and re-stamps the
// collection. Stale cached briefings for the patient are not invalidated.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SavePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("Missing data"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewBadRequestError("Missing data"))
		return
	}

	var rec Record
	if err := json.Unmarshal(req.PatientData, &rec); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid patient data"))
		return
	}

	index := *req.PatientIndex
	timestamp, err := h.store.Update(index, rec)
	if err != nil {
		if errors.Is(err, ErrIndexOutOfRange) {
			api.HandleError(w, api.ErrPatientIndex)
			return
		}
		slog.Error("saving patient", "error", err, "index", index)
		api.HandleError(w, api.NewUpstreamError(err))
		return
	}

	if h.publisher != nil {
		saved, gerr := h.store.Get(index)
		if gerr == nil {
			event := inats.PatientEvent{
				PatientID:    saved.ID,
				PatientIndex: index,
				EventType:    "chart_updated",
				Timestamp:    timestamp,
			}
			if perr := h.publisher.PublishPatientEvent(r.Context(), event); perr != nil {
				slog.Warn("publishing patient event", "error", perr)
			}
		}
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"timestamp": timestamp.Format(time.RFC3339Nano),
	})
}
