package protocols

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/vitalpath/vitalpath/internal/api"
)

// Handler serves protocol search requests.
type Handler struct {
	resolver *Resolver
	validate *validator.Validate
}

// NewHandler creates a protocols handler.
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{
		resolver: resolver,
		validate: validator.New(),
	}
}

// SearchRequest is the body of POST /api/search-protocols.
type SearchRequest struct {
	Query    string `json:"query" validate:"required"`
	Priority string `json:"priority,omitempty"`
	Program  string `json:"program,omitempty"`
	TopK     int    `json:"top_k,omitempty" validate:"omitempty,min=1,max=50"`
}

// Search handles POST /api/search-protocols.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}
	if req.TopK == 0 {
		req.TopK = 5
	}

	filters := SearchFilters{Priority: req.Priority, Program: req.Program}
	results, err := h.resolver.Search(r.Context(), req.Query, filters, req.TopK)
	if err != nil {
		api.HandleError(w, api.NewUpstreamError(err))
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}
