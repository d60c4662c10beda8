package tasks

import (
	"net/http"

	"github.com/vitalpath/vitalpath/internal/api"
)

// Handler serves the task catalog.
type Handler struct{}

// NewHandler creates a new tasks handler.
func NewHandler() *Handler {
	return &Handler{}
}

// List returns the fixed task catalog.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, Catalog)
}
