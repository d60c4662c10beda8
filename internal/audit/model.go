package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Log is a row in the audit_logs table.
type Log struct {
	ID        uuid.UUID       `json:"id"`
	EventType string          `json:"event_type"`
	PatientID *uuid.UUID      `json:"patient_id,omitempty"`
	TaskCode  string          `json:"task_code,omitempty"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListParams filters and paginates audit log queries.
type ListParams struct {
	EventType string
	Page      int
	PageSize  int
}
