package nats

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents holds all service events.
const StreamEvents = "VITALPATH_EVENTS"

// Subject constants.
const (
	SubjectAssistanceEvent = "vitalpath.events.assistance"
	SubjectPatientEvent    = "vitalpath.events.patient"
)

// AssistanceEvent is published when a briefing is generated or served from cache.
type AssistanceEvent struct {
	PatientID    uuid.UUID `json:"patient_id"`
	PatientIndex int       `json:"patient_index"`
	TaskCode     string    `json:"task_code"`
	Role         string    `json:"role"`
	EventType    string    `json:"event_type"` // "generated", "cache_hit", "generation_failed"
	FromCache    bool      `json:"from_cache"`
	Timestamp    time.Time `json:"timestamp"`
	Detail       string    `json:"detail,omitempty"`
}

// PatientEvent is published when a patient chart is edited.
type PatientEvent struct {
	PatientID    uuid.UUID `json:"patient_id"`
	PatientIndex int       `json:"patient_index"`
	EventType    string    `json:"event_type"` // "chart_updated"
	Timestamp    time.Time `json:"timestamp"`
}
