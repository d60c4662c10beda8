package assistance

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Entry is one cached briefing for a (patient, task) pair. PatientID is
// the stable cache identity; PatientIndex records the position the entry
// was generated from and is informational only.
type Entry struct {
	Timestamp    string          `json:"timestamp"`
	TodoID       string          `json:"todo_id"`
	PatientID    uuid.UUID       `json:"patient_id"`
	PatientIndex int             `json:"patient_index"`
	PatientName  string          `json:"patient_name"`
	DetailView   json.RawMessage `json:"detail_view"`
}
