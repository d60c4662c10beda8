package patients

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Demographics is the identifying section of a patient chart.
type Demographics struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	DOB    string `json:"dob"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
}

// Metadata holds bookkeeping fields stamped by the store.
type Metadata struct {
	LastModified string `json:"last_modified"`
}

// Record is one patient chart. Demographics and metadata are typed; every
// other chart section (conditions, devices, recent_events, medications,
// labs, surveys, messages, participant_overview, ...) is kept as raw JSON
// so edits round-trip byte-for-byte through load and save.
//
// Records are addressed by position on the HTTP surface, but each carries
// a stable ID assigned at creation so cache entries survive insertions
// and reloads.
type Record struct {
	ID           uuid.UUID
	Demographics Demographics
	Metadata     Metadata
	sections     map[string]json.RawMessage
}

// Section returns the raw JSON of a chart section, or nil if absent.
func (r *Record) Section(name string) json.RawMessage {
	return r.sections[name]
}

// SetSection replaces a chart section.
func (r *Record) SetSection(name string, data json.RawMessage) {
	if r.sections == nil {
		r.sections = make(map[string]json.RawMessage)
	}
	r.sections[name] = data
}

// ClinicMember returns the chart's participant_overview.clinic_member
// flag ("Yes", "No", ...), or "Unknown" when the section or field is absent.
func (r *Record) ClinicMember() string {
	raw := r.Section("participant_overview")
	if raw == nil {
		return "Unknown"
	}
	var overview struct {
		ClinicMember string `json:"clinic_member"`
	}
	if err := json.Unmarshal(raw, &overview); err != nil || overview.ClinicMember == "" {
		return "Unknown"
	}
	return overview.ClinicMember
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.sections)+3)
	for k, v := range r.sections {
		out[k] = v
	}

	if r.ID != uuid.Nil {
		idJSON, err := json.Marshal(r.ID)
		if err != nil {
			return nil, err
		}
		out["id"] = idJSON
	}

	demoJSON, err := json.Marshal(r.Demographics)
	if err != nil {
		return nil, err
	}
	out["demographics"] = demoJSON

	metaJSON, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil, err
	}
	out["metadata"] = metaJSON

	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshaling patient record: %w", err)
	}

	*r = Record{sections: make(map[string]json.RawMessage)}

	for k, v := range raw {
		switch k {
		case "id":
			if err := json.Unmarshal(v, &r.ID); err != nil {
				return fmt.Errorf("unmarshaling patient id: %w", err)
			}
		case "demographics":
			if err := json.Unmarshal(v, &r.Demographics); err != nil {
				return fmt.Errorf("unmarshaling demographics: %w", err)
			}
		case "metadata":
			if err := json.Unmarshal(v, &r.Metadata); err != nil {
				return fmt.Errorf("unmarshaling metadata: %w", err)
			}
		default:
			r.sections[k] = v
		}
	}
	return nil
}
