package patients

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTripPreservesUnknownSections(t *testing.T) {
	src := []byte(`{
		"demographics": {"name": "Maria Garcia", "age": 58, "gender": "Female", "dob": "1968-01-15", "phone": "(555) 123-4567", "email": "maria.garcia@email.com"},
		"metadata": {"last_modified": "2026-08-01T10:00:00Z"},
		"conditions": {"primary_diagnosis": "Type 2 Diabetes"},
		"future_section": {"anything": [1, 2, {"nested": true}]}
	}`)

	var rec Record
	require.NoError(t, json.Unmarshal(src, &rec))

	assert.Equal(t, "Maria Garcia", rec.Demographics.Name)
	assert.Equal(t, "2026-08-01T10:00:00Z", rec.Metadata.LastModified)
	assert.JSONEq(t, `{"anything": [1, 2, {"nested": true}]}`, string(rec.Section("future_section")))

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	var again Record
	require.NoError(t, json.Unmarshal(out, &again))
	assert.JSONEq(t, `{"anything": [1, 2, {"nested": true}]}`, string(again.Section("future_section")))
	assert.JSONEq(t, `{"primary_diagnosis": "Type 2 Diabetes"}`, string(again.Section("conditions")))
	assert.Equal(t, rec.Demographics, again.Demographics)
}

func TestRecordMarshalOmitsNilID(t *testing.T) {
	rec := Record{Demographics: Demographics{Name: "Test"}}

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &m))
	_, ok := m["id"]
	assert.False(t, ok)
}

func TestRecordMarshalIncludesID(t *testing.T) {
	id := uuid.New()
	rec := Record{ID: id}

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	var again Record
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, id, again.ID)
}

func TestClinicMember(t *testing.T) {
	tests := []struct {
		name     string
		section  string
		expected string
	}{
		{"yes", `{"clinic_member": "Yes"}`, "Yes"},
		{"no", `{"clinic_member": "No"}`, "No"},
		{"empty field", `{}`, "Unknown"},
		{"missing section", "", "Unknown"},
		{"other value", `{"clinic_member": "Maybe"}`, "Maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			if tt.section != "" {
				rec.SetSection("participant_overview", json.RawMessage(tt.section))
			}
			assert.Equal(t, tt.expected, rec.ClinicMember())
		})
	}
}

func TestGenerateBatch(t *testing.T) {
	records := GenerateBatch(10)
	require.Len(t, records, 10)

	seen := make(map[uuid.UUID]bool)
	for _, rec := range records {
		assert.NotEqual(t, uuid.Nil, rec.ID)
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true

		assert.NotEmpty(t, rec.Demographics.Name)
		assert.NotNil(t, rec.Section("conditions"))
		assert.NotNil(t, rec.Section("participant_overview"))
		assert.NotEmpty(t, rec.ClinicMember())
	}
}
