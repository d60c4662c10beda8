package briefing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vitalpath/vitalpath/internal/patients"
	"github.com/vitalpath/vitalpath/internal/protocols"
)

// LLM is the completion surface the generator needs.
type LLM interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error)
}

// Generator produces task briefings from a patient chart and a resolved
// protocol. Each call is bounded by a hard deadline; a model that stalls
// fails with ErrGenerationTimeout instead of hanging the request.
type Generator struct {
	llm     LLM
	timeout time.Duration
}

// NewGenerator creates a briefing generator.
func NewGenerator(llm LLM, timeout time.Duration) *Generator {
	return &Generator{llm: llm, timeout: timeout}
}

// Generate builds the prompt, calls the model, validates the answer's
// shape, and attaches the protocol and user_context blocks. The attached
// blocks come from resolved data, never from model output, so callers can
// rely on them regardless of what the model produced.
func (g *Generator) Generate(ctx context.Context, patient patients.Record, protocol protocols.Record, role string) (*Payload, error) {
	clinicMember := patient.ClinicMember()
	clinicContext := ClinicContext(clinicMember)

	patientJSON, err := json.MarshalIndent(patient, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing patient chart: %w", err)
	}

	prompt := buildPrompt(patientJSON, protocol, role, clinicContext, clinicMember)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.llm.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrGenerationTimeout, g.timeout)
		}
		return nil, &GenerationError{Err: err}
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &MalformedOutputError{Reason: "invalid JSON: " + err.Error()}
	}
	if err := payload.validateShape(); err != nil {
		return nil, err
	}

	payload.Protocol = &ProtocolBlock{
		TaskCode: protocol.TaskCode,
		TaskName: protocol.TaskName,
		Priority: protocol.Priority,
		Content:  protocol.Content,
		FullText: protocol.FullText,
	}
	payload.UserContext = &UserContext{
		Role:          role,
		ClinicContext: clinicContext,
		ClinicMember:  clinicMember,
	}
	return &payload, nil
}
