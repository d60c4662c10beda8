package assistance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vitalpath/vitalpath/internal/briefing"
	"github.com/vitalpath/vitalpath/internal/metrics"
	inats "github.com/vitalpath/vitalpath/internal/nats"
	"github.com/vitalpath/vitalpath/internal/patients"
	"github.com/vitalpath/vitalpath/internal/protocols"
)

// Resolver is the protocol lookup surface the service needs.
type Resolver interface {
	Resolve(ctx context.Context, taskCode string) (protocols.Record, error)
}

// Generator produces briefings.
type Generator interface {
	Generate(ctx context.Context, patient patients.Record, protocol protocols.Record, role string) (*briefing.Payload, error)
}

// Service orchestrates briefing requests: cache check, protocol
// resolution, generation, cache write-back, events. Generation is
// all-or-nothing: on any failure nothing is cached.
type Service struct {
	store     *patients.Store
	resolver  Resolver
	generator Generator
	cache     *Cache
	publisher *inats.Publisher

	group singleflight.Group
}

// NewService creates an assistance service. publisher may be nil to
// disable event publishing.
func NewService(store *patients.Store, resolver Resolver, generator Generator, cache *Cache, publisher *inats.Publisher) *Service {
	return &Service{
		store:     store,
		resolver:  resolver,
		generator: generator,
		cache:     cache,
		publisher: publisher,
	}
}

// GenerateDetail returns the briefing for (patient, task), serving the
// cached copy unless refresh forces regeneration. Concurrent identical
// requests share one generation.
func (s *Service) GenerateDetail(ctx context.Context, todoID string, patientIndex int, role string, refresh bool) (json.RawMessage, error) {
	patient, err := s.store.Get(patientIndex)
	if err != nil {
		return nil, err
	}

	if !refresh {
		entry, found, err := s.cache.Lookup(ctx, patient.ID, todoID)
		if err != nil {
			return nil, err
		}
		if found {
			metrics.AssistanceCacheLookups.WithLabelValues("hit").Inc()
			slog.Info("briefing cache hit", "todo_id", todoID, "patient_index", patientIndex)
			s.publishAssistance(ctx, patient, patientIndex, todoID, role, "cache_hit", true, "")
			return annotate(entry.DetailView, map[string]any{
				"from_cache":       true,
				"cached_timestamp": entry.Timestamp,
				"cache_location":   cacheKey(patient.ID, todoID),
			})
		}
		metrics.AssistanceCacheLookups.WithLabelValues("miss").Inc()
	} else {
		metrics.AssistanceCacheLookups.WithLabelValues("bypass").Inc()
	}

	key := fmt.Sprintf("%s:%s:%s", patient.ID, todoID, role)
	result, err, _ := s.group.Do(key, func() (any, error) {
		return s.generate(ctx, patient, todoID, patientIndex, role)
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}

func (s *Service) generate(ctx context.Context, patient patients.Record, todoID string, patientIndex int, role string) (json.RawMessage, error) {
	slog.Info("generating briefing", "todo_id", todoID, "patient_index", patientIndex, "role", role)

	protocol, err := s.resolver.Resolve(ctx, todoID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	payload, err := s.generator.Generate(ctx, patient, protocol, role)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(generationOutcome(err)).Inc()
		s.publishAssistance(ctx, patient, patientIndex, todoID, role, "generation_failed", false, err.Error())
		return nil, err
	}
	metrics.GenerationsTotal.WithLabelValues("success").Inc()

	detailView, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling briefing: %w", err)
	}

	entry := Entry{
		Timestamp:    time.Now().Format(time.RFC3339),
		TodoID:       todoID,
		PatientID:    patient.ID,
		PatientIndex: patientIndex,
		PatientName:  patient.Demographics.Name,
		DetailView:   detailView,
	}
	location, err := s.cache.Store(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.publishAssistance(ctx, patient, patientIndex, todoID, role, "generated", false, "")

	return annotate(detailView, map[string]any{"cache_location": location})
}

// CachedTasks returns the task codes with a cached briefing for the
// patient at the given position.
func (s *Service) CachedTasks(ctx context.Context, patientIndex int, codes []string) ([]string, error) {
	patient, err := s.store.Get(patientIndex)
	if err != nil {
		return nil, err
	}
	return s.cache.CachedTasks(ctx, patient.ID, codes)
}

// HasCached reports whether the pair has a cached briefing.
func (s *Service) HasCached(ctx context.Context, patientIndex int, todoID string) (bool, error) {
	patient, err := s.store.Get(patientIndex)
	if err != nil {
		return false, err
	}
	_, found, err := s.cache.Lookup(ctx, patient.ID, todoID)
	return found, err
}

func (s *Service) publishAssistance(ctx context.Context, patient patients.Record, patientIndex int, todoID, role, eventType string, fromCache bool, detail string) {
	if s.publisher == nil {
		return
	}
	event := inats.AssistanceEvent{
		PatientID:    patient.ID,
		PatientIndex: patientIndex,
		TaskCode:     todoID,
		Role:         role,
		EventType:    eventType,
		FromCache:    fromCache,
		Timestamp:    time.Now(),
		Detail:       detail,
	}
	if err := s.publisher.PublishAssistanceEvent(ctx, event); err != nil {
		slog.Warn("publishing assistance event failed", "event_type", eventType, "error", err)
	}
}

func generationOutcome(err error) string {
	var malformed *briefing.MalformedOutputError
	switch {
	case errors.Is(err, briefing.ErrGenerationTimeout):
		return "timeout"
	case errors.As(err, &malformed):
		return "malformed"
	default:
		return "error"
	}
}

// annotate adds top-level fields to a JSON object without disturbing the
// rest of it.
func annotate(raw json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("annotating briefing: %w", err)
	}
	for k, v := range fields {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		obj[k] = data
	}
	return json.Marshal(obj)
}
