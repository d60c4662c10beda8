//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalpath/vitalpath/internal/audit"
)

func TestAudit_InsertAndList(t *testing.T) {
	pool := SetupPostgres(t)
	repo := audit.NewRepository(pool)
	ctx := context.Background()

	patientID := uuid.New()
	for _, eventType := range []string{"generated", "cache_hit", "chart_updated"} {
		entry := &audit.Log{
			EventType: eventType,
			PatientID: &patientID,
			TaskCode:  "BGM-104",
			Details:   json.RawMessage(`{"role": "RN"}`),
			CreatedAt: time.Now(),
		}
		require.NoError(t, repo.Insert(ctx, entry))
		assert.NotEqual(t, uuid.Nil, entry.ID)
	}

	logs, total, err := repo.List(ctx, audit.ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(3))
	assert.NotEmpty(t, logs)

	logs, total, err = repo.List(ctx, audit.ListParams{Page: 1, PageSize: 10, EventType: "cache_hit"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, total, int64(1))
	for _, l := range logs {
		assert.Equal(t, "cache_hit", l.EventType)
	}
}
