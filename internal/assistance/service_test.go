package assistance

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalpath/vitalpath/internal/briefing"
	"github.com/vitalpath/vitalpath/internal/patients"
	"github.com/vitalpath/vitalpath/internal/protocols"
)

type fakeResolver struct {
	record protocols.Record
	err    error
	calls  atomic.Int64
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) (protocols.Record, error) {
	f.calls.Add(1)
	return f.record, f.err
}

type fakeGenerator struct {
	payload *briefing.Payload
	err     error
	delay   time.Duration
	calls   atomic.Int64
}

func (f *fakeGenerator) Generate(_ context.Context, _ patients.Record, _ protocols.Record, _ string) (*briefing.Payload, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.payload, f.err
}

func testService(t *testing.T, resolver Resolver, generator Generator) (*Service, *patients.Store) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "patients.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"demographics": {"name": "Maria Garcia", "age": 58}},
		{"demographics": {"name": "James Smith", "age": 64}}
	]`), 0o644))
	store := patients.NewStore(path)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewService(store, resolver, generator, NewCache(client), nil), store
}

func validPayload() *briefing.Payload {
	return &briefing.Payload{
		AIInsight: briefing.AIInsight{Summary: "Needs same-day outreach."},
		Protocol:  &briefing.ProtocolBlock{TaskCode: "BGM-104"},
		UserContext: &briefing.UserContext{
			Role: "RN", ClinicContext: "Unknown", ClinicMember: "Unknown",
		},
	}
}

func TestGenerateDetailMissGeneratesAndCaches(t *testing.T) {
	resolver := &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}
	generator := &fakeGenerator{payload: validPayload()}
	svc, _ := testService(t, resolver, generator)

	detail, err := svc.GenerateDetail(context.Background(), "BGM-104", 0, "RN", false)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(detail, &result))
	assert.NotContains(t, result, "from_cache")
	assert.Contains(t, result, "cache_location")
	assert.Equal(t, int64(1), generator.calls.Load())

	cached, err := svc.CachedTasks(context.Background(), 0, []string{"BGM-104", "BP-105"})
	require.NoError(t, err)
	assert.Equal(t, []string{"BGM-104"}, cached)
}

func TestGenerateDetailHitServesCache(t *testing.T) {
	resolver := &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}
	generator := &fakeGenerator{payload: validPayload()}
	svc, _ := testService(t, resolver, generator)

	_, err := svc.GenerateDetail(context.Background(), "BGM-104", 0, "RN", false)
	require.NoError(t, err)

	detail, err := svc.GenerateDetail(context.Background(), "BGM-104", 0, "RN", false)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(detail, &result))
	assert.Equal(t, true, result["from_cache"])
	assert.NotEmpty(t, result["cached_timestamp"])
	assert.Equal(t, int64(1), generator.calls.Load(), "cache hit must not regenerate")
}

func TestGenerateDetailRefreshBypassesCache(t *testing.T) {
	resolver := &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}
	generator := &fakeGenerator{payload: validPayload()}
	svc, _ := testService(t, resolver, generator)

	_, err := svc.GenerateDetail(context.Background(), "BGM-104", 0, "RN", false)
	require.NoError(t, err)

	detail, err := svc.GenerateDetail(context.Background(), "BGM-104", 0, "RN", true)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(detail, &result))
	assert.NotContains(t, result, "from_cache")
	assert.Equal(t, int64(2), generator.calls.Load())
}

func TestGenerateDetailFailureCachesNothing(t *testing.T) {
	resolver := &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}
	generator := &fakeGenerator{err: &briefing.GenerationError{Err: errors.New("status 500")}}
	svc, _ := testService(t, resolver, generator)

	_, err := svc.GenerateDetail(context.Background(), "BGM-104", 0, "RN", false)
	require.Error(t, err)

	cached, err := svc.CachedTasks(context.Background(), 0, []string{"BGM-104"})
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestGenerateDetailResolverErrorPropagates(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("index unavailable")}
	generator := &fakeGenerator{payload: validPayload()}
	svc, _ := testService(t, resolver, generator)

	_, err := svc.GenerateDetail(context.Background(), "BGM-104", 0, "RN", false)
	assert.ErrorContains(t, err, "index unavailable")
	assert.Equal(t, int64(0), generator.calls.Load())
}

func TestGenerateDetailBadIndex(t *testing.T) {
	svc, _ := testService(t, &fakeResolver{}, &fakeGenerator{payload: validPayload()})

	_, err := svc.GenerateDetail(context.Background(), "BGM-104", 7, "RN", false)
	assert.ErrorIs(t, err, patients.ErrIndexOutOfRange)
}

func TestGenerateDetailCollapsesConcurrentMisses(t *testing.T) {
	resolver := &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}
	generator := &fakeGenerator{payload: validPayload(), delay: 50 * time.Millisecond}
	svc, _ := testService(t, resolver, generator)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GenerateDetail(context.Background(), "BGM-104", 0, "RN", false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), generator.calls.Load(), "concurrent identical requests share one generation")
}

func TestCacheSurvivesSeparateRolesPerPair(t *testing.T) {
	resolver := &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}
	generator := &fakeGenerator{payload: validPayload()}
	svc, _ := testService(t, resolver, generator)

	_, err := svc.GenerateDetail(context.Background(), "BGM-104", 0, "RN", false)
	require.NoError(t, err)

	// A different role still hits the same (patient, task) entry.
	detail, err := svc.GenerateDetail(context.Background(), "BGM-104", 0, "HC", false)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(detail, &result))
	assert.Equal(t, true, result["from_cache"])
	assert.Equal(t, int64(1), generator.calls.Load())
}

func TestHasCached(t *testing.T) {
	resolver := &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}
	generator := &fakeGenerator{payload: validPayload()}
	svc, _ := testService(t, resolver, generator)

	has, err := svc.HasCached(context.Background(), 0, "BGM-104")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = svc.GenerateDetail(context.Background(), "BGM-104", 0, "RN", false)
	require.NoError(t, err)

	has, err = svc.HasCached(context.Background(), 0, "BGM-104")
	require.NoError(t, err)
	assert.True(t, has)
}
