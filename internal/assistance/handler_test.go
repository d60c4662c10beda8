package assistance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalpath/vitalpath/internal/briefing"
	"github.com/vitalpath/vitalpath/internal/protocols"
)

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestGenerateDetailHandlerMissingFields(t *testing.T) {
	svc, _ := testService(t, &fakeResolver{}, &fakeGenerator{payload: validPayload()})
	h := NewHandler(svc, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty", `{}`},
		{"no patient_index", `{"todo_id": "BGM-104"}`},
		{"no todo_id", `{"patient_index": 0}`},
		{"not json", `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.GenerateDetail, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGenerateDetailHandlerCoercesRefresh(t *testing.T) {
	generator := &fakeGenerator{payload: validPayload()}
	svc, _ := testService(t, &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}, generator)
	h := NewHandler(svc, nil, nil)

	// Non-boolean refresh values mean false: the second request must be a
	// cache hit even though refresh is an object.
	rec := postJSON(t, h.GenerateDetail, `{"todo_id": "BGM-104", "patient_index": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, h.GenerateDetail, `{"todo_id": "BGM-104", "patient_index": 0, "refresh": {"weird": true}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, true, result["from_cache"])
	assert.Equal(t, int64(1), generator.calls.Load())
}

func TestGenerateDetailHandlerZeroIndexAccepted(t *testing.T) {
	generator := &fakeGenerator{payload: validPayload()}
	svc, _ := testService(t, &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}, generator)
	h := NewHandler(svc, nil, nil)

	rec := postJSON(t, h.GenerateDetail, `{"todo_id": "BGM-104", "patient_index": 0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateDetailHandlerBadIndex(t *testing.T) {
	svc, _ := testService(t, &fakeResolver{}, &fakeGenerator{payload: validPayload()})
	h := NewHandler(svc, nil, nil)

	rec := postJSON(t, h.GenerateDetail, `{"todo_id": "BGM-104", "patient_index": 42}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateDetailHandlerTimeout(t *testing.T) {
	generator := &fakeGenerator{err: briefing.ErrGenerationTimeout}
	svc, _ := testService(t, &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}, generator)
	h := NewHandler(svc, nil, nil)

	rec := postJSON(t, h.GenerateDetail, `{"todo_id": "BGM-104", "patient_index": 0}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestGenerateDetailHandlerMalformedOutput(t *testing.T) {
	generator := &fakeGenerator{err: &briefing.MalformedOutputError{Reason: "missing ai_insight.summary"}}
	svc, _ := testService(t, &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}, generator)
	h := NewHandler(svc, nil, nil)

	rec := postJSON(t, h.GenerateDetail, `{"todo_id": "BGM-104", "patient_index": 0}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCheckCachedTasksHandler(t *testing.T) {
	generator := &fakeGenerator{payload: validPayload()}
	svc, _ := testService(t, &fakeResolver{record: protocols.Record{TaskCode: "BGM-104"}}, generator)
	h := NewHandler(svc, nil, nil)

	_, err := svc.GenerateDetail(context.Background(), "BGM-104", 1, "RN", false)
	require.NoError(t, err)

	rec := postJSON(t, h.CheckCachedTasks, `{"patient_index": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		CachedTaskIDs []string `json:"cached_task_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []string{"BGM-104"}, result.CachedTaskIDs)

	// The other patient has nothing cached.
	rec = postJSON(t, h.CheckCachedTasks, `{"patient_index": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.CachedTaskIDs)
}

func TestCheckCachedTasksHandlerMissingIndex(t *testing.T) {
	svc, _ := testService(t, &fakeResolver{}, &fakeGenerator{})
	h := NewHandler(svc, nil, nil)

	rec := postJSON(t, h.CheckCachedTasks, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProtocolHandlerUnknownTask(t *testing.T) {
	svc, _ := testService(t, &fakeResolver{}, &fakeGenerator{})
	h := NewHandler(svc, nil, nil)

	rec := postJSON(t, h.GetProtocol, `{"todo_id": "NOPE-999", "patient_index": 0}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProtocolHandler(t *testing.T) {
	resolver := &fakeResolver{record: protocols.Record{
		TaskCode: "BGM-104", TaskName: "Severe Hyperglycemia", Priority: "P0",
		Content: "Escalate to provider.", FullText: "full protocol text",
	}}
	svc, store := testService(t, resolver, &fakeGenerator{payload: validPayload()})
	h := NewHandler(svc, resolver, store)

	rec := postJSON(t, h.GetProtocol, `{"todo_id": "BGM-104", "patient_index": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "BGM-104", result["task_id"])
	assert.Equal(t, "Hyperglycemia > 400, daily", result["task_name"])
	assert.Equal(t, "Maria Garcia", result["patient_name"])
	assert.Equal(t, false, result["has_cached_assistance"])

	proto, ok := result["protocol"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "BGM-104", proto["task_code"])
	assert.Equal(t, "full protocol text", proto["full_text"])
}
