package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/voicectl/internal/application/command"
	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/infrastructure/history"
)

type stubProcessor struct {
	infoErr error
	panics  bool
}

func (p *stubProcessor) Process(_ context.Context, text string, _ domain.Source) domain.Outcome {
	if p.panics {
		panic("unexpected")
	}
	return domain.Succeeded("✅ " + text)
}

func (p *stubProcessor) Info(_ context.Context, intent domain.Intent) (string, error) {
	if p.infoErr != nil {
		return "", p.infoErr
	}
	return "info for " + string(intent), nil
}

func (p *stubProcessor) Platform() domain.Platform { return domain.PlatformLinux }

func newTestServer(t *testing.T, proc *stubProcessor) (*Server, *history.Failover) {
	t.Helper()
	store := history.NewFailover(nil)
	store.Start(context.Background())
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	svc := &command.Service{Processor: proc, History: store}
	fixed := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	return NewServer(svc, proc, WithStorageStatus(store), WithClock(func() time.Time { return fixed })), store
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "voicectl-test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatus(t *testing.T) {
	srv, _ := newTestServer(t, &stubProcessor{})
	rec := do(t, srv, http.MethodGet, "/api/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "linux", body["platform"])
	assert.Equal(t, "2026-04-01T09:00:00Z", body["timestamp"])
	assert.Equal(t, "memory", body["storage"])
	assert.Equal(t, true, body["degraded"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestExecute(t *testing.T) {
	srv, _ := newTestServer(t, &stubProcessor{})
	rec := do(t, srv, http.MethodPost, "/api/execute", `{"text":"open google.com","type":"voice"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body executeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "✅ open google.com", body.Response)
	_, err := time.Parse(domain.TimestampFormat, body.Timestamp)
	assert.NoError(t, err)
}

func TestExecuteBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, &stubProcessor{})
	for _, body := range []string{
		`{"type":"voice"}`,
		`{"text":"mute"}`,
		`{"text":"mute","type":"carrier-pigeon"}`,
		`not json`,
	} {
		rec := do(t, srv, http.MethodPost, "/api/execute", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}

func TestExecutePanicIs500(t *testing.T) {
	srv, _ := newTestServer(t, &stubProcessor{panics: true})
	rec := do(t, srv, http.MethodPost, "/api/execute", `{"text":"mute","type":"text"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHistoryLimitNewestFirst(t *testing.T) {
	srv, _ := newTestServer(t, &stubProcessor{})
	for _, text := range []string{"one", "two", "three", "four", "five"} {
		rec := do(t, srv, http.MethodPost, "/api/execute", `{"text":"`+text+`","type":"text"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, srv, http.MethodGet, "/api/history?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "five", records[0]["text"])
	assert.Equal(t, "four", records[1]["text"])
	assert.Equal(t, "text", records[0]["type"])
	assert.NotContains(t, records[0], "userAgent")
}

func TestHistoryDefaultsAndValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubProcessor{})

	rec := do(t, srv, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearHistory(t *testing.T) {
	srv, store := newTestServer(t, &stubProcessor{})
	do(t, srv, http.MethodPost, "/api/execute", `{"text":"mute","type":"text"}`)
	require.Equal(t, 1, store.Buffered())

	for i := 0; i < 2; i++ {
		rec := do(t, srv, http.MethodDelete, "/api/history", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"History cleared"}`, rec.Body.String())
	}
	assert.Zero(t, store.Buffered())
}

func TestInfoEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &stubProcessor{})
	for _, intent := range domain.InfoIntents {
		rec := do(t, srv, http.MethodGet, "/api/"+string(intent), "")
		require.Equal(t, http.StatusOK, rec.Code, intent)
		assert.JSONEq(t, `{"info":"info for `+string(intent)+`"}`, rec.Body.String())
	}
}

func TestInfoFailureIs500(t *testing.T) {
	srv, _ := newTestServer(t, &stubProcessor{infoErr: errors.New("bad intent")})
	rec := do(t, srv, http.MethodGet, "/api/cpu-info", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUnknownRoutes(t *testing.T) {
	srv, _ := newTestServer(t, &stubProcessor{})

	rec := do(t, srv, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPut, "/api/history", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/execute", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/battery-info", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
