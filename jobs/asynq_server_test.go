package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEnqueuer struct {
	payload OrdersSyncPayload
	err     error
	calls   int
}

func (m *mockEnqueuer) EnqueueOrdersSync(ctx context.Context, payload OrdersSyncPayload) (*asynq.TaskInfo, error) {
	m.calls++
	m.payload = payload
	if m.err != nil {
		return nil, m.err
	}
	return &asynq.TaskInfo{}, nil
}

func TestTriggerSyncAccepted(t *testing.T) {
	enq := &mockEnqueuer{}
	h := NewHandler(enq, testLogger())
	r := chi.NewRouter()
	h.MountRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, enq.calls)
	assert.NotEqual(t, uuid.Nil, enq.payload.RunID)

	var body struct {
		Data struct {
			RunID uuid.UUID `json:"runId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, enq.payload.RunID, body.Data.RunID)
}

func TestTriggerSyncEnqueueFailure(t *testing.T) {
	enq := &mockEnqueuer{err: errors.New("redis down")}
	h := NewHandler(enq, testLogger())
	r := chi.NewRouter()
	h.MountRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body["error"])
}

func TestClientEnqueueOrdersSync(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	info, err := client.EnqueueOrdersSync(context.Background(), OrdersSyncPayload{RunID: uuid.New()})
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, TaskTypeOrdersSync, info.Type)
	assert.Equal(t, QueueDefault, info.Queue)
}
