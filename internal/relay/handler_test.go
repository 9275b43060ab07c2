package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hevytools/notion-sync/internal/domain"
	"github.com/hevytools/notion-sync/internal/ports/mocks"
)

type runnerStub struct {
	since   time.Time
	summary domain.RunSummary
	err     error
	called  bool
}

func (r *runnerStub) Run(_ context.Context, since time.Time) (domain.RunSummary, error) {
	r.called = true
	r.since = since
	return r.summary, r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func serveRequest(t *testing.T, handler *Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)
	return recorder
}

func TestWebhookRelaysWorkoutDownstream(t *testing.T) {
	dispatcher := mocks.NewMockDispatcher(t)
	dispatcher.EXPECT().
		Deliver(mock.Anything, mock.AnythingOfType("domain.Workout")).
		Run(func(_ context.Context, workout domain.Workout) {
			assert.Equal(t, domain.WorkoutID("w-123"), workout.ID)
			assert.Equal(t, "Morning Push", workout.Title)
			assert.JSONEq(t, `{"id":"w-123","title":"Morning Push"}`, string(workout.Raw))
		}).
		Return(domain.Delivered("w-123")).
		Once()

	handler := NewHandler(dispatcher, &runnerStub{}, "secret", time.Time{}, discardLogger())

	body := `{"id":"evt-1","payload":{"workoutId":"w-123","title":"Morning Push","workout":{"id":"w-123","title":"Morning Push"}}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/hevy", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")

	recorder := serveRequest(t, handler, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp relayResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.True(t, resp.Delivered)
	assert.Equal(t, "w-123", resp.WorkoutID)
}

func TestWebhookRejectsBadBearer(t *testing.T) {
	dispatcher := mocks.NewMockDispatcher(t)
	handler := NewHandler(dispatcher, &runnerStub{}, "secret", time.Time{}, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/webhook/hevy", strings.NewReader(`{"id":"evt-1","payload":{"workoutId":"w-1"}}`))
	req.Header.Set("Authorization", "Bearer wrong")

	recorder := serveRequest(t, handler, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	dispatcher.AssertNotCalled(t, "Deliver")
}

func TestWebhookAllowsAnyCallerWithoutToken(t *testing.T) {
	dispatcher := mocks.NewMockDispatcher(t)
	dispatcher.EXPECT().
		Deliver(mock.Anything, mock.AnythingOfType("domain.Workout")).
		Return(domain.Delivered("w-1")).
		Once()

	handler := NewHandler(dispatcher, &runnerStub{}, "", time.Time{}, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/webhook/hevy", strings.NewReader(`{"id":"evt-1","payload":{"workoutId":"w-1"}}`))

	recorder := serveRequest(t, handler, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestWebhookRejectsMalformedAndIncompleteEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"id":`},
		{name: "missing event id", body: `{"payload":{"workoutId":"w-1"}}`},
		{name: "missing workout id", body: `{"id":"evt-1","payload":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := mocks.NewMockDispatcher(t)
			handler := NewHandler(dispatcher, &runnerStub{}, "", time.Time{}, discardLogger())

			req := httptest.NewRequest(http.MethodPost, "/webhook/hevy", strings.NewReader(tt.body))
			recorder := serveRequest(t, handler, req)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			dispatcher.AssertNotCalled(t, "Deliver")
		})
	}
}

func TestWebhookRejectsOversizedBody(t *testing.T) {
	dispatcher := mocks.NewMockDispatcher(t)
	handler := NewHandler(dispatcher, &runnerStub{}, "", time.Time{}, discardLogger())

	body := `{"id":"` + strings.Repeat("a", maxEventBytes+1) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/hevy", strings.NewReader(body))

	recorder := serveRequest(t, handler, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
	dispatcher.AssertNotCalled(t, "Deliver")
}

func TestWebhookReportsDeliveryFailure(t *testing.T) {
	dispatcher := mocks.NewMockDispatcher(t)
	dispatcher.EXPECT().
		Deliver(mock.Anything, mock.AnythingOfType("domain.Workout")).
		Return(domain.Undelivered("w-1", "status 500: boom")).
		Once()

	handler := NewHandler(dispatcher, &runnerStub{}, "", time.Time{}, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/webhook/hevy", strings.NewReader(`{"id":"evt-1","payload":{"workoutId":"w-1"}}`))

	recorder := serveRequest(t, handler, req)

	require.Equal(t, http.StatusBadGateway, recorder.Code)

	var resp relayResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.False(t, resp.Delivered)
	assert.Equal(t, "status 500: boom", resp.Reason)
}

func TestSyncRunsWithDefaultSince(t *testing.T) {
	defaultSince := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	runner := &runnerStub{summary: domain.RunSummary{Total: 4, Succeeded: 4, Duration: 2 * time.Second}}

	handler := NewHandler(mocks.NewMockDispatcher(t), runner, "", defaultSince, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(""))
	recorder := serveRequest(t, handler, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, runner.called)
	assert.Equal(t, defaultSince, runner.since)

	var resp syncResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 4, resp.Succeeded)
	assert.InDelta(t, 2.0, resp.DurationSeconds, 0.001)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestSyncHonorsSinceOverride(t *testing.T) {
	runner := &runnerStub{summary: domain.RunSummary{}}
	handler := NewHandler(mocks.NewMockDispatcher(t), runner, "", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(`{"since":"2025-06-15"}`))
	recorder := serveRequest(t, handler, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), runner.since)
}

func TestSyncRejectsBadSince(t *testing.T) {
	runner := &runnerStub{}
	handler := NewHandler(mocks.NewMockDispatcher(t), runner, "", time.Time{}, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(`{"since":"June 15"}`))
	recorder := serveRequest(t, handler, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.False(t, runner.called)
}

func TestSyncReportsPartialFailure(t *testing.T) {
	runner := &runnerStub{summary: domain.RunSummary{
		Total:     3,
		Succeeded: 2,
		Failed:    1,
		FailedIDs: []domain.WorkoutID{"w-2"},
		Duration:  time.Second,
	}}
	handler := NewHandler(mocks.NewMockDispatcher(t), runner, "", time.Time{}, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(""))
	recorder := serveRequest(t, handler, req)

	require.Equal(t, http.StatusBadGateway, recorder.Code)

	var resp syncResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "completed_with_failures", resp.Status)
	assert.Equal(t, []domain.WorkoutID{"w-2"}, resp.FailedIDs)
}

func TestSyncMapsFetchErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "source unavailable", err: domain.ErrSourceUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "upstream unauthorized", err: domain.ErrUnauthorized, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &runnerStub{err: tt.err}
			handler := NewHandler(mocks.NewMockDispatcher(t), runner, "", time.Time{}, discardLogger())

			req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(""))
			recorder := serveRequest(t, handler, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	handler := NewHandler(mocks.NewMockDispatcher(t), &runnerStub{}, "", time.Time{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := serveRequest(t, handler, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())
}
