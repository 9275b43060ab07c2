package hevy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hevytools/notion-sync/internal/domain"
	"github.com/hevytools/notion-sync/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var since = time.Date(2024, 10, 20, 0, 0, 0, 0, time.UTC)

type noSleep struct{}

func (noSleep) Sleep(context.Context, time.Duration) {}

func workoutJSON(id string, startTime time.Time) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":%q,"title":"Workout %s","start_time":%q,"exercises":[{"title":"Squat","sets":[{"reps":5}]}]}`,
		id, id, startTime.Format(time.RFC3339),
	))
}

func pageBody(t *testing.T, total int, workouts ...json.RawMessage) []byte {
	t.Helper()

	if workouts == nil {
		workouts = []json.RawMessage{}
	}
	body, err := json.Marshal(map[string]any{"workouts": workouts, "total": total})
	require.NoError(t, err)
	return body
}

func newPagedServer(t *testing.T, pages map[string][]byte) (*httptest.Server, *[]string) {
	t.Helper()

	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/workouts", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("api-key"))

		page := r.URL.Query().Get("page")
		requested = append(requested, page)

		body, ok := pages[page]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	return server, &requested
}

func collectPages(t *testing.T, client *Client) []domain.Page {
	t.Helper()

	var pages []domain.Page
	err := client.StreamSince(context.Background(), since, func(page domain.Page) error {
		pages = append(pages, page)
		return nil
	})
	require.NoError(t, err)
	return pages
}

func TestStreamSinceStopsAfterEmptyPage(t *testing.T) {
	recent := since.Add(48 * time.Hour)

	firstPage := make([]json.RawMessage, 0, 50)
	for i := 0; i < 50; i++ {
		firstPage = append(firstPage, workoutJSON(fmt.Sprintf("a-%02d", i), recent))
	}
	secondPage := make([]json.RawMessage, 0, 30)
	for i := 0; i < 30; i++ {
		secondPage = append(secondPage, workoutJSON(fmt.Sprintf("b-%02d", i), recent))
	}

	server, requested := newPagedServer(t, map[string][]byte{
		"1": pageBody(t, 0, firstPage...),
		"2": pageBody(t, 0, secondPage...),
		"3": pageBody(t, 0),
	})

	client := NewClient("test-key", server.Client(), WithBaseURL(server.URL), WithPageSize(50))

	pages := collectPages(t, client)
	require.Len(t, pages, 3)

	flattened := 0
	for _, page := range pages {
		flattened += len(page.Workouts)
	}
	assert.Equal(t, 80, flattened)
	// The empty third page terminates the walk; no fourth request goes out.
	assert.Equal(t, []string{"1", "2", "3"}, *requested)
}

func TestStreamSinceStopsAtTotalHint(t *testing.T) {
	recent := since.Add(time.Hour)
	server, requested := newPagedServer(t, map[string][]byte{
		"1": pageBody(t, 3, workoutJSON("a", recent), workoutJSON("b", recent)),
		"2": pageBody(t, 3, workoutJSON("c", recent)),
	})

	client := NewClient("test-key", server.Client(), WithBaseURL(server.URL), WithPageSize(2))

	pages := collectPages(t, client)
	require.Len(t, pages, 2)
	assert.Equal(t, []string{"1", "2"}, *requested)
}

func TestStreamSinceStopsAtFirstWorkoutOlderThanSince(t *testing.T) {
	server, requested := newPagedServer(t, map[string][]byte{
		"1": pageBody(t, 0,
			workoutJSON("new-1", since.Add(36*time.Hour)),
			workoutJSON("new-2", since.Add(12*time.Hour)),
			workoutJSON("old-1", since.Add(-time.Hour)),
		),
	})

	client := NewClient("test-key", server.Client(), WithBaseURL(server.URL), WithPageSize(3))

	pages := collectPages(t, client)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Workouts, 2)
	assert.Equal(t, domain.WorkoutID("new-1"), pages[0].Workouts[0].ID)
	assert.Equal(t, domain.WorkoutID("new-2"), pages[0].Workouts[1].ID)
	assert.Equal(t, []string{"1"}, *requested)
}

func TestStreamSinceKeepsWorkoutPayloadIntact(t *testing.T) {
	recent := since.Add(time.Hour)
	server, _ := newPagedServer(t, map[string][]byte{
		"1": pageBody(t, 1, workoutJSON("w-1", recent)),
	})

	client := NewClient("test-key", server.Client(), WithBaseURL(server.URL))

	pages := collectPages(t, client)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Workouts, 1)

	workout := pages[0].Workouts[0]
	assert.Equal(t, "Workout w-1", workout.Title)
	assert.True(t, workout.StartTime.Equal(recent))
	assert.Contains(t, string(workout.Raw), `"exercises"`)
}

func TestStreamSinceUnwrapsWorkoutEnvelope(t *testing.T) {
	recent := since.Add(time.Hour)
	wrapped := json.RawMessage(fmt.Sprintf(`{"workout":%s}`, workoutJSON("w-1", recent)))
	server, _ := newPagedServer(t, map[string][]byte{
		"1": pageBody(t, 1, wrapped),
	})

	client := NewClient("test-key", server.Client(), WithBaseURL(server.URL))

	pages := collectPages(t, client)
	require.Len(t, pages[0].Workouts, 1)
	assert.Equal(t, domain.WorkoutID("w-1"), pages[0].Workouts[0].ID)
}

func TestStreamSinceUnauthorizedFailsWithoutRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad api key", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", server.Client(), WithBaseURL(server.URL), WithSleeper(noSleep{}))

	err := client.StreamSince(context.Background(), since, func(domain.Page) error {
		t.Fatal("no page should be delivered on auth failure")
		return nil
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, 1, attempts)
}

func TestStreamSinceRetriesServerErrorsThenSucceeds(t *testing.T) {
	recent := since.Add(time.Hour)
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		_, _ = w.Write(pageBody(t, 1, workoutJSON("w-1", recent)))
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", server.Client(), WithBaseURL(server.URL), WithSleeper(noSleep{}))

	pages := collectPages(t, client)
	require.Len(t, pages, 1)
	assert.Equal(t, 3, attempts)
}

func TestStreamSinceExhaustsRetryBudget(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "still down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", server.Client(),
		WithBaseURL(server.URL),
		WithSleeper(noSleep{}),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}),
	)

	err := client.StreamSince(context.Background(), since, func(domain.Page) error { return nil })
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Equal(t, 2, attempts)
}

func TestRetryDelayHonoursRetryAfterHeader(t *testing.T) {
	var slept []time.Duration
	sleeper := sleepRecorder{slept: &slept}

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "2")
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write(pageBody(t, 0))
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key", server.Client(), WithBaseURL(server.URL), WithSleeper(sleeper))

	pages := collectPages(t, client)
	require.Len(t, pages, 1)
	require.Len(t, slept, 1)
	assert.Equal(t, 2*time.Second, slept[0])
}

func TestRetryPolicyBackoffCapsAtMax(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseBackoff: 500 * time.Millisecond, MaxBackoff: 2 * time.Second}

	assert.Equal(t, 500*time.Millisecond, policy.backoffForAttempt(1))
	assert.Equal(t, time.Second, policy.backoffForAttempt(2))
	assert.Equal(t, 2*time.Second, policy.backoffForAttempt(3))
	assert.Equal(t, 2*time.Second, policy.backoffForAttempt(4))
}

type sleepRecorder struct {
	slept *[]time.Duration
}

var _ ports.Sleeper = sleepRecorder{}

func (s sleepRecorder) Sleep(_ context.Context, d time.Duration) {
	*s.slept = append(*s.slept, d)
}
