// Package relay exposes the always-on HTTP surface: it accepts live webhook
// events and forwards them downstream, and triggers full sync runs on demand.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hevytools/notion-sync/internal/domain"
	"github.com/hevytools/notion-sync/internal/observability"
	"github.com/hevytools/notion-sync/internal/ports"
)

const maxEventBytes = 1 << 20

// SyncRunner triggers one full pipeline run. *application.Pipeline
// satisfies it.
type SyncRunner interface {
	Run(ctx context.Context, since time.Time) (domain.RunSummary, error)
}

// Handler coordinates HTTP requests with the dispatcher and the pipeline.
type Handler struct {
	dispatcher ports.Dispatcher
	runner     SyncRunner
	token      string
	since      time.Time
	clock      ports.Clock
	logger     *slog.Logger
}

// NewHandler builds a Handler. token guards both routes when non-empty;
// since is the default lower bound for triggered sync runs.
func NewHandler(dispatcher ports.Dispatcher, runner SyncRunner, token string, since time.Time, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if token == "" {
		logger.Warn("no auth token configured, webhook endpoints are unprotected")
	}

	return &Handler{
		dispatcher: dispatcher,
		runner:     runner,
		token:      token,
		since:      since,
		clock:      ports.SystemClock{},
		logger:     logger,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/webhook/hevy", h.webhook)
	mux.HandleFunc("/sync", h.sync)
	mux.HandleFunc("/healthz", healthz)
	mux.Handle("/metrics", promhttp.Handler())
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type webhookEvent struct {
	ID      string       `json:"id"`
	Payload eventPayload `json:"payload"`
}

type eventPayload struct {
	WorkoutID string          `json:"workoutId"`
	Title     string          `json:"title"`
	StartTime *time.Time      `json:"startTime"`
	Workout   json.RawMessage `json:"workout"`
}

func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	const route = "/webhook/hevy"

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorized(r) {
		observability.RecordWebhookRejected(route, "unauthorized")
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxEventBytes)

	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			observability.RecordWebhookRejected(route, "too_large")
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "body exceeds 1 MiB")
			return
		}
		observability.RecordWebhookRejected(route, "malformed")
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if event.ID == "" || event.Payload.WorkoutID == "" {
		observability.RecordWebhookRejected(route, "missing_fields")
		writeError(w, http.StatusBadRequest, "invalid_request", "id and payload.workoutId are required")
		return
	}

	observability.RecordWebhookReceived(route)

	workout := domain.Workout{
		ID:    domain.WorkoutID(event.Payload.WorkoutID),
		Title: event.Payload.Title,
		Raw:   event.Payload.Workout,
	}
	if event.Payload.StartTime != nil {
		workout.StartTime = *event.Payload.StartTime
	}

	outcome := h.dispatcher.Deliver(r.Context(), workout)
	observability.RecordRelay(outcome.Delivered)

	if !outcome.Delivered {
		h.logger.Error("relay failed", "event_id", event.ID, "workout_id", outcome.WorkoutID, "reason", outcome.Reason)
		writeJSON(w, http.StatusBadGateway, relayResponse{
			WorkoutID: string(outcome.WorkoutID),
			Reason:    outcome.Reason,
		})
		return
	}

	h.logger.Info("relayed workout", "event_id", event.ID, "workout_id", outcome.WorkoutID)
	writeJSON(w, http.StatusOK, relayResponse{
		WorkoutID: string(outcome.WorkoutID),
		Delivered: true,
	})
}

type relayResponse struct {
	WorkoutID string `json:"workout_id"`
	Delivered bool   `json:"delivered"`
	Reason    string `json:"reason,omitempty"`
}

type syncRequest struct {
	Since string `json:"since"`
}

type syncResponse struct {
	Status          string             `json:"status"`
	Total           int                `json:"total"`
	Succeeded       int                `json:"succeeded"`
	Failed          int                `json:"failed"`
	FailedIDs       []domain.WorkoutID `json:"failed_ids,omitempty"`
	DurationSeconds float64            `json:"duration_seconds"`
	Timestamp       time.Time          `json:"timestamp"`
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
		return
	}

	since := h.since
	var req syncRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxEventBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Since != "" {
		parsed, err := time.Parse("2006-01-02", req.Since)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "since must be YYYY-MM-DD")
			return
		}
		since = parsed
	}

	h.logger.Info("sync triggered", "since", since.Format("2006-01-02"))

	run, err := h.runner.Run(r.Context(), since)
	if err != nil {
		h.logger.Error("sync run failed", "error", err)
		switch {
		case errors.Is(err, domain.ErrSourceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "source_unavailable", err.Error())
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusInternalServerError, "upstream_unauthorized", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	status := http.StatusOK
	resp := syncResponse{
		Status:          "completed",
		Total:           run.Total,
		Succeeded:       run.Succeeded,
		Failed:          run.Failed,
		FailedIDs:       run.FailedIDs,
		DurationSeconds: run.Duration.Seconds(),
		Timestamp:       h.clock.Now().UTC(),
	}
	if run.Failed > 0 {
		status = http.StatusBadGateway
		resp.Status = "completed_with_failures"
	} else {
		observability.RecordSyncCompleted(h.clock.Now())
	}

	h.logger.Info("sync finished", "total", run.Total, "succeeded", run.Succeeded, "failed", run.Failed)
	writeJSON(w, status, resp)
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.token == "" {
		return true
	}

	header := r.Header.Get("Authorization")
	bearer, ok := strings.CutPrefix(header, "Bearer ")
	return ok && bearer == h.token
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{
		"type":   code,
		"detail": detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
