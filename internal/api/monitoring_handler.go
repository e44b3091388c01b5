// Package api provides the HTTP handlers for the monitoring surface.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avolkova/tasknotify/internal/reconciler"
	"github.com/avolkova/tasknotify/internal/store"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 500
	recentEventsCount  = 10
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CycleReporter exposes the most recent reconciliation cycle result.
type CycleReporter interface {
	LastResult() reconciler.CycleResult
}

// MonitoringHandler serves the read-only monitoring endpoints.
type MonitoringHandler struct {
	eventLog store.EventLogStore
	db       Pinger
	cycles   CycleReporter
	logger   *slog.Logger
}

// NewMonitoringHandler creates a MonitoringHandler.
func NewMonitoringHandler(
	eventLog store.EventLogStore,
	db Pinger,
	cycles CycleReporter,
	logger *slog.Logger,
) *MonitoringHandler {
	return &MonitoringHandler{
		eventLog: eventLog,
		db:       db,
		cycles:   cycles,
		logger:   logger.With("component", "monitoring_handler"),
	}
}

// StatsResponse is the body of GET /monitoring/stats.
type StatsResponse struct {
	TotalEvents  int64                  `json:"total_events"`
	EventsByType map[string]int64       `json:"events_by_type"`
	RecentEvents []store.EventRecord    `json:"recent_events"`
	LastCycle    reconciler.CycleResult `json:"last_cycle"`
}

// EventsResponse is the body of GET /monitoring/events.
type EventsResponse struct {
	Total  int64               `json:"total"`
	Skip   int                 `json:"skip"`
	Limit  int                 `json:"limit"`
	Events []store.EventRecord `json:"events"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Service  string `json:"service"`
}

// Health handles GET /healthz.
func (h *MonitoringHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Database: "ok", Service: "notification"}

	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Warn("health check database ping failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "error"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	h.respondJSON(w, status, resp)
}

// Stats handles GET /monitoring/stats.
func (h *MonitoringHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.eventLog.CountByKind(ctx)
	if err != nil {
		h.respondError(w, "failed to load event counts", err)
		return
	}

	recent, total, err := h.eventLog.List(ctx, 0, recentEventsCount)
	if err != nil {
		h.respondError(w, "failed to load recent events", err)
		return
	}
	if recent == nil {
		recent = []store.EventRecord{}
	}

	h.respondJSON(w, http.StatusOK, StatsResponse{
		TotalEvents:  total,
		EventsByType: counts,
		RecentEvents: recent,
		LastCycle:    h.cycles.LastResult(),
	})
}

// Events handles GET /monitoring/events with skip/limit pagination.
func (h *MonitoringHandler) Events(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit := queryInt(r, "limit", defaultEventsLimit)
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}

	records, total, err := h.eventLog.List(r.Context(), skip, limit)
	if err != nil {
		h.respondError(w, "failed to list events", err)
		return
	}
	if records == nil {
		records = []store.EventRecord{}
	}

	h.respondJSON(w, http.StatusOK, EventsResponse{
		Total:  total,
		Skip:   skip,
		Limit:  limit,
		Events: records,
	})
}

func (h *MonitoringHandler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *MonitoringHandler) respondError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	h.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
