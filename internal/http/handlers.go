package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"moodflow/internal/core"
	applog "moodflow/internal/log"
	"moodflow/internal/store"
)

const (
	apiVersion   = "0.1.0"
	welcomeText  = "Добро пожаловать в Mood Flow API!"
	defaultLimit = 100
	maxLimit     = 100
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": welcomeText,
		"version": apiVersion,
	})
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady pings the store when it supports it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status, httpStatus := "ready", http.StatusOK
	checks := map[string]any{}

	if p, ok := s.moods.(store.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "ok"
	}

	checks["cache"] = map[string]int{
		"statistics_entries": s.statsLRU.Size(),
		"calendar_entries":   s.calendarLRU.Size(),
	}
	checks["rate_limiter"] = map[string]int{
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("moods_created_total", "counter", "Mood entries created through the API", atomic.LoadInt64(&s.appMetrics.moodsCreated))
	metric("moods_updated_total", "counter", "Mood entries updated through the API", atomic.LoadInt64(&s.appMetrics.moodsUpdated))
	metric("moods_deleted_total", "counter", "Mood entries deleted through the API", atomic.LoadInt64(&s.appMetrics.moodsDeleted))
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", rateMetrics.TotalHits)
	metric("rate_limit_active_clients", "gauge", "Clients tracked by the rate limiter", rateMetrics.ClientCount)
	metric("cache_entries", "gauge", "Cached statistics and calendar responses", s.statsLRU.Size()+s.calendarLRU.Size())
	metric("uptime_seconds", "gauge", "Seconds since the server started", int64(time.Since(s.appMetrics.uptime).Seconds()))
}

type createMoodRequest struct {
	MoodType  string     `json:"mood_type"`
	MoodScore int        `json:"mood_score"`
	Notes     *string    `json:"notes"`
	Date      *core.Date `json:"date"`
}

// updateMoodRequest mirrors core.MoodUpdate: absent or null fields are kept.
type updateMoodRequest struct {
	MoodType  *string    `json:"mood_type"`
	MoodScore *int       `json:"mood_score"`
	Notes     *string    `json:"notes"`
	Date      *core.Date `json:"date"`
}

func (s *Server) handleCreateMood(w http.ResponseWriter, r *http.Request) {
	var req createMoodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	in := core.MoodInput{MoodType: req.MoodType, MoodScore: req.MoodScore, Notes: req.Notes, Date: req.Date}
	e, err := s.moods.CreateEntry(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateInsights()
	atomic.AddInt64(&s.appMetrics.moodsCreated, 1)

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogMoodWritten(r.Context(), applog.OpCreate, e.ID, e.MoodType, e.MoodScore, e.Date.String())
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListMoods(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if skip < 0 {
		s.writeError(w, r, invalidInput("skip must be greater than or equal to 0"))
		return
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit < 1 || limit > maxLimit {
		s.writeError(w, r, invalidInput("limit must be between 1 and %d", maxLimit))
		return
	}

	filter := core.EntryFilter{
		MoodType: r.URL.Query().Get("mood_type"),
		Offset:   skip,
		Limit:    limit,
		Order:    core.OrderCreatedDesc,
	}
	day, ok, err := queryDate(r, "date_filter")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ok {
		filter.From, filter.To = &day, &day
	}

	entries, err := s.moods.ListEntries(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.MoodEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetMood(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.moods.GetEntry(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateMood(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateMoodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.moods.UpdateEntry(r.Context(), id, core.MoodUpdate{
		MoodType:  req.MoodType,
		MoodScore: req.MoodScore,
		Notes:     req.Notes,
		Date:      req.Date,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateInsights()
	atomic.AddInt64(&s.appMetrics.moodsUpdated, 1)

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogMoodWritten(r.Context(), applog.OpUpdate, e.ID, e.MoodType, e.MoodScore, e.Date.String())
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteMood(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.moods.DeleteEntry(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateInsights()
	atomic.AddInt64(&s.appMetrics.moodsDeleted, 1)
	w.WriteHeader(http.StatusNoContent)
}
