package http

import (
	"context"
	"fmt"
	"net/http"

	"moodflow/internal/insights"
)

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	start, ok, err := queryDate(r, "start_date")
	if err == nil && !ok {
		err = invalidInput("start_date is required")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	end, ok, err := queryDate(r, "end_date")
	if err == nil && !ok {
		err = invalidInput("end_date is required")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := start.String() + "|" + end.String()
	summary, err := s.statsCache.Get(r.Context(), key, func(ctx context.Context) (insights.RangeSummary, error) {
		return insights.ComputeRangeStatistics(ctx, s.moods, start, end)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleCalendar serves a month view. A missing year or month falls back to
// the current one independently of the other.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := fmt.Sprintf("%04d-%02d", year, month)
	view, err := s.calendarCache.Get(r.Context(), key, func(ctx context.Context) (insights.CalendarView, error) {
		return insights.BuildMonthCalendar(ctx, s.moods, year, month)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
