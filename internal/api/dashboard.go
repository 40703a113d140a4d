package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/elyx/internal/models"
	"github.com/MikeSquared-Agency/elyx/internal/store"
)

// pathMemberID reads the optional {memberID} segment. ok is false when the
// segment is present but not an integer.
func pathMemberID(r *http.Request) (id int64, ok bool) {
	raw := chi.URLParam(r, "memberID")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

// queryInt returns 0 for a missing or malformed parameter.
func queryInt(r *http.Request, key string) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) listTimeline(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathMemberID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	s.writeTimeline(w, r, store.TimelineFilter{
		MemberID: memberID,
		Category: r.URL.Query().Get("category"),
		Month:    int(queryInt(r, "month")),
	})
}

// filterTimeline narrows by category and member_id; category "all" or empty
// matches every category.
func (s *Server) filterTimeline(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "all" {
		category = ""
	}
	s.writeTimeline(w, r, store.TimelineFilter{
		MemberID: queryInt(r, "member_id"),
		Category: category,
	})
}

func (s *Server) writeTimeline(w http.ResponseWriter, r *http.Request, f store.TimelineFilter) {
	events, err := s.store.ListTimeline(r.Context(), f)
	if err != nil {
		s.logger.Error("list timeline failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if events == nil {
		events = []models.TimelineEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

type metricPoint struct {
	Date  models.Date `json:"date"`
	Value float64     `json:"value"`
}

// listHealthMetrics returns readings grouped by metric type, each series in
// date order.
func (s *Server) listHealthMetrics(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathMemberID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	metrics, err := s.store.ListHealthMetrics(r.Context(), store.HealthMetricFilter{
		MemberID:   memberID,
		MetricType: r.URL.Query().Get("type"),
		Month:      int(queryInt(r, "month")),
	})
	if err != nil {
		s.logger.Error("list health metrics failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	grouped := make(map[string][]metricPoint)
	for _, m := range metrics {
		grouped[m.MetricType] = append(grouped[m.MetricType], metricPoint{Date: m.Date, Value: m.Value})
	}
	writeJSON(w, http.StatusOK, grouped)
}

func (s *Server) listDecisions(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathMemberID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	decisions, err := s.store.ListDecisions(r.Context(), store.DecisionFilter{
		MemberID: memberID,
		Type:     r.URL.Query().Get("type"),
		Month:    int(queryInt(r, "month")),
	})
	if err != nil {
		s.logger.Error("list decisions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if decisions == nil {
		decisions = []models.Decision{}
	}
	writeJSON(w, http.StatusOK, decisions)
}
