package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/elyx/internal/models"
	"github.com/MikeSquared-Agency/elyx/internal/pipeline"
	"github.com/MikeSquared-Agency/elyx/internal/store"
)

// displayTimestamp matches the chat transcript bracket format.
const displayTimestamp = "02/01/06, 03:04 PM"

type generateResponse struct {
	Success            bool                       `json:"success"`
	Message            string                     `json:"message,omitempty"`
	TotalConversations int                        `json:"total_conversations"`
	StoredTotal        int                        `json:"stored_total"`
	RunID              uuid.UUID                  `json:"run_id"`
	Scenarios          []pipeline.ScenarioOutcome `json:"scenarios"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// generateConversations runs the whole plan synchronously. The run is detached
// from the request context so a client disconnect does not abort it midway.
func (s *Server) generateConversations(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	sum, err := s.runner.Run(ctx, 0)
	switch {
	case errors.Is(err, pipeline.ErrNoMember):
		writeJSON(w, http.StatusNotFound, failureResponse{Error: "No member found"})
		return
	case errors.Is(err, pipeline.ErrBusy):
		writeJSON(w, http.StatusConflict, failureResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("generation run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, failureResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:            true,
		Message:            fmt.Sprintf("Generated %d conversations", sum.Total),
		TotalConversations: sum.Total,
		StoredTotal:        sum.StoredTotal,
		RunID:              sum.RunID,
		Scenarios:          sum.Scenarios,
	})
}

func (s *Server) getMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	m, err := s.store.GetMember(r.Context(), id)
	if err != nil {
		s.logger.Error("get member failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	s.writeConversations(w, r, store.ConversationFilter{})
}

type conversationView struct {
	ID         int64  `json:"id"`
	Sender     string `json:"sender"`
	SenderRole string `json:"sender_role"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Category   string `json:"category"`
	Month      int    `json:"month"`
}

// memberConversations returns the chat view for one member: display
// timestamps, roles, the linked team member's name, and the member's name in
// place of a generic label.
func (s *Server) memberConversations(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	ctx := r.Context()

	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		s.logger.Error("get member failed", "id", memberID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	convs, err := s.store.ListConversations(ctx, store.ConversationFilter{MemberID: memberID})
	if err != nil {
		s.logger.Error("list conversations failed", "member_id", memberID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	views := make([]conversationView, 0, len(convs))
	for _, c := range convs {
		sender := c.Sender
		switch {
		case c.TeamMemberID != nil && c.TeamMember != "":
			sender = c.TeamMember
		case c.TeamMemberID == nil && (c.Sender == "member" || c.Sender == "Member"):
			sender = memberName(member)
		}
		views = append(views, conversationView{
			ID:         c.ID,
			Sender:     sender,
			SenderRole: c.SenderRole,
			Message:    c.Message,
			Timestamp:  c.Timestamp.Format(displayTimestamp),
			Category:   c.Category,
			Month:      c.Month,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func memberName(m *models.Member) string {
	if m == nil {
		return "Rohan Patel"
	}
	return m.DisplayName()
}

// searchConversations filters by substring q and, optionally, member_id.
// A member_id that is not an integer is ignored.
func (s *Server) searchConversations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.ConversationFilter{Query: q.Get("q")}
	if id, err := strconv.ParseInt(q.Get("member_id"), 10, 64); err == nil {
		f.MemberID = id
	}
	s.writeConversations(w, r, f)
}

func (s *Server) writeConversations(w http.ResponseWriter, r *http.Request, f store.ConversationFilter) {
	convs, err := s.store.ListConversations(r.Context(), f)
	if err != nil {
		s.logger.Error("list conversations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

func (s *Server) listTeamMembers(w http.ResponseWriter, r *http.Request) {
	team, err := s.store.ListTeamMembers(r.Context())
	if err != nil {
		s.logger.Error("list team members failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if team == nil {
		team = []models.TeamMember{}
	}
	writeJSON(w, http.StatusOK, team)
}
