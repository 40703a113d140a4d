// Package store persists members, the care team and generated conversations.
// Postgres (pgx) and SQLite (modernc) implementations share one interface.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/elyx/internal/models"
)

// DataStore is the read side plus a transaction factory for writes.
type DataStore interface {
	Ping(ctx context.Context) error
	Close() error

	// Migrate creates the schema if it does not exist. Safe to call repeatedly.
	Migrate(ctx context.Context) error

	// FirstMember returns the lowest-id member, or nil when none exists.
	FirstMember(ctx context.Context) (*models.Member, error)
	// GetMember returns nil, nil when id is unknown.
	GetMember(ctx context.Context, id int64) (*models.Member, error)

	ListTeamMembers(ctx context.Context) ([]models.TeamMember, error)
	// ListConversations returns matches ordered by timestamp, then id.
	ListConversations(ctx context.Context, f ConversationFilter) ([]models.Conversation, error)
	CountConversations(ctx context.Context, memberID int64) (int, error)

	// ListTimeline, ListHealthMetrics and ListDecisions return matches
	// ordered by date, then id.
	ListTimeline(ctx context.Context, f TimelineFilter) ([]models.TimelineEvent, error)
	ListHealthMetrics(ctx context.Context, f HealthMetricFilter) ([]models.HealthMetric, error)
	ListDecisions(ctx context.Context, f DecisionFilter) ([]models.Decision, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx is a unit of work. Each write runs under its own savepoint, so a failed
// statement is undone on its own and the transaction stays usable.
// Rollback after Commit is a no-op.
type Tx interface {
	CreateMember(ctx context.Context, m *models.Member) error
	// TeamMemberByName looks up a team member by normalized name key.
	// Returns nil, nil when absent.
	TeamMemberByName(ctx context.Context, nameKey string) (*models.TeamMember, error)
	CreateTeamMember(ctx context.Context, tm *models.TeamMember) error
	InsertConversation(ctx context.Context, c *models.Conversation) error

	// The Add methods insert a dashboard record unless one with the same
	// natural key exists, and report whether a row was written.
	// Keys: timeline (member, date, title), metric (member, type, date),
	// decision (member, date, decision).
	AddTimelineEvent(ctx context.Context, e *models.TimelineEvent) (bool, error)
	AddHealthMetric(ctx context.Context, m *models.HealthMetric) (bool, error)
	AddDecision(ctx context.Context, d *models.Decision) (bool, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ConversationFilter narrows ListConversations. Zero fields match everything.
// Query is a case-insensitive substring match on the message text.
type ConversationFilter struct {
	MemberID int64
	Month    int
	Category string
	Query    string
}

// TimelineFilter narrows ListTimeline. Month matches the calendar month of
// the event date.
type TimelineFilter struct {
	MemberID int64
	Category string
	Month    int
}

type HealthMetricFilter struct {
	MemberID   int64
	MetricType string
	Month      int
}

type DecisionFilter struct {
	MemberID int64
	Type     string
	Month    int
}

// Open picks an implementation from the URL scheme:
// postgres:// or postgresql:// for Postgres, sqlite://<path> for SQLite.
func Open(ctx context.Context, databaseURL string) (DataStore, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		s, err := NewPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		s, err := NewSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database url %q", redact(databaseURL))
	}
}

var (
	_ DataStore = (*PostgresStore)(nil)
	_ DataStore = (*SQLiteStore)(nil)
)

// likePattern escapes LIKE wildcards in q and wraps it for substring matching.
// Use with ESCAPE '\'.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// redact strips credentials so a bad URL can be logged.
func redact(u string) string {
	if at := strings.LastIndex(u, "@"); at >= 0 {
		if scheme := strings.Index(u, "://"); scheme >= 0 && scheme < at {
			return u[:scheme+3] + "***" + u[at:]
		}
	}
	return u
}
