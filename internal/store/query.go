package store

import (
	"strconv"
	"strings"
)

type dialect struct {
	placeholder func(n int) string
	like        string
	// month extracts the calendar month of a DATE/text day column as an integer.
	month func(col string) string
}

var (
	postgresDialect = dialect{
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		like:        "ILIKE",
		month:       func(col string) string { return "EXTRACT(MONTH FROM " + col + ")::int" },
	}
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
		like:        "LIKE",
		month:       func(col string) string { return "CAST(strftime('%m', " + col + ") AS INTEGER)" },
	}
)

// sqlBuilder accumulates WHERE conditions written with a single "?" each and
// rewrites them to the dialect's placeholders.
type sqlBuilder struct {
	d     dialect
	where []string
	args  []any
}

func (q *sqlBuilder) add(cond string, arg any) {
	q.args = append(q.args, arg)
	q.where = append(q.where, strings.Replace(cond, "?", q.d.placeholder(len(q.args)), 1))
}

func (q *sqlBuilder) build(sel, order string) (string, []any) {
	var b strings.Builder
	b.WriteString(sel)
	if len(q.where) > 0 {
		b.WriteString("\n\tWHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	b.WriteString("\n\tORDER BY ")
	b.WriteString(order)
	return b.String(), q.args
}

// Conversations from team members carry the joined role and name; the
// member's own messages are labelled "Member".
const conversationSelect = `
	SELECT c.id, c.member_id, c.team_member_id, c.sender,
	       CASE WHEN c.team_member_id IS NULL THEN 'Member' ELSE COALESCE(tm.role, 'Team Member') END,
	       COALESCE(tm.name, ''),
	       c.message, c.category, c.sent_at, c.month
	FROM conversations c
	LEFT JOIN team_members tm ON tm.id = c.team_member_id`

func (d dialect) conversationQuery(f ConversationFilter) (string, []any) {
	q := sqlBuilder{d: d}
	if f.MemberID != 0 {
		q.add("c.member_id = ?", f.MemberID)
	}
	if f.Month != 0 {
		q.add("c.month = ?", f.Month)
	}
	if f.Category != "" {
		q.add("c.category = ?", f.Category)
	}
	if f.Query != "" {
		q.add("c.message "+d.like+` ? ESCAPE '\'`, likePattern(f.Query))
	}
	return q.build(conversationSelect, "c.sent_at, c.id")
}

const timelineSelect = `
	SELECT id, member_id, day, title, category, status, description, outcome,
	       team_members, response_time, time_to_resolution, friction_points
	FROM timeline_events`

func (d dialect) timelineQuery(f TimelineFilter) (string, []any) {
	q := sqlBuilder{d: d}
	if f.MemberID != 0 {
		q.add("member_id = ?", f.MemberID)
	}
	if f.Category != "" {
		q.add("category = ?", f.Category)
	}
	if f.Month != 0 {
		q.add(d.month("day")+" = ?", f.Month)
	}
	return q.build(timelineSelect, "day, id")
}

const healthMetricSelect = `
	SELECT id, member_id, metric_type, value, day
	FROM health_metrics`

func (d dialect) healthMetricQuery(f HealthMetricFilter) (string, []any) {
	q := sqlBuilder{d: d}
	if f.MemberID != 0 {
		q.add("member_id = ?", f.MemberID)
	}
	if f.MetricType != "" {
		q.add("metric_type = ?", f.MetricType)
	}
	if f.Month != 0 {
		q.add(d.month("day")+" = ?", f.Month)
	}
	return q.build(healthMetricSelect, "day, id")
}

const decisionSelect = `
	SELECT id, member_id, day, decision_type, decision, reason, triggered_by, outcome, evidence
	FROM decisions`

func (d dialect) decisionQuery(f DecisionFilter) (string, []any) {
	q := sqlBuilder{d: d}
	if f.MemberID != 0 {
		q.add("member_id = ?", f.MemberID)
	}
	if f.Type != "" {
		q.add("decision_type = ?", f.Type)
	}
	if f.Month != 0 {
		q.add(d.month("day")+" = ?", f.Month)
	}
	return q.build(decisionSelect, "day, id")
}
