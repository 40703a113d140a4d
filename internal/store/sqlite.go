package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MikeSquared-Agency/elyx/internal/models"
)

// SQLiteStore is the default local store. List columns are JSON text, times
// are unix seconds and days are "2006-01-02" text.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS members (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	name               TEXT NOT NULL,
	preferred_name     TEXT NOT NULL,
	age                INTEGER NOT NULL,
	gender             TEXT NOT NULL,
	location           TEXT NOT NULL,
	occupation         TEXT NOT NULL,
	health_goals       TEXT NOT NULL DEFAULT '[]',
	chronic_conditions TEXT NOT NULL DEFAULT '[]',
	wearables          TEXT NOT NULL DEFAULT '[]',
	created_at         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS team_members (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	name                TEXT NOT NULL,
	name_key            TEXT NOT NULL UNIQUE,
	role                TEXT NOT NULL,
	specialty           TEXT NOT NULL,
	communication_style TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id      INTEGER NOT NULL REFERENCES members(id),
	team_member_id INTEGER REFERENCES team_members(id),
	sender         TEXT NOT NULL,
	message        TEXT NOT NULL,
	category       TEXT NOT NULL DEFAULT 'general',
	sent_at        INTEGER NOT NULL,
	month          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_member_sent ON conversations (member_id, sent_at);

CREATE TABLE IF NOT EXISTS timeline_events (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id          INTEGER NOT NULL REFERENCES members(id),
	day                TEXT NOT NULL,
	title              TEXT NOT NULL,
	category           TEXT NOT NULL,
	status             TEXT NOT NULL,
	description        TEXT NOT NULL,
	outcome            TEXT NOT NULL,
	team_members       TEXT NOT NULL DEFAULT '[]',
	response_time      TEXT NOT NULL DEFAULT '',
	time_to_resolution TEXT NOT NULL DEFAULT '',
	friction_points    TEXT NOT NULL DEFAULT '',
	UNIQUE (member_id, day, title)
);

CREATE TABLE IF NOT EXISTS health_metrics (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id   INTEGER NOT NULL REFERENCES members(id),
	metric_type TEXT NOT NULL,
	value       REAL NOT NULL,
	day         TEXT NOT NULL,
	UNIQUE (member_id, metric_type, day)
);

CREATE TABLE IF NOT EXISTS decisions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id     INTEGER NOT NULL REFERENCES members(id),
	day           TEXT NOT NULL,
	decision_type TEXT NOT NULL,
	decision      TEXT NOT NULL,
	reason        TEXT NOT NULL,
	triggered_by  TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	evidence      TEXT NOT NULL,
	UNIQUE (member_id, day, decision)
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMember(row rowScanner) (*models.Member, error) {
	var (
		m                       models.Member
		goals, conditions, wear string
		createdAt               int64
	)
	err := row.Scan(&m.ID, &m.Name, &m.PreferredName, &m.Age, &m.Gender, &m.Location, &m.Occupation,
		&goals, &conditions, &wear, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan member: %w", err)
	}
	if m.HealthGoals, err = decodeList(goals); err != nil {
		return nil, fmt.Errorf("decode health_goals: %w", err)
	}
	if m.ChronicConditions, err = decodeList(conditions); err != nil {
		return nil, fmt.Errorf("decode chronic_conditions: %w", err)
	}
	if m.Wearables, err = decodeList(wear); err != nil {
		return nil, fmt.Errorf("decode wearables: %w", err)
	}
	m.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &m, nil
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeList(l []string) string {
	b, _ := json.Marshal(nonNil(l))
	return string(b)
}

func (s *SQLiteStore) FirstMember(ctx context.Context) (*models.Member, error) {
	return scanSQLiteMember(s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members ORDER BY id LIMIT 1`))
}

func (s *SQLiteStore) GetMember(ctx context.Context, id int64) (*models.Member, error) {
	return scanSQLiteMember(s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id))
}

func (s *SQLiteStore) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, name_key, role, specialty, communication_style
		FROM team_members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query team members: %w", err)
	}
	defer rows.Close()

	var out []models.TeamMember
	for rows.Next() {
		var tm models.TeamMember
		if err := rows.Scan(&tm.ID, &tm.Name, &tm.NameKey, &tm.Role, &tm.Specialty, &tm.CommunicationStyle); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		out = append(out, tm)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListConversations(ctx context.Context, f ConversationFilter) ([]models.Conversation, error) {
	query, args := sqliteDialect.conversationQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var (
			c      models.Conversation
			teamID sql.NullInt64
			sentAt int64
		)
		if err := rows.Scan(&c.ID, &c.MemberID, &teamID, &c.Sender, &c.SenderRole, &c.TeamMember,
			&c.Message, &c.Category, &sentAt, &c.Month); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		if teamID.Valid {
			id := teamID.Int64
			c.TeamMemberID = &id
		}
		c.Timestamp = time.Unix(sentAt, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountConversations(ctx context.Context, memberID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM conversations WHERE member_id = ?`, memberID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count conversations: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) ListTimeline(ctx context.Context, f TimelineFilter) ([]models.TimelineEvent, error) {
	query, args := sqliteDialect.timelineQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	var out []models.TimelineEvent
	for rows.Next() {
		var (
			e         models.TimelineEvent
			day, team string
		)
		if err := rows.Scan(&e.ID, &e.MemberID, &day, &e.Title, &e.Category, &e.Status,
			&e.Description, &e.Outcome, &team, &e.ResponseTime, &e.TimeToResolution, &e.FrictionPoints); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		if e.Date, err = models.ParseDate(day); err != nil {
			return nil, err
		}
		if e.TeamMembers, err = decodeList(team); err != nil {
			return nil, fmt.Errorf("decode team_members: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListHealthMetrics(ctx context.Context, f HealthMetricFilter) ([]models.HealthMetric, error) {
	query, args := sqliteDialect.healthMetricQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query health metrics: %w", err)
	}
	defer rows.Close()

	var out []models.HealthMetric
	for rows.Next() {
		var (
			m   models.HealthMetric
			day string
		)
		if err := rows.Scan(&m.ID, &m.MemberID, &m.MetricType, &m.Value, &day); err != nil {
			return nil, fmt.Errorf("scan health metric: %w", err)
		}
		if m.Date, err = models.ParseDate(day); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListDecisions(ctx context.Context, f DecisionFilter) ([]models.Decision, error) {
	query, args := sqliteDialect.decisionQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []models.Decision
	for rows.Next() {
		var (
			d   models.Decision
			day string
		)
		if err := rows.Scan(&d.ID, &d.MemberID, &day, &d.Type, &d.Decision,
			&d.Reason, &d.TriggeredBy, &d.Outcome, &d.Evidence); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if d.Date, err = models.ParseDate(day); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &sqliteTx{tx: tx}, nil
}

type sqliteTx struct {
	tx *sql.Tx
	sp int
}

func (t *sqliteTx) savepoint(ctx context.Context, fn func() error) error {
	t.sp++
	name := fmt.Sprintf("sp_%d", t.sp)
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(); err != nil {
		// ROLLBACK TO leaves the savepoint on the stack; RELEASE pops it.
		_, _ = t.tx.ExecContext(ctx, "ROLLBACK TO "+name)
		_, _ = t.tx.ExecContext(ctx, "RELEASE "+name)
		return err
	}
	if _, err := t.tx.ExecContext(ctx, "RELEASE "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

func (t *sqliteTx) CreateMember(ctx context.Context, m *models.Member) error {
	return t.savepoint(ctx, func() error {
		now := time.Now().UTC().Truncate(time.Second)
		res, err := t.tx.ExecContext(ctx, `
			INSERT INTO members (name, preferred_name, age, gender, location, occupation,
				health_goals, chronic_conditions, wearables, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.Name, m.PreferredName, m.Age, m.Gender, m.Location, m.Occupation,
			encodeList(m.HealthGoals), encodeList(m.ChronicConditions), encodeList(m.Wearables), now.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
		if m.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("member id: %w", err)
		}
		m.CreatedAt = now
		return nil
	})
}

func (t *sqliteTx) TeamMemberByName(ctx context.Context, nameKey string) (*models.TeamMember, error) {
	var found *models.TeamMember
	err := t.savepoint(ctx, func() error {
		var tm models.TeamMember
		err := t.tx.QueryRowContext(ctx, `
			SELECT id, name, name_key, role, specialty, communication_style
			FROM team_members WHERE name_key = ?`, nameKey,
		).Scan(&tm.ID, &tm.Name, &tm.NameKey, &tm.Role, &tm.Specialty, &tm.CommunicationStyle)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("query team member: %w", err)
		}
		found = &tm
		return nil
	})
	return found, err
}

func (t *sqliteTx) CreateTeamMember(ctx context.Context, tm *models.TeamMember) error {
	return t.savepoint(ctx, func() error {
		res, err := t.tx.ExecContext(ctx, `
			INSERT INTO team_members (name, name_key, role, specialty, communication_style)
			VALUES (?, ?, ?, ?, ?)`,
			tm.Name, tm.NameKey, tm.Role, tm.Specialty, tm.CommunicationStyle,
		)
		if err != nil {
			return fmt.Errorf("insert team member: %w", err)
		}
		if tm.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("team member id: %w", err)
		}
		return nil
	})
}

func (t *sqliteTx) InsertConversation(ctx context.Context, c *models.Conversation) error {
	return t.savepoint(ctx, func() error {
		var teamID any
		if c.TeamMemberID != nil {
			teamID = *c.TeamMemberID
		}
		res, err := t.tx.ExecContext(ctx, `
			INSERT INTO conversations (member_id, team_member_id, sender, message, category, sent_at, month)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.MemberID, teamID, c.Sender, c.Message, c.Category, c.Timestamp.Unix(), c.Month,
		)
		if err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("conversation id: %w", err)
		}
		return nil
	})
}

// insertIgnore runs an INSERT ... ON CONFLICT DO NOTHING and reports whether
// a row was written. id is set only when it was.
func (t *sqliteTx) insertIgnore(ctx context.Context, what string, id *int64, query string, args ...any) (bool, error) {
	var created bool
	err := t.savepoint(ctx, func() error {
		res, err := t.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert %s: %w", what, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s rows affected: %w", what, err)
		}
		if n == 0 {
			return nil
		}
		if *id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("%s id: %w", what, err)
		}
		created = true
		return nil
	})
	return created, err
}

func (t *sqliteTx) AddTimelineEvent(ctx context.Context, e *models.TimelineEvent) (bool, error) {
	return t.insertIgnore(ctx, "timeline event", &e.ID, `
		INSERT INTO timeline_events (member_id, day, title, category, status, description, outcome,
			team_members, response_time, time_to_resolution, friction_points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (member_id, day, title) DO NOTHING`,
		e.MemberID, e.Date.String(), e.Title, e.Category, e.Status, e.Description, e.Outcome,
		encodeList(e.TeamMembers), e.ResponseTime, e.TimeToResolution, e.FrictionPoints)
}

func (t *sqliteTx) AddHealthMetric(ctx context.Context, m *models.HealthMetric) (bool, error) {
	return t.insertIgnore(ctx, "health metric", &m.ID, `
		INSERT INTO health_metrics (member_id, metric_type, value, day)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (member_id, metric_type, day) DO NOTHING`,
		m.MemberID, m.MetricType, m.Value, m.Date.String())
}

func (t *sqliteTx) AddDecision(ctx context.Context, d *models.Decision) (bool, error) {
	return t.insertIgnore(ctx, "decision", &d.ID, `
		INSERT INTO decisions (member_id, day, decision_type, decision, reason, triggered_by, outcome, evidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (member_id, day, decision) DO NOTHING`,
		d.MemberID, d.Date.String(), d.Type, d.Decision, d.Reason, d.TriggeredBy, d.Outcome, d.Evidence)
}

func (t *sqliteTx) Commit(context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *sqliteTx) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
