package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/elyx/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS members (
	id                 BIGSERIAL PRIMARY KEY,
	name               TEXT NOT NULL,
	preferred_name     TEXT NOT NULL,
	age                INTEGER NOT NULL,
	gender             TEXT NOT NULL,
	location           TEXT NOT NULL,
	occupation         TEXT NOT NULL,
	health_goals       TEXT[] NOT NULL DEFAULT '{}',
	chronic_conditions TEXT[] NOT NULL DEFAULT '{}',
	wearables          TEXT[] NOT NULL DEFAULT '{}',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS team_members (
	id                  BIGSERIAL PRIMARY KEY,
	name                TEXT NOT NULL,
	name_key            TEXT NOT NULL UNIQUE,
	role                TEXT NOT NULL,
	specialty           TEXT NOT NULL,
	communication_style TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
	id             BIGSERIAL PRIMARY KEY,
	member_id      BIGINT NOT NULL REFERENCES members(id),
	team_member_id BIGINT REFERENCES team_members(id),
	sender         TEXT NOT NULL,
	message        TEXT NOT NULL,
	category       TEXT NOT NULL DEFAULT 'general',
	sent_at        TIMESTAMPTZ NOT NULL,
	month          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_member_sent ON conversations (member_id, sent_at);

CREATE TABLE IF NOT EXISTS timeline_events (
	id                 BIGSERIAL PRIMARY KEY,
	member_id          BIGINT NOT NULL REFERENCES members(id),
	day                DATE NOT NULL,
	title              TEXT NOT NULL,
	category           TEXT NOT NULL,
	status             TEXT NOT NULL,
	description        TEXT NOT NULL,
	outcome            TEXT NOT NULL,
	team_members       TEXT[] NOT NULL DEFAULT '{}',
	response_time      TEXT NOT NULL DEFAULT '',
	time_to_resolution TEXT NOT NULL DEFAULT '',
	friction_points    TEXT NOT NULL DEFAULT '',
	UNIQUE (member_id, day, title)
);

CREATE TABLE IF NOT EXISTS health_metrics (
	id          BIGSERIAL PRIMARY KEY,
	member_id   BIGINT NOT NULL REFERENCES members(id),
	metric_type TEXT NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	day         DATE NOT NULL,
	UNIQUE (member_id, metric_type, day)
);

CREATE TABLE IF NOT EXISTS decisions (
	id            BIGSERIAL PRIMARY KEY,
	member_id     BIGINT NOT NULL REFERENCES members(id),
	day           DATE NOT NULL,
	decision_type TEXT NOT NULL,
	decision      TEXT NOT NULL,
	reason        TEXT NOT NULL,
	triggered_by  TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	evidence      TEXT NOT NULL,
	UNIQUE (member_id, day, decision)
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const memberColumns = `id, name, preferred_name, age, gender, location, occupation,
	health_goals, chronic_conditions, wearables, created_at`

func scanPGMember(row pgx.Row) (*models.Member, error) {
	var m models.Member
	err := row.Scan(&m.ID, &m.Name, &m.PreferredName, &m.Age, &m.Gender, &m.Location, &m.Occupation,
		&m.HealthGoals, &m.ChronicConditions, &m.Wearables, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan member: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) FirstMember(ctx context.Context) (*models.Member, error) {
	return scanPGMember(s.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members ORDER BY id LIMIT 1`))
}

func (s *PostgresStore) GetMember(ctx context.Context, id int64) (*models.Member, error) {
	return scanPGMember(s.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
}

func (s *PostgresStore) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	rows, err := s.pool.Query(ctx, `
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

func (s *PostgresStore) ListConversations(ctx context.Context, f ConversationFilter) ([]models.Conversation, error) {
	query, args := postgresDialect.conversationQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.MemberID, &c.TeamMemberID, &c.Sender, &c.SenderRole, &c.TeamMember,
			&c.Message, &c.Category, &c.Timestamp, &c.Month); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountConversations(ctx context.Context, memberID int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM conversations WHERE member_id = $1`, memberID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count conversations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListTimeline(ctx context.Context, f TimelineFilter) ([]models.TimelineEvent, error) {
	query, args := postgresDialect.timelineQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	var out []models.TimelineEvent
	for rows.Next() {
		var e models.TimelineEvent
		if err := rows.Scan(&e.ID, &e.MemberID, &e.Date.Time, &e.Title, &e.Category, &e.Status,
			&e.Description, &e.Outcome, &e.TeamMembers, &e.ResponseTime, &e.TimeToResolution, &e.FrictionPoints); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListHealthMetrics(ctx context.Context, f HealthMetricFilter) ([]models.HealthMetric, error) {
	query, args := postgresDialect.healthMetricQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query health metrics: %w", err)
	}
	defer rows.Close()

	var out []models.HealthMetric
	for rows.Next() {
		var m models.HealthMetric
		if err := rows.Scan(&m.ID, &m.MemberID, &m.MetricType, &m.Value, &m.Date.Time); err != nil {
			return nil, fmt.Errorf("scan health metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListDecisions(ctx context.Context, f DecisionFilter) ([]models.Decision, error) {
	query, args := postgresDialect.decisionQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []models.Decision
	for rows.Next() {
		var d models.Decision
		if err := rows.Scan(&d.ID, &d.MemberID, &d.Date.Time, &d.Type, &d.Decision,
			&d.Reason, &d.TriggeredBy, &d.Outcome, &d.Evidence); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

// savepoint runs fn inside a pgx pseudo-nested transaction, which pgx maps
// onto SAVEPOINT / RELEASE / ROLLBACK TO.
func (t *pgTx) savepoint(ctx context.Context, fn func(pgx.Tx) error) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(sp); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

func (t *pgTx) CreateMember(ctx context.Context, m *models.Member) error {
	return t.savepoint(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO members (name, preferred_name, age, gender, location, occupation,
				health_goals, chronic_conditions, wearables)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at`,
			m.Name, m.PreferredName, m.Age, m.Gender, m.Location, m.Occupation,
			nonNil(m.HealthGoals), nonNil(m.ChronicConditions), nonNil(m.Wearables),
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
		return nil
	})
}

func (t *pgTx) TeamMemberByName(ctx context.Context, nameKey string) (*models.TeamMember, error) {
	var found *models.TeamMember
	err := t.savepoint(ctx, func(tx pgx.Tx) error {
		var tm models.TeamMember
		err := tx.QueryRow(ctx, `
			SELECT id, name, name_key, role, specialty, communication_style
			FROM team_members WHERE name_key = $1`, nameKey,
		).Scan(&tm.ID, &tm.Name, &tm.NameKey, &tm.Role, &tm.Specialty, &tm.CommunicationStyle)
		if errors.Is(err, pgx.ErrNoRows) {
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

func (t *pgTx) CreateTeamMember(ctx context.Context, tm *models.TeamMember) error {
	return t.savepoint(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO team_members (name, name_key, role, specialty, communication_style)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			tm.Name, tm.NameKey, tm.Role, tm.Specialty, tm.CommunicationStyle,
		).Scan(&tm.ID)
		if err != nil {
			return fmt.Errorf("insert team member: %w", err)
		}
		return nil
	})
}

func (t *pgTx) InsertConversation(ctx context.Context, c *models.Conversation) error {
	return t.savepoint(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO conversations (member_id, team_member_id, sender, message, category, sent_at, month)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			c.MemberID, c.TeamMemberID, c.Sender, c.Message, c.Category, c.Timestamp, c.Month,
		).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}
		return nil
	})
}

// insertIgnore runs an INSERT ... ON CONFLICT DO NOTHING RETURNING id and
// reports whether a row was written.
func (t *pgTx) insertIgnore(ctx context.Context, what string, id *int64, sql string, args ...any) (bool, error) {
	var created bool
	err := t.savepoint(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, sql, args...).Scan(id)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("insert %s: %w", what, err)
		}
		created = true
		return nil
	})
	return created, err
}

func (t *pgTx) AddTimelineEvent(ctx context.Context, e *models.TimelineEvent) (bool, error) {
	return t.insertIgnore(ctx, "timeline event", &e.ID, `
		INSERT INTO timeline_events (member_id, day, title, category, status, description, outcome,
			team_members, response_time, time_to_resolution, friction_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (member_id, day, title) DO NOTHING
		RETURNING id`,
		e.MemberID, e.Date.Time, e.Title, e.Category, e.Status, e.Description, e.Outcome,
		nonNil(e.TeamMembers), e.ResponseTime, e.TimeToResolution, e.FrictionPoints)
}

func (t *pgTx) AddHealthMetric(ctx context.Context, m *models.HealthMetric) (bool, error) {
	return t.insertIgnore(ctx, "health metric", &m.ID, `
		INSERT INTO health_metrics (member_id, metric_type, value, day)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (member_id, metric_type, day) DO NOTHING
		RETURNING id`,
		m.MemberID, m.MetricType, m.Value, m.Date.Time)
}

func (t *pgTx) AddDecision(ctx context.Context, d *models.Decision) (bool, error) {
	return t.insertIgnore(ctx, "decision", &d.ID, `
		INSERT INTO decisions (member_id, day, decision_type, decision, reason, triggered_by, outcome, evidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (member_id, day, decision) DO NOTHING
		RETURNING id`,
		d.MemberID, d.Date.Time, d.Type, d.Decision, d.Reason, d.TriggeredBy, d.Outcome, d.Evidence)
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *pgTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
