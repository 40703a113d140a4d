// Package pipeline drives a full generation run: every scenario of the plan is
// generated, parsed and committed as its own batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/elyx/internal/hermes"
	"github.com/MikeSquared-Agency/elyx/internal/ingest"
	"github.com/MikeSquared-Agency/elyx/internal/metrics"
	"github.com/MikeSquared-Agency/elyx/internal/models"
	"github.com/MikeSquared-Agency/elyx/internal/runlock"
	"github.com/MikeSquared-Agency/elyx/internal/scenario"
	"github.com/MikeSquared-Agency/elyx/internal/store"
	"github.com/MikeSquared-Agency/elyx/internal/transcript"
)

var (
	// ErrNoMember means there is nobody to generate conversations for.
	ErrNoMember = errors.New("no member found")
	// ErrBusy means another run holds the run lock.
	ErrBusy = errors.New("a generation run is already in progress")
)

// Generator turns a prompt into transcript text. An empty string means the
// service produced nothing usable.
type Generator interface {
	Generate(ctx context.Context, prompt string) string
}

// Publisher receives progress events. Optional.
type Publisher interface {
	Publish(subject string, data any) error
}

// Scenario outcome statuses.
const (
	StatusGenerated = "generated"
	StatusEmpty     = "empty"
	StatusFailed    = "failed"
)

type ScenarioOutcome struct {
	ID                 string `json:"id"`
	Kind               string `json:"kind"`
	Month              int    `json:"month"`
	Status             string `json:"status"`
	Parsed             int    `json:"parsed"`
	Saved              int    `json:"saved"`
	SkippedLines       int    `json:"skipped_lines"`
	SkippedMessages    int    `json:"skipped_messages"`
	TeamMembersCreated int    `json:"team_members_created"`
	Error              string `json:"error,omitempty"`
	DurationMS         int64  `json:"duration_ms"`
}

// Summary is the result of one run. Total counts conversations committed by
// this run; StoredTotal is the member's row count afterwards, which includes
// earlier runs.
type Summary struct {
	RunID       uuid.UUID         `json:"run_id"`
	MemberID    int64             `json:"member_id"`
	Scenarios   []ScenarioOutcome `json:"scenarios"`
	Total       int               `json:"total"`
	StoredTotal int               `json:"stored_total"`
	DurationMS  int64             `json:"duration_ms"`
}

type Runner struct {
	store  store.DataStore
	gen    Generator
	pub    Publisher
	lock   runlock.Locker
	parser *transcript.Parser
	writer *ingest.Writer
	plan   []scenario.Scenario
	logger *slog.Logger
}

// New returns a runner over the default plan with an in-process run lock.
// pub may be nil.
func New(st store.DataStore, gen Generator, pub Publisher, logger *slog.Logger) *Runner {
	return &Runner{
		store:  st,
		gen:    gen,
		pub:    pub,
		lock:   runlock.NewLocal(),
		parser: transcript.NewParser(transcript.Elyx(), logger),
		writer: ingest.NewWriter(logger),
		plan:   scenario.DefaultPlan(),
		logger: logger,
	}
}

// SetPlan replaces the scenario plan.
func (r *Runner) SetPlan(plan []scenario.Scenario) { r.plan = plan }

// SetLocker replaces the run lock, e.g. with a Redis lease shared by replicas.
func (r *Runner) SetLocker(l runlock.Locker) { r.lock = l }

// Run generates every scenario for memberID, or for the first member when
// memberID is 0. Only a missing member, a store fault while loading it, or a
// held run lock fails the run; scenario faults are reported in the Summary.
func (r *Runner) Run(ctx context.Context, memberID int64) (Summary, error) {
	release, ok, err := r.lock.TryLock(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		metrics.RunsTotal.WithLabelValues("busy").Inc()
		return Summary{}, ErrBusy
	}
	defer release()

	member, err := r.loadMember(ctx, memberID)
	if err != nil {
		return Summary{}, err
	}
	if member == nil {
		metrics.RunsTotal.WithLabelValues("no_member").Inc()
		return Summary{}, ErrNoMember
	}

	start := time.Now()
	sum := Summary{RunID: uuid.New(), MemberID: member.ID}
	log := r.logger.With("run_id", sum.RunID.String(), "member_id", member.ID)
	log.Info("generation run started", "scenarios", len(r.plan))

	for _, sc := range r.plan {
		out := r.runScenario(ctx, log, member, sc)
		sum.Scenarios = append(sum.Scenarios, out)
		sum.Total += out.Saved
		r.publishScenario(log, sum.RunID, member.ID, out)
	}

	stored, err := r.store.CountConversations(ctx, member.ID)
	if err != nil {
		log.Warn("failed to recount conversations", "error", err)
	}
	sum.StoredTotal = stored
	elapsed := time.Since(start)
	sum.DurationMS = elapsed.Milliseconds()

	metrics.RunsTotal.WithLabelValues("completed").Inc()
	log.Info("generation run finished", "total", sum.Total, "stored_total", sum.StoredTotal, "elapsed", elapsed)

	if r.pub != nil {
		ev := hermes.RunCompleted{
			RunID:       sum.RunID.String(),
			MemberID:    member.ID,
			Total:       sum.Total,
			StoredTotal: sum.StoredTotal,
			Scenarios:   len(sum.Scenarios),
			DurationMS:  sum.DurationMS,
		}
		if err := r.pub.Publish(hermes.SubjectRunCompleted, ev); err != nil {
			log.Warn("failed to publish run event", "error", err)
		}
	}
	return sum, nil
}

func (r *Runner) loadMember(ctx context.Context, memberID int64) (*models.Member, error) {
	var (
		m   *models.Member
		err error
	)
	if memberID == 0 {
		m, err = r.store.FirstMember(ctx)
	} else {
		m, err = r.store.GetMember(ctx, memberID)
	}
	if err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}
	return m, nil
}

// runScenario never fails the run. Any error or panic rolls the batch back
// and reports the scenario as failed with nothing saved.
func (r *Runner) runScenario(ctx context.Context, log *slog.Logger, member *models.Member, sc scenario.Scenario) (out ScenarioOutcome) {
	start := time.Now()
	out = ScenarioOutcome{ID: sc.Kind.String(), Kind: sc.Kind.String(), Month: sc.Month}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("scenario panicked", "scenario", out.ID, "panic", fmt.Sprint(rec))
			out.Status, out.Saved, out.Error = StatusFailed, 0, fmt.Sprint(rec)
		}
		out.DurationMS = time.Since(start).Milliseconds()
		metrics.ScenariosTotal.WithLabelValues(out.Kind, out.Status).Inc()
	}()

	fail := func(err error) ScenarioOutcome {
		log.Error("scenario failed", "scenario", out.ID, "error", err)
		out.Status, out.Saved, out.Error = StatusFailed, 0, err.Error()
		return out
	}

	req := scenario.Build(sc)
	out.ID = req.ID
	log.Info("generating scenario", "scenario", req.ID, "month", req.Month)

	genStart := time.Now()
	text := r.gen.Generate(ctx, req.Prompt)
	metrics.GenerationDuration.Observe(time.Since(genStart).Seconds())
	if strings.TrimSpace(text) == "" {
		log.Warn("no response from generator", "scenario", req.ID)
		out.Status = StatusEmpty
		return out
	}

	parsed := r.parser.Parse(text, req.Month)
	out.Parsed = len(parsed.Messages)
	out.SkippedLines = len(parsed.Skipped)
	metrics.TranscriptLinesSkipped.Add(float64(len(parsed.Skipped)))
	if len(parsed.Messages) == 0 {
		log.Warn("transcript contained no messages", "scenario", req.ID, "skipped_lines", out.SkippedLines)
		out.Status = StatusGenerated
		return out
	}

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return fail(err)
	}
	defer tx.Rollback(ctx)

	res := r.writer.Write(ctx, tx, member, parsed.Messages)
	if err := tx.Commit(ctx); err != nil {
		return fail(err)
	}

	out.Status = StatusGenerated
	out.Saved = res.Saved
	out.SkippedMessages = len(res.Skipped)
	out.TeamMembersCreated = res.TeamMembersCreated
	metrics.ConversationsSaved.Add(float64(res.Saved))
	metrics.ConversationsSkipped.Add(float64(len(res.Skipped)))
	metrics.TeamMembersCreated.Add(float64(res.TeamMembersCreated))

	log.Info("scenario saved", "scenario", req.ID, "saved", res.Saved,
		"skipped_lines", out.SkippedLines, "skipped_messages", out.SkippedMessages)
	return out
}

func (r *Runner) publishScenario(log *slog.Logger, runID uuid.UUID, memberID int64, out ScenarioOutcome) {
	if r.pub == nil {
		return
	}
	ev := hermes.ScenarioCompleted{
		RunID:           runID.String(),
		MemberID:        memberID,
		Scenario:        out.ID,
		Month:           out.Month,
		Status:          out.Status,
		Saved:           out.Saved,
		SkippedLines:    out.SkippedLines,
		SkippedMessages: out.SkippedMessages,
		DurationMS:      out.DurationMS,
	}
	if err := r.pub.Publish(hermes.SubjectScenarioCompleted, ev); err != nil {
		log.Warn("failed to publish scenario event", "scenario", out.ID, "error", err)
	}
}
