// Package seed installs the demo member and care team on an empty store.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/elyx/internal/models"
	"github.com/MikeSquared-Agency/elyx/internal/store"
	"github.com/MikeSquared-Agency/elyx/internal/transcript"
)

var member = models.Member{
	Name:          "Rohan Patel",
	PreferredName: "Rohan Patel",
	Age:           46,
	Gender:        "Male",
	Location:      "Singapore",
	Occupation:    "Regional Head of Sales - FinTech",
	HealthGoals: []string{
		"Reduce heart disease risk by Dec 2026",
		"Enhance cognitive function by June 2026",
		"Annual health screenings starting Nov 2025",
	},
	ChronicConditions: []string{"POTS/Long COVID"},
	Wearables:         []string{"Garmin watch", "Whoop strap"},
}

var team = []models.TeamMember{
	{Name: "Ruby", Role: "Concierge", Specialty: "Concierge", CommunicationStyle: "Empathetic, organized, proactive"},
	{Name: "Dr. Warren", Role: "Medical Strategist", Specialty: "Medical Strategy", CommunicationStyle: "Authoritative, precise, scientific"},
	{Name: "Advik", Role: "Performance Scientist", Specialty: "Performance Science", CommunicationStyle: "Analytical, data-driven, pattern-oriented"},
	{Name: "Carla", Role: "Nutritionist", Specialty: "Nutrition", CommunicationStyle: "Practical, educational, behavioral change focused"},
	{Name: "Rachel", Role: "PT/Physiotherapist", Specialty: "Physical Therapy", CommunicationStyle: "Direct, encouraging, form-focused"},
	{Name: "Neel", Role: "Concierge Lead", Specialty: "Leadership", CommunicationStyle: "Strategic, reassuring, big-picture"},
	{Name: "Dr. Evans", Role: "Stress Management", Specialty: "Stress Management", CommunicationStyle: "Calming, methodical, mindfulness-focused"},
}

// Result reports what Ensure inserted.
type Result struct {
	MemberCreated         bool
	TeamMembersCreated    int
	TimelineEventsCreated int
	HealthMetricsCreated  int
	DecisionsCreated      int
}

// Ensure inserts the demo member when the store has none, every roster entry
// whose name key is not present yet, and the member's dashboard records
// (timeline, health metrics, decisions) that are missing. It is idempotent.
func Ensure(ctx context.Context, st store.DataStore, logger *slog.Logger) (Result, error) {
	var res Result

	existing, err := st.FirstMember(ctx)
	if err != nil {
		return res, fmt.Errorf("check member: %w", err)
	}

	tx, err := st.Begin(ctx)
	if err != nil {
		return res, err
	}
	defer tx.Rollback(ctx)

	target := existing
	if target == nil {
		m := member
		if err := tx.CreateMember(ctx, &m); err != nil {
			return res, err
		}
		res.MemberCreated = true
		target = &m
		logger.Info("seeded member", "id", m.ID, "name", m.Name)
	}

	for _, tm := range team {
		tm.NameKey = transcript.NameKey(tm.Name)
		found, err := tx.TeamMemberByName(ctx, tm.NameKey)
		if err != nil {
			return res, err
		}
		if found != nil {
			continue
		}
		if err := tx.CreateTeamMember(ctx, &tm); err != nil {
			return res, err
		}
		res.TeamMembersCreated++
	}

	if err := ensureDashboard(ctx, tx, target.ID, &res); err != nil {
		return res, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, err
	}
	if res.TeamMembersCreated > 0 {
		logger.Info("seeded care team", "created", res.TeamMembersCreated)
	}
	if n := res.TimelineEventsCreated + res.HealthMetricsCreated + res.DecisionsCreated; n > 0 {
		logger.Info("seeded dashboard records", "member_id", target.ID,
			"timeline", res.TimelineEventsCreated, "metrics", res.HealthMetricsCreated, "decisions", res.DecisionsCreated)
	}
	return res, nil
}

func ensureDashboard(ctx context.Context, tx store.Tx, memberID int64, res *Result) error {
	for _, e := range timeline(memberID) {
		created, err := tx.AddTimelineEvent(ctx, &e)
		if err != nil {
			return err
		}
		if created {
			res.TimelineEventsCreated++
		}
	}
	for _, m := range healthMetrics(memberID) {
		created, err := tx.AddHealthMetric(ctx, &m)
		if err != nil {
			return err
		}
		if created {
			res.HealthMetricsCreated++
		}
	}
	for _, d := range decisions(memberID) {
		created, err := tx.AddDecision(ctx, &d)
		if err != nil {
			return err
		}
		if created {
			res.DecisionsCreated++
		}
	}
	return nil
}
