// Package ingest persists parsed transcript messages inside a caller-owned
// transaction.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/elyx/internal/models"
	"github.com/MikeSquared-Agency/elyx/internal/store"
	"github.com/MikeSquared-Agency/elyx/internal/transcript"
)

// DefaultCommunicationStyle is given to team members created on first sight.
const DefaultCommunicationStyle = "Professional"

// Skipped is a message that could not be stored.
type Skipped struct {
	Index  int // position in the input slice
	Sender string
	Reason string
}

// WriteResult summarises one batch. Saved + len(Skipped) equals the number of
// input messages.
type WriteResult struct {
	Saved              int
	Skipped            []Skipped
	TeamMembersCreated int
}

type Writer struct {
	now    func() time.Time
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{now: time.Now, logger: logger}
}

// Write stores msgs in order against member. It never commits; a failed
// message is skipped and the rest of the batch continues.
func (w *Writer) Write(ctx context.Context, tx store.Tx, member *models.Member, msgs []transcript.Message) WriteResult {
	var res WriteResult
	team := make(map[string]*models.TeamMember)
	memberName := member.DisplayName()

	for i, msg := range msgs {
		var teamID *int64
		if msg.Sender != memberName {
			tm, created, err := w.resolveTeamMember(ctx, tx, team, msg)
			if err != nil {
				w.skip(&res, i, msg, err)
				continue
			}
			if created {
				res.TeamMembersCreated++
			}
			teamID = &tm.ID
		}

		conv := &models.Conversation{
			MemberID:     member.ID,
			TeamMemberID: teamID,
			Sender:       msg.Sender,
			Message:      msg.Message,
			Category:     string(msg.Category),
			Timestamp:    msg.Timestamp,
			Month:        msg.Month,
		}
		if conv.Timestamp.IsZero() {
			conv.Timestamp = w.now()
		}
		if conv.Category == "" {
			conv.Category = string(transcript.CategoryGeneral)
		}
		if conv.Month <= 0 {
			conv.Month = 1
		}

		if err := tx.InsertConversation(ctx, conv); err != nil {
			w.skip(&res, i, msg, err)
			continue
		}
		res.Saved++
	}
	return res
}

// resolveTeamMember finds the sender by name key, creating it when absent.
// Lookups are cached for the life of the batch.
func (w *Writer) resolveTeamMember(ctx context.Context, tx store.Tx, cache map[string]*models.TeamMember, msg transcript.Message) (*models.TeamMember, bool, error) {
	key := transcript.NameKey(msg.Sender)
	if key == "" {
		return nil, false, fmt.Errorf("sender %q has no usable name", msg.Sender)
	}
	if tm, ok := cache[key]; ok {
		return tm, false, nil
	}

	tm, err := tx.TeamMemberByName(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("lookup team member: %w", err)
	}
	if tm != nil {
		cache[key] = tm
		return tm, false, nil
	}

	role := msg.SenderRole
	if role == "" {
		role = transcript.DefaultRole
	}
	tm = &models.TeamMember{
		Name:               msg.Sender,
		NameKey:            key,
		Role:               role,
		Specialty:          role,
		CommunicationStyle: DefaultCommunicationStyle,
	}
	if err := tx.CreateTeamMember(ctx, tm); err != nil {
		return nil, false, fmt.Errorf("create team member: %w", err)
	}
	w.logger.Info("team member created", "name", tm.Name, "role", tm.Role, "id", tm.ID)
	cache[key] = tm
	return tm, true, nil
}

func (w *Writer) skip(res *WriteResult, i int, msg transcript.Message, err error) {
	w.logger.Warn("conversation not saved", "index", i, "sender", msg.Sender, "error", err)
	res.Skipped = append(res.Skipped, Skipped{Index: i, Sender: msg.Sender, Reason: err.Error()})
}
