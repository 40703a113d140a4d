package transcript

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestParser() *Parser {
	p := NewParser(Elyx(), discardLogger())
	p.SetClock(func() time.Time { return fixedNow })
	return p
}

func TestParse_MemberLine(t *testing.T) {
	p := newTestParser()
	res := p.Parse("[15/01/25, 2:15 PM] Rohan Patel: My Garmin is logging high intensity minutes", 1)

	if len(res.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d (skipped %v)", len(res.Messages), res.Skipped)
	}
	msg := res.Messages[0]
	want := time.Date(2025, 1, 15, 14, 15, 0, 0, time.UTC)
	if !msg.Timestamp.Equal(want) {
		t.Errorf("expected timestamp %s, got %s", want, msg.Timestamp)
	}
	if msg.Sender != "Rohan Patel" {
		t.Errorf("expected sender Rohan Patel, got %q", msg.Sender)
	}
	if msg.SenderRole != "Member" {
		t.Errorf("expected role Member, got %q", msg.SenderRole)
	}
	if msg.Category != CategoryDataAnalysis {
		t.Errorf("expected data_analysis, got %s", msg.Category)
	}
	if msg.Month != 1 {
		t.Errorf("expected month 1, got %d", msg.Month)
	}
	if msg.Message != "My Garmin is logging high intensity minutes" {
		t.Errorf("unexpected message text %q", msg.Message)
	}
}

func TestParse_ParentheticalSender(t *testing.T) {
	p := newTestParser()
	res := p.Parse("[15/01/25, 2:38 PM] Ruby (Concierge): Hi Rohan, thank you for sharing this", 1)

	if len(res.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(res.Messages))
	}
	msg := res.Messages[0]
	if msg.Sender != "Ruby" {
		t.Errorf("expected sender Ruby, got %q", msg.Sender)
	}
	if msg.SenderRole != "Concierge" {
		t.Errorf("expected role Concierge, got %q", msg.SenderRole)
	}
	if msg.Category != CategoryTeamResponse {
		t.Errorf("expected team_response, got %s", msg.Category)
	}
}

func TestParse_DropsMalformedLines(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		reason string
	}{
		{"no colon after bracket", "[15/01/25, 2:15 PM] malformed line", ReasonNotMessage},
		{"no bracket", "Rohan Patel: hello there", ReasonNotMessage},
		{"unclosed bracket", "[15/01/25, 2:15 PM Rohan Patel: hello", ReasonNotMessage},
		{"heading", "### Month 1 conversation", ReasonNotMessage},
		{"empty body", "[15/01/25, 2:15 PM] Ruby:   ", ReasonEmptyMessage},
		{"empty sender", "[15/01/25, 2:15 PM] : hello", ReasonEmptySender},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Parse(tt.line, 2)
			if len(res.Messages) != 0 {
				t.Fatalf("expected no messages, got %+v", res.Messages)
			}
			if len(res.Skipped) != 1 {
				t.Fatalf("expected 1 skip, got %d", len(res.Skipped))
			}
			if res.Skipped[0].Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, res.Skipped[0].Reason)
			}
			if res.Skipped[0].Line != 1 {
				t.Errorf("expected line 1, got %d", res.Skipped[0].Line)
			}
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	p := newTestParser()
	for _, in := range []string{"", "\n\n", "   \n\t\n"} {
		res := p.Parse(in, 3)
		if len(res.Messages) != 0 || len(res.Skipped) != 0 {
			t.Errorf("Parse(%q) = %+v, want empty result", in, res)
		}
	}
}

func TestParse_MixedTranscriptKeepsOrder(t *testing.T) {
	transcript := strings.Join([]string{
		"Here is the conversation:",
		"",
		"[15/01/25, 2:15 PM] Rohan Patel: My Garmin is logging high intensity minutes",
		"[15/01/25, 2:38 PM] Ruby (Concierge): Hi Rohan, thank you for sharing this",
		"[15/01/25, 2:40 PM] this one is broken",
		"[15/01/25, 3:05 PM] Dr. Warren (Medical): Let's review your travel protocol",
		"[16/01/25, 9:00 AM] Nova: Welcome aboard!",
	}, "\n")

	p := newTestParser()
	res := p.Parse(transcript, 4)

	nonBlank := 0
	for _, l := range strings.Split(transcript, "\n") {
		if strings.TrimSpace(l) != "" {
			nonBlank++
		}
	}
	if len(res.Messages) > nonBlank {
		t.Fatalf("more messages (%d) than non-blank lines (%d)", len(res.Messages), nonBlank)
	}
	if len(res.Messages)+len(res.Skipped) != nonBlank {
		t.Errorf("messages+skips = %d, want %d", len(res.Messages)+len(res.Skipped), nonBlank)
	}

	wantSenders := []string{"Rohan Patel", "Ruby", "Dr. Warren", "Nova"}
	if len(res.Messages) != len(wantSenders) {
		t.Fatalf("expected %d messages, got %d", len(wantSenders), len(res.Messages))
	}
	for i, want := range wantSenders {
		if res.Messages[i].Sender != want {
			t.Errorf("message[%d] sender = %q, want %q", i, res.Messages[i].Sender, want)
		}
		if res.Messages[i].Month != 4 {
			t.Errorf("message[%d] month = %d, want 4", i, res.Messages[i].Month)
		}
	}
	if res.Messages[2].Category != CategoryTravel {
		t.Errorf("expected travel for protocol message, got %s", res.Messages[2].Category)
	}
	if res.Messages[3].SenderRole != DefaultRole {
		t.Errorf("expected unknown sender role %q, got %q", DefaultRole, res.Messages[3].SenderRole)
	}

	wantSkipLines := []int{1, 5}
	if len(res.Skipped) != len(wantSkipLines) {
		t.Fatalf("expected skips on lines %v, got %+v", wantSkipLines, res.Skipped)
	}
	for i, line := range wantSkipLines {
		if res.Skipped[i].Line != line {
			t.Errorf("skip[%d] line = %d, want %d", i, res.Skipped[i].Line, line)
		}
	}
}

func TestParse_MonthDefaultsToOne(t *testing.T) {
	p := newTestParser()
	res := p.Parse("[15/01/25, 2:15 PM] Ruby: hello", 0)
	if len(res.Messages) != 1 || res.Messages[0].Month != 1 {
		t.Fatalf("expected month 1, got %+v", res.Messages)
	}
}

func TestParse_UnparseableTimestampFallsBackToNow(t *testing.T) {
	p := newTestParser()
	res := p.Parse("[sometime last week] Ruby: checking in", 2)
	if len(res.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(res.Messages))
	}
	if !res.Messages[0].Timestamp.Equal(fixedNow) {
		t.Errorf("expected fallback %s, got %s", fixedNow, res.Messages[0].Timestamp)
	}
	if res.Messages[0].RawTimestamp != "sometime last week" {
		t.Errorf("expected raw timestamp preserved, got %q", res.Messages[0].RawTimestamp)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-01-15 2:15 PM", time.Date(2025, 1, 15, 14, 15, 0, 0, time.UTC), true},
		{"2025-01-15 2:15 pm", time.Date(2025, 1, 15, 14, 15, 0, 0, time.UTC), true},
		{"2025-01-15 9:05AM", time.Date(2025, 1, 15, 9, 5, 0, 0, time.UTC), true},
		{"2025-01-15 14:15", time.Date(2025, 1, 15, 14, 15, 0, 0, time.UTC), true},
		{"2025-01-15T14:15:00Z", time.Date(2025, 1, 15, 14, 15, 0, 0, time.UTC), true},
		{"2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"2025-13-45 2:15 PM", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in, time.UTC)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExpandTimestamp(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"15/01/25, 2:15 PM", "2025-01-15 2:15 PM"},
		{"5/1/25, 9:00 AM", "2025-01-05 9:00 AM"},
		{"15/01/2025, 2:15 PM", "2025-01-15 2:15 PM"},
		{"2025-01-15 14:15", "2025-01-15 14:15"},
		{"Jan 15, 2:15 PM", "Jan 15, 2:15 PM"},
	}
	for _, tt := range tests {
		if got := expandTimestamp(tt.in); got != tt.want {
			t.Errorf("expandTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
