package transcript

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Message is one chat line turned into a structured record.
type Message struct {
	Timestamp    time.Time
	RawTimestamp string // reconstructed bracket text, kept for diagnostics
	Sender       string
	SenderRole   string
	Message      string
	Category     Category
	Month        int
}

// Skip records a non-blank line that did not produce a message.
type Skip struct {
	Line   int // 1-based line number in the transcript
	Text   string
	Reason string
}

// Result holds the outcome of parsing one transcript, in source line order.
type Result struct {
	Messages []Message
	Skipped  []Skip
}

// Skip reasons.
const (
	ReasonNotMessage   = "not a message line"
	ReasonEmptySender  = "empty sender"
	ReasonEmptyMessage = "empty message"
	ReasonPanic        = "parse panic"
)

// Parser converts generated chat transcripts into messages.
type Parser struct {
	dir    *Directory
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

func NewParser(dir *Directory, logger *slog.Logger) *Parser {
	return &Parser{
		dir:    dir,
		now:    time.Now,
		loc:    time.UTC,
		logger: logger,
	}
}

// SetClock overrides the fallback clock used for unparseable timestamps.
func (p *Parser) SetClock(now func() time.Time) { p.now = now }

// Parse reads transcript line by line. Lines that do not look like
// "[timestamp] Sender: text" are dropped; one bad line never affects the rest.
// month <= 0 is recorded as month 1.
func (p *Parser) Parse(transcript string, month int) Result {
	if month <= 0 {
		month = 1
	}

	var res Result
	scanner := bufio.NewScanner(strings.NewReader(transcript))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		msg, reason := p.parseLineSafe(line, month)
		if reason != "" {
			p.logger.Debug("transcript line skipped", "line", lineNo, "reason", reason, "text", line)
			res.Skipped = append(res.Skipped, Skip{Line: lineNo, Text: line, Reason: reason})
			continue
		}
		res.Messages = append(res.Messages, msg)
	}
	if err := scanner.Err(); err != nil {
		// Only an over-long line gets here; keep what was parsed so far.
		p.logger.Warn("transcript scan stopped early", "line", lineNo+1, "error", err)
		res.Skipped = append(res.Skipped, Skip{Line: lineNo + 1, Reason: err.Error()})
	}
	return res
}

func (p *Parser) parseLineSafe(line string, month int) (msg Message, reason string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic parsing transcript line", "panic", fmt.Sprint(r), "text", line)
			msg, reason = Message{}, ReasonPanic
		}
	}()
	return p.parseLine(line, month)
}

func (p *Parser) parseLine(line string, month int) (Message, string) {
	if !strings.HasPrefix(line, "[") {
		return Message{}, ReasonNotMessage
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return Message{}, ReasonNotMessage
	}
	remainder := strings.TrimSpace(line[end+1:])
	colon := strings.Index(remainder, ":")
	if colon < 0 {
		return Message{}, ReasonNotMessage
	}

	rawTS := expandTimestamp(strings.TrimSpace(line[1:end]))

	sender := StripParenthetical(strings.TrimSpace(remainder[:colon]))
	if sender == "" {
		return Message{}, ReasonEmptySender
	}
	body := strings.TrimSpace(remainder[colon+1:])
	if body == "" {
		return Message{}, ReasonEmptyMessage
	}

	name := p.dir.Canonical(sender)
	ts, ok := ParseTimestamp(rawTS, p.loc)
	if !ok {
		ts = p.now()
	}

	return Message{
		Timestamp:    ts,
		RawTimestamp: rawTS,
		Sender:       name,
		SenderRole:   p.dir.Role(name),
		Message:      body,
		Category:     p.dir.Categorize(body, name),
		Month:        month,
	}, ""
}

// expandTimestamp rewrites "15/1/25, 2:15 PM" as "2025-01-15 2:15 PM". Text
// in any other shape is returned unchanged.
func expandTimestamp(ts string) string {
	comma := strings.Index(ts, ",")
	if comma < 0 {
		return ts
	}
	datePart := strings.TrimSpace(ts[:comma])
	timePart := strings.TrimSpace(ts[comma+1:])

	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return ts
	}
	day, month, year := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	if len(year) == 2 {
		year = "20" + year
	}
	return fmt.Sprintf("%s-%s-%s %s", year, zeroPad(month), zeroPad(day), timePart)
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

var timestampLayouts = []string{
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
	"2006-01-02 3:04:05 PM",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"02/01/06 3:04 PM",
	"02/01/2006 3:04 PM",
	"2006-01-02",
}

// ParseTimestamp tries the layouts generated transcripts actually use.
// Meridiem markers are matched case-insensitively.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
