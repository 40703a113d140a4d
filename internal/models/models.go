package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Member is the single coached individual. Generated conversations hang off it.
type Member struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	PreferredName     string    `json:"preferred_name"`
	Age               int       `json:"age"`
	Gender            string    `json:"gender"`
	Location          string    `json:"location"`
	Occupation        string    `json:"occupation"`
	HealthGoals       []string  `json:"health_goals"`
	ChronicConditions []string  `json:"chronic_conditions"`
	Wearables         []string  `json:"wearables"`
	CreatedAt         time.Time `json:"created_at"`
}

// DisplayName is the name conversations use for the member as sender.
func (m *Member) DisplayName() string {
	if m.PreferredName != "" {
		return m.PreferredName
	}
	return m.Name
}

// TeamMember is a care-team persona. NameKey is the normalized natural key and
// is unique across the table.
type TeamMember struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	NameKey            string `json:"-"`
	Role               string `json:"role"`
	Specialty          string `json:"specialty"`
	CommunicationStyle string `json:"communication_style"`
}

// Conversation is one persisted chat message. TeamMemberID is nil when the
// member is the sender. SenderRole and TeamMember (the linked team member's
// name) are only populated on reads.
type Conversation struct {
	ID           int64     `json:"id"`
	MemberID     int64     `json:"member_id"`
	TeamMemberID *int64    `json:"team_member_id"`
	Sender       string    `json:"sender"`
	SenderRole   string    `json:"sender_role,omitempty"`
	TeamMember   string    `json:"-"`
	Message      string    `json:"message"`
	Category     string    `json:"category"`
	Timestamp    time.Time `json:"timestamp"`
	Month        int       `json:"month"`
}

// DateLayout is the wire and SQLite text form of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day. It encodes as "2006-01-02" in JSON.
type Date struct {
	time.Time
}

// NewDate returns the UTC midnight of the given day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimelineEvent is a milestone on the member's journey.
type TimelineEvent struct {
	ID               int64    `json:"id"`
	MemberID         int64    `json:"member_id"`
	Date             Date     `json:"date"`
	Title            string   `json:"title"`
	Category         string   `json:"category"`
	Status           string   `json:"status"`
	Description      string   `json:"description"`
	Outcome          string   `json:"outcome"`
	TeamMembers      []string `json:"team_members"`
	ResponseTime     string   `json:"response_time"`
	TimeToResolution string   `json:"time_to_resolution"`
	FrictionPoints   string   `json:"friction_points"`
}

// HealthMetric is one wearable reading, e.g. hrv, recovery_score or
// resting_heart_rate.
type HealthMetric struct {
	ID         int64   `json:"id"`
	MemberID   int64   `json:"member_id"`
	MetricType string  `json:"metric_type"`
	Value      float64 `json:"value"`
	Date       Date    `json:"date"`
}

// Decision records a change to the member's plan and what drove it.
type Decision struct {
	ID          int64  `json:"id"`
	MemberID    int64  `json:"member_id"`
	Date        Date   `json:"date"`
	Type        string `json:"type"`
	Decision    string `json:"decision"`
	Reason      string `json:"reason"`
	TriggeredBy string `json:"triggered_by"`
	Outcome     string `json:"outcome"`
	Evidence    string `json:"evidence"`
}
