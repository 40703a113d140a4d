package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects for generation progress.
const (
	SubjectScenarioCompleted = "elyx.generation.scenario.completed"
	SubjectRunCompleted      = "elyx.generation.run.completed"
	SubjectServiceStarted    = "elyx.service.started"
)

// ScenarioCompleted is emitted once per scenario, whatever its outcome.
type ScenarioCompleted struct {
	RunID           string `json:"run_id"`
	MemberID        int64  `json:"member_id"`
	Scenario        string `json:"scenario"`
	Month           int    `json:"month"`
	Status          string `json:"status"`
	Saved           int    `json:"saved"`
	SkippedLines    int    `json:"skipped_lines"`
	SkippedMessages int    `json:"skipped_messages"`
	DurationMS      int64  `json:"duration_ms"`
}

// RunCompleted is emitted when every scenario of a run has been attempted.
type RunCompleted struct {
	RunID       string `json:"run_id"`
	MemberID    int64  `json:"member_id"`
	Total       int    `json:"total"`
	StoredTotal int    `json:"stored_total"`
	Scenarios   int    `json:"scenarios"`
	DurationMS  int64  `json:"duration_ms"`
}

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("elyx"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

// Publish JSON-encodes data onto subject.
func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("nats drain failed", "error", err)
		c.conn.Close()
	}
}
