package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elyx_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "elyx_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Generation metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elyx_generation_runs_total",
			Help: "Generation runs by outcome",
		},
		[]string{"status"}, // "completed", "no_member", "busy"
	)

	ScenariosTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elyx_generation_scenarios_total",
			Help: "Scenarios processed by kind and outcome",
		},
		[]string{"kind", "status"}, // status: "generated", "empty", "failed"
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "elyx_generation_call_duration_seconds",
			Help:    "Time spent waiting on the text generation service",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	TranscriptLinesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "elyx_transcript_lines_skipped_total",
			Help: "Non-blank transcript lines that did not parse as messages",
		},
	)

	ConversationsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "elyx_conversations_saved_total",
			Help: "Conversations committed to the store",
		},
	)

	ConversationsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "elyx_conversations_skipped_total",
			Help: "Parsed messages that failed to persist",
		},
	)

	TeamMembersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "elyx_team_members_created_total",
			Help: "Team members created on first sight in a transcript",
		},
	)
)
