// Package scenario builds the generation prompts for each stage of the
// eight-month coaching journey.
package scenario

import (
	"fmt"
	"strconv"
)

// Kind identifies the narrative shape of a scenario.
type Kind int

const (
	Onboarding Kind = iota
	Progress
	Setback
	Breakthrough
)

func (k Kind) String() string {
	switch k {
	case Onboarding:
		return "onboarding"
	case Progress:
		return "progress"
	case Setback:
		return "setback"
	case Breakthrough:
		return "breakthrough"
	default:
		return "unknown"
	}
}

// Scenario is one unit of generation: a kind pinned to a program month.
type Scenario struct {
	Kind  Kind
	Month int
}

// MessageRange is the inclusive message count the prompt asks for.
type MessageRange struct {
	Min int
	Max int
}

// Request is a fully built prompt ready to send to a generator.
type Request struct {
	ID          string
	Kind        Kind
	Month       int
	Description string
	Range       MessageRange
	Prompt      string
}

var ranges = map[Kind]MessageRange{
	Onboarding:   {Min: 15, Max: 20},
	Progress:     {Min: 12, Max: 15},
	Setback:      {Min: 20, Max: 25},
	Breakthrough: {Min: 10, Max: 12},
}

// DefaultPlan is the fixed generation order: onboarding, the six progress
// months, then the month 5 setback.
func DefaultPlan() []Scenario {
	plan := []Scenario{{Kind: Onboarding, Month: 1}}
	for _, m := range []int{2, 3, 4, 6, 7, 8} {
		plan = append(plan, Scenario{Kind: Progress, Month: m})
	}
	return append(plan, Scenario{Kind: Setback, Month: 5})
}

// PlanWithBreakthrough extends DefaultPlan with the breakthrough highlights,
// recorded against month 8.
func PlanWithBreakthrough() []Scenario {
	return append(DefaultPlan(), Scenario{Kind: Breakthrough, Month: 8})
}

// Build assembles the prompt for s. It is pure string assembly and cannot
// fail: a kind outside the known set gets a general progress prompt.
func Build(s Scenario) Request {
	r, ok := ranges[s.Kind]
	if !ok {
		r = ranges[Progress]
	}

	req := Request{Kind: s.Kind, Month: s.Month, Range: r}
	var body string
	switch s.Kind {
	case Onboarding:
		req.ID = "onboarding"
		req.Description = "First week onboarding"
		body = fmt.Sprintf(onboardingPrompt, r.Min, r.Max)
	case Setback:
		req.ID = "setback"
		req.Description = "Illness setback"
		body = fmt.Sprintf(setbackPrompt, r.Min, r.Max)
	case Breakthrough:
		req.ID = "breakthrough"
		req.Description = "Key breakthrough moments"
		body = fmt.Sprintf(breakthroughPrompt, r.Min, r.Max)
	default:
		focus, ok := progressFocus[s.Month]
		if !ok || s.Kind != Progress {
			focus = defaultProgressFocus
		}
		req.ID = "progress-" + strconv.Itoa(s.Month)
		req.Description = focus
		body = fmt.Sprintf(progressPrompt, r.Min, r.Max, s.Month, focus)
	}
	req.Prompt = systemPrompt + body
	return req
}
