package scheduler

import (
	"context"
	"time"
)

// State is the lifecycle position of a polling task.
//
//	interval: Idle -> Fetching -> Succeeded|Failed -> Idle
//	one-shot: Idle -> Fetching -> Succeeded|Failed -> Terminal
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateSucceeded
	StateFailed
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Cadence is either a fixed interval or a single run.
type Cadence struct {
	Interval time.Duration
}

// Every repeats a task d after the start of its previous fetch.
func Every(d time.Duration) Cadence { return Cadence{Interval: d} }

// Once runs a task a single time on mount.
func Once() Cadence { return Cadence{} }

func (c Cadence) OneShot() bool { return c.Interval <= 0 }

func (c Cadence) String() string {
	if c.OneShot() {
		return "once"
	}
	return "every " + c.Interval.String()
}

// Task fetches one resource and renders it into the page's regions.
// Run must honour ctx: it is cancelled on teardown and on fetch timeout.
type Task struct {
	Name    string
	Cadence Cadence
	Run     func(ctx context.Context) error
}

// Hooks observe task cycles. OnCycle runs after every completed cycle whose
// page is still mounted; err is nil on success.
type Hooks struct {
	OnCycle func(page, task string, took time.Duration, err error)
}
