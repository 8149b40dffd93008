package engine

import (
	"fmt"
	"time"

	"github.com/robwestz/bacowr/internal/domain"
)

// executionLog is the append-only transition record for one job. Only the
// orchestrator writes to it; everything else sees the exported copy on the
// job result. The current state is derived from the last transition, so the
// log is the single source of truth for a job's history.
type executionLog struct {
	now     func() time.Time
	state   domain.JobState
	entries []domain.ExecutionLogEntry
}

func newExecutionLog(now func() time.Time) *executionLog {
	return &executionLog{now: now, state: domain.StateReceived}
}

// Current returns the state after the last recorded transition.
func (l *executionLog) Current() domain.JobState {
	return l.state
}

// Record appends an event that does not change state, such as a collaborator
// failure observed before the abort transition.
func (l *executionLog) Record(event domain.Event, summary string) error {
	if l.state.Terminal() {
		return fmt.Errorf("record %s in terminal state %s", event, l.state)
	}
	l.entries = append(l.entries, domain.ExecutionLogEntry{
		Timestamp: l.now(),
		FromState: l.state,
		ToState:   l.state,
		Event:     event,
		Summary:   summary,
	})
	return nil
}

// Transition appends a state change. Transitions out of a terminal state are
// refused; the caller treats that as an invariant violation.
func (l *executionLog) Transition(to domain.JobState, event domain.Event, summary string) error {
	if l.state.Terminal() {
		return fmt.Errorf("transition %s -> %s on %s: %s is terminal", l.state, to, event, l.state)
	}
	l.entries = append(l.entries, domain.ExecutionLogEntry{
		Timestamp: l.now(),
		FromState: l.state,
		ToState:   to,
		Event:     event,
		Summary:   summary,
	})
	l.state = to
	return nil
}

// Entries returns a copy of the log for export on the job result.
func (l *executionLog) Entries() []domain.ExecutionLogEntry {
	out := make([]domain.ExecutionLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
