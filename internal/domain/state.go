package domain

// JobState is the current position of a job in the execution state machine.
// Exactly one state is current at any time; history lives only in the
// execution log.
type JobState string

// Job states. DELIVERED and ABORTED are terminal.
const (
	StateReceived      JobState = "RECEIVED"
	StatePreflightDone JobState = "PREFLIGHT_DONE"
	StateWritten       JobState = "WRITTEN"
	StateQCEvaluated   JobState = "QC_EVALUATED"
	StateRescuing      JobState = "RESCUING"
	StateDelivered     JobState = "DELIVERED"
	StateAborted       JobState = "ABORTED"
)

// Terminal reports whether no further transitions are permitted from s.
func (s JobState) Terminal() bool {
	return s == StateDelivered || s == StateAborted
}

// Event names the trigger of a state transition. Values are stable; they are
// exported in the execution log for downstream tooling.
type Event string

// Transition events.
const (
	EventPreflightSucceeded Event = "preflight_succeeded"
	EventPreflightFailed    Event = "preflight_failed"
	EventDraftGenerated     Event = "draft_generated"
	EventWriterFailed       Event = "writer_failed"
	EventQCEvaluated        Event = "qc_evaluated"
	EventQCBlocked          Event = "qc_blocked"
	EventAutoFixApplied     Event = "autofix_applied"
	EventRegenerated        Event = "regenerated"
	EventLoopDetected       Event = "loop_detected"
	EventDelivered          Event = "delivered"
	EventCancelled          Event = "cancelled"
)

// AbortReason is the structured reason attached to an ABORTED result, so
// operators can tell "gave up after identical retry" apart from "tried a
// different draft and still failed".
type AbortReason string

// Abort reasons.
const (
	ReasonPreflightFailed    AbortReason = "preflight_failed"
	ReasonWriterFailed       AbortReason = "writer_failed"
	ReasonLoopDetected       AbortReason = "loop_detected"
	ReasonQCBlockedTwice     AbortReason = "qc_blocked_twice"
	ReasonCancelled          AbortReason = "cancelled"
	ReasonInvariantViolation AbortReason = "invariant_violation"
)
