package domain

import "time"

// ExecutionLogEntry is one state transition in a job's execution log. The log
// is append-only and is the sole historical record of a job's path through
// the state machine. Field names and ordering are stable for downstream
// tooling.
type ExecutionLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	FromState JobState  `json:"from_state"`
	ToState   JobState  `json:"to_state"`
	Event     Event     `json:"triggering_event"`
	Summary   string    `json:"payload_summary,omitempty"`
}

// JobResult is the terminal output of one job, consumed by the surrounding
// application layer.
type JobResult struct {
	JobID        string              `json:"job_id"`
	FinalState   JobState            `json:"final_state"` // DELIVERED or ABORTED
	Draft        *Draft              `json:"draft,omitempty"`
	QCReport     *QCReport           `json:"qc_report,omitempty"`
	ExecutionLog []ExecutionLogEntry `json:"execution_log"`
	AutoFixLog   *AutoFixLog         `json:"autofix_log,omitempty"`
	AbortReason  AbortReason         `json:"abort_reason,omitempty"`
	AbortDetail  string              `json:"abort_detail,omitempty"`
}
