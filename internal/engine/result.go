package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/nami-dev/nami/internal/quality"
)

// Status is the terminal state of a workflow run.
type Status string

const (
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
	StatusAborted  Status = "aborted"
)

// ErrStageFailure marks a stage in which every agent failed. Fatal to the
// run; surfaced inside a FailureReport.
var ErrStageFailure = errors.New("stage failure")

// SessionResult is the terminal artifact of a completed run. Ownership
// passes to the caller for persistence and display.
type SessionResult struct {
	RunID      string `json:"run_id"`
	Topic      string `json:"topic"`
	StrategyID int    `json:"strategy_id"`
	ReportText string `json:"report_text"`

	// Quality is the final assessment, nil when the strategy has no gate
	// or the assessor was unavailable.
	Quality *quality.Score `json:"quality,omitempty"`

	IterationsUsed int       `json:"iterations_used"`
	AgentTeam      []string  `json:"agent_team"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Status         Status    `json:"status"`

	// BelowThreshold marks a run that hit the iteration ceiling with a
	// failing quality verdict and proceeded anyway.
	BelowThreshold bool `json:"below_threshold,omitempty"`

	// PartialConsensus marks a run in which at least one parallel stage
	// merged fewer outputs than it declared roles.
	PartialConsensus bool `json:"partial_consensus,omitempty"`
}

// FailureReport is the structured error returned for an abnormally
// terminated run. It is diagnostics, not a displayable result.
type FailureReport struct {
	RunID      string
	Topic      string
	StrategyID int

	// Stage names the failing stage.
	Stage string

	// Cause is the proximate failure.
	Cause error

	// StageOutputs holds the outputs accumulated before the failure.
	StageOutputs map[string]string
}

func (f *FailureReport) Error() string {
	return fmt.Sprintf("strategy %d failed at stage %q: %v", f.StrategyID, f.Stage, f.Cause)
}

// Unwrap returns the proximate cause for errors.Is/As.
func (f *FailureReport) Unwrap() error {
	return f.Cause
}
