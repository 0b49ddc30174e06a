package harness

import "github.com/roach88/salin/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// RunID and Seq identify the run in the scenario's history log.
	RunID string `json:"run_id"`
	Seq   int64  `json:"seq"`

	Words    []string   `json:"words"`
	MinMatch int        `json:"min_match"`
	Matches  []ir.Match `json:"matches"`

	// Errors holds one message per failed check. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Matches: []ir.Match{},
		Errors:  []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
