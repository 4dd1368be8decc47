package harness

import "github.com/OscarFredriksson/tire-logger/internal/transfer"

// StepResult records what one step did.
type StepResult struct {
	Step     int                    `json:"step"`
	ImportID string                 `json:"importId,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Tables   []transfer.TableResult `json:"tables,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Steps holds one entry per scenario step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshot fingerprints the final store.
	Snapshot *transfer.Snapshot `json:"snapshot,omitempty"`

	// Export is the final store exported at testutil.Epoch.
	Export *transfer.Document `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
