package harness

import (
	"github.com/mackim-3768/Aegis-AI-DAS/internal/engine"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// Result is the outcome of one script run.
type Result struct {
	// Name is the script name.
	Name string `json:"name"`

	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Inferences are the engine results in step order.
	Inferences []engine.Result `json:"-"`

	// Final is the state after the last step.
	Final state.AppState `json:"-"`
}

// NewResult creates a passing result.
func NewResult(name string) *Result {
	return &Result{Name: name, Pass: true, Errors: []string{}}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
