// Package validate cross-checks normalized records for internal consistency
// and flags anomalies and duplicates across batches. All checks are pure
// functions per record; errors flip validity, warnings never do, and the
// record is emitted either way (the pipeline never drops data silently).
package validate

import (
	"fmt"
	"strings"
)

// Result accumulates the outcome of validating one record.
type Result struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func NewResult() Result {
	return Result{IsValid: true}
}

func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.IsValid = false
}

func (r *Result) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r Result) String() string {
	status := "VALID"
	if !r.IsValid {
		status = "INVALID"
	}
	parts := []string{"Validation: " + status}
	if len(r.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("Errors: %d", len(r.Errors)))
		for _, e := range r.Errors {
			parts = append(parts, "  - "+e)
		}
	}
	if len(r.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("Warnings: %d", len(r.Warnings)))
		for _, w := range r.Warnings {
			parts = append(parts, "  - "+w)
		}
	}
	return strings.Join(parts, "\n")
}
