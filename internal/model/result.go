package model

import (
	"fmt"
	"strings"
)

// ValidationIssue is one finding from the builtin or official validation tier.
type ValidationIssue struct {
	Severity Severity `json:"severity"`
	Source   Source   `json:"source"`
	Message  string   `json:"message"`
}

// ValidationResult accumulates issues from all validation sources. Valid is
// true iff no issue has error severity.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidationResult creates an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// AddError records an error-severity issue and flips Valid to false.
func (r *ValidationResult) AddError(source Source, message string) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: SeverityError, Source: source, Message: message})
	r.Valid = false
}

// AddWarning records a warning-severity issue without affecting Valid.
func (r *ValidationResult) AddWarning(source Source, message string) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: SeverityWarning, Source: source, Message: message})
}

// Merge folds the issues of other into r.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	if !other.Valid {
		r.Valid = false
	}
}

// Errors returns only the error-severity issues.
func (r *ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Message joins all error-severity issues, each prefixed with its source tag,
// into a single human-readable string for propagation to the caller.
func (r *ValidationResult) Message() string {
	var parts []string
	for _, issue := range r.Errors() {
		parts = append(parts, fmt.Sprintf("[%s] %s", issue.Source, issue.Message))
	}
	return strings.Join(parts, "; ")
}

// SchemaResult is the outcome of the profile-marker and XSD check.
type SchemaResult struct {
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors,omitempty"`
	SchemaPath string   `json:"schema_path,omitempty"`
}

// GenerationResult is the output of XRechnung generation: the XML document
// (UTF-8, no BOM) together with its validation outcome.
type GenerationResult struct {
	XML        string            `json:"xml"`
	Validation *ValidationResult `json:"validation"`
}

// ZugferdMetadata describes the packaged hybrid PDF.
type ZugferdMetadata struct {
	AttachmentName   string `json:"attachment_name"`
	ZugferdVersion   string `json:"zugferd_version"`
	ConformanceLevel string `json:"conformance_level"`
	InvoiceNumber    string `json:"invoice_number"`
}

// ZugferdResult is the output of ZUGFeRD packaging.
type ZugferdResult struct {
	Filename string          `json:"filename"`
	PDF      []byte          `json:"-"`
	Metadata ZugferdMetadata `json:"metadata"`
}
