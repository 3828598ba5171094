package model

import (
	"fmt"
	"strings"
)

// GenerationError represents malformed or incomplete canonical input. It is
// fatal: no partial artifact is ever returned alongside it.
type GenerationError struct {
	Message string
	Details []string
	Cause   error
}

func (e *GenerationError) Error() string {
	msg := "generation failed: " + e.Message
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// NewGenerationError creates a new generation error with an optional details list.
func NewGenerationError(message string, details ...string) *GenerationError {
	return &GenerationError{Message: message, Details: details}
}

// ValidationFailure means a generated artifact failed profile, schema, or
// cross-check validation and must not be treated as exportable.
type ValidationFailure struct {
	Format string
	Result *ValidationResult
}

func (e *ValidationFailure) Error() string {
	if e.Result != nil && len(e.Result.Errors()) > 0 {
		return fmt.Sprintf("%s validation failed: %s", e.Format, e.Result.Message())
	}
	return fmt.Sprintf("%s validation failed", e.Format)
}

// NewValidationFailure creates a validation failure for the given format.
func NewValidationFailure(format string, result *ValidationResult) *ValidationFailure {
	return &ValidationFailure{Format: format, Result: result}
}

// ConfigurationError means a schema file or referenced executable is missing
// or unreadable.
type ConfigurationError struct {
	Item    string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error [%s]: %s (%v)", e.Item, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error [%s]: %s", e.Item, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(item, message string, cause error) *ConfigurationError {
	return &ConfigurationError{Item: item, Message: message, Cause: cause}
}

// ExternalToolError represents a subprocess timeout or non-zero exit. Output
// holds the best-effort captured tool output lines; when nothing was captured
// the raw error message stands in.
type ExternalToolError struct {
	Tool    string
	Message string
	Output  []string
	Cause   error
}

func (e *ExternalToolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("external tool failed [%s]: %s (%v)", e.Tool, e.Message, e.Cause)
	}
	return fmt.Sprintf("external tool failed [%s]: %s", e.Tool, e.Message)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Cause
}

// Lines returns the captured output lines, falling back to the raw error
// message when no output was captured.
func (e *ExternalToolError) Lines() []string {
	if len(e.Output) > 0 {
		return e.Output
	}
	return []string{e.Error()}
}

// NewExternalToolError creates a new external tool error.
func NewExternalToolError(tool, message string, output []string, cause error) *ExternalToolError {
	return &ExternalToolError{Tool: tool, Message: message, Output: output, Cause: cause}
}
