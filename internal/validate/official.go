package validate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
)

// DefaultOfficialTimeout bounds one official validator run.
const DefaultOfficialTimeout = 30 * time.Second

// InputPlaceholder is replaced with the temp-file path in official validator
// command templates.
const InputPlaceholder = "{input}"

// OfficialValidator runs an officially certified validation tool against a
// generated artifact. Implementations report findings as plain lines; an
// empty slice means the artifact passed.
type OfficialValidator interface {
	// Configured reports whether the official tool is set up at all.
	Configured() bool

	// Validate writes the payload to a temp file and runs the tool against
	// it. The returned lines are validation errors; nil means success.
	Validate(ctx context.Context, payload []byte, fileExt string) ([]string, error)
}

// CommandValidator is the production OfficialValidator: a shell command
// template with an {input} placeholder, e.g.
// "java -jar validationtool.jar -s scenarios.xml {input}".
//
// The template is split on whitespace without shell quoting, so individual
// arguments cannot contain spaces.
type CommandValidator struct {
	template string
	timeout  time.Duration
	runner   Runner
}

// NewCommandValidator creates a validator for the given command template. An
// empty template yields an unconfigured validator.
func NewCommandValidator(template string, timeout time.Duration, runner Runner) *CommandValidator {
	if timeout <= 0 {
		timeout = DefaultOfficialTimeout
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	return &CommandValidator{template: strings.TrimSpace(template), timeout: timeout, runner: runner}
}

// Configured reports whether a command template was supplied.
func (v *CommandValidator) Configured() bool {
	return v.template != ""
}

// Validate copies the payload to a uniquely named temp file, substitutes it
// into the command template, and executes the tool. The temp file is removed
// on all exit paths. Non-zero exit or timeout turns the captured output lines
// into validation errors, falling back to a generic message when the tool
// produced no output.
func (v *CommandValidator) Validate(ctx context.Context, payload []byte, fileExt string) ([]string, error) {
	if !v.Configured() {
		return nil, model.NewConfigurationError("official-validator", "no command template configured", nil)
	}

	tmpFile, err := os.CreateTemp("", "official-*."+fileExt)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(payload); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	fields := strings.Fields(v.template)
	if len(fields) == 0 {
		return nil, model.NewConfigurationError("official-validator", "empty command template", nil)
	}
	args := make([]string, 0, len(fields)-1)
	for _, field := range fields[1:] {
		args = append(args, strings.ReplaceAll(field, InputPlaceholder, tmpFile.Name()))
	}

	run, err := v.runner.Run(ctx, Command{Name: fields[0], Args: args, Timeout: v.timeout})
	if err != nil {
		return nil, err
	}

	if run.TimedOut {
		lines := outputLines(run.Output)
		return append(lines, fmt.Sprintf("official validator timed out after %s", v.timeout)), nil
	}
	if run.ExitCode != 0 {
		lines := outputLines(run.Output)
		if len(lines) == 0 {
			lines = []string{fmt.Sprintf("official validator failed with exit code %d", run.ExitCode)}
		}
		return lines, nil
	}
	return nil, nil
}
