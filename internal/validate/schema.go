package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
)

const (
	// DefaultSchemaPath is the bundled CII schema location, relative to the
	// working directory.
	DefaultSchemaPath = "schemas/cii/CrossIndustryInvoice_100pD16B.xsd"

	// DefaultSchemaTool is the external XML schema validation executable.
	DefaultSchemaTool = "xmllint"

	// DefaultSchemaTimeout bounds one XSD validation run.
	DefaultSchemaTimeout = 15 * time.Second
)

// XSDValidator runs the two-step builtin check: profile marker first, then
// external XSD validation of the document against the bundled schema.
type XSDValidator struct {
	schemaPath string
	tool       string
	timeout    time.Duration
	runner     Runner
}

// XSDOption configures an XSDValidator.
type XSDOption func(*XSDValidator)

// WithSchemaPath overrides the bundled schema location.
func WithSchemaPath(path string) XSDOption {
	return func(v *XSDValidator) {
		if path != "" {
			v.schemaPath = path
		}
	}
}

// WithSchemaTool overrides the validation executable.
func WithSchemaTool(tool string) XSDOption {
	return func(v *XSDValidator) {
		if tool != "" {
			v.tool = tool
		}
	}
}

// WithSchemaTimeout overrides the validation timeout.
func WithSchemaTimeout(d time.Duration) XSDOption {
	return func(v *XSDValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithRunner substitutes the subprocess runner (fakes in tests).
func WithRunner(r Runner) XSDOption {
	return func(v *XSDValidator) {
		if r != nil {
			v.runner = r
		}
	}
}

// NewXSDValidator creates a validator with the bundled schema and production
// runner unless overridden.
func NewXSDValidator(opts ...XSDOption) *XSDValidator {
	v := &XSDValidator{
		schemaPath: DefaultSchemaPath,
		tool:       DefaultSchemaTool,
		timeout:    DefaultSchemaTimeout,
		runner:     NewExecRunner(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks the profile marker, then writes the XML into a fresh temp
// directory and validates it against the schema with the external tool. The
// temp directory is removed on every exit path. A missing or unreadable
// schema file is a ConfigurationError, not a validation finding.
func (v *XSDValidator) Validate(ctx context.Context, xmlContent string) (*model.SchemaResult, error) {
	result := &model.SchemaResult{SchemaPath: v.schemaPath}
	result.Errors = append(result.Errors, ProfileCheck(xmlContent)...)

	if err := checkReadable(v.schemaPath); err != nil {
		return nil, model.NewConfigurationError("schema", "schema file not readable", err)
	}

	tmpDir, err := os.MkdirTemp("", "xrechnung-validate-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	xmlPath := filepath.Join(tmpDir, "invoice.xml")
	if err := os.WriteFile(xmlPath, []byte(xmlContent), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp invoice: %w", err)
	}

	run, err := v.runner.Run(ctx, Command{
		Name:    v.tool,
		Args:    []string{"--noout", "--schema", v.schemaPath, xmlPath},
		Timeout: v.timeout,
	})
	if err != nil {
		return nil, err
	}

	result.Errors = append(result.Errors, schemaErrorLines(run)...)
	result.Valid = len(result.Errors) == 0
	return result, nil
}

// schemaErrorLines reduces tool output to actual findings: trimmed,
// de-duplicated lines minus the "... validates" success confirmations.
func schemaErrorLines(run *RunResult) []string {
	var errs []string
	for _, line := range outputLines(run.Output) {
		if strings.HasSuffix(line, " validates") {
			continue
		}
		errs = append(errs, line)
	}
	if run.TimedOut {
		errs = append(errs, "schema validation timed out")
	}
	if run.ExitCode != 0 && !run.TimedOut && len(errs) == 0 {
		errs = append(errs, fmt.Sprintf("schema validation failed with exit code %d", run.ExitCode))
	}
	return errs
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
