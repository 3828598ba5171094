package validate_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
	"github.com/SvenSonnborn/e-invoice-processor/internal/validate"
)

// fakeRunner records the command it was asked to run and returns a canned
// result.
type fakeRunner struct {
	result  *validate.RunResult
	err     error
	lastCmd validate.Command
}

func (f *fakeRunner) Run(_ context.Context, cmd validate.Command) (*validate.RunResult, error) {
	f.lastCmd = cmd
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func writeTempSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.xsd")
	require.NoError(t, os.WriteFile(path, []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`), 0o600))
	return path
}

func TestXSDValidator_Valid(t *testing.T) {
	runner := &fakeRunner{result: &validate.RunResult{
		Output:   []byte("/tmp/invoice.xml validates\n"),
		ExitCode: 0,
	}}
	v := validate.NewXSDValidator(
		validate.WithSchemaPath(writeTempSchema(t)),
		validate.WithRunner(runner),
	)

	result, err := v.Validate(context.Background(), conformantXML)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	require.Len(t, runner.lastCmd.Args, 4)
	assert.Equal(t, "xmllint", runner.lastCmd.Name)
	assert.Equal(t, "--noout", runner.lastCmd.Args[0])
	assert.Equal(t, "--schema", runner.lastCmd.Args[1])
}

func TestXSDValidator_SchemaErrors(t *testing.T) {
	runner := &fakeRunner{result: &validate.RunResult{
		Output: []byte(
			"invoice.xml:12: element SellerTradeParty: Schemas validity error\n" +
				"invoice.xml:12: element SellerTradeParty: Schemas validity error\n" +
				"invoice.xml fails to validate\n"),
		ExitCode: 3,
	}}
	v := validate.NewXSDValidator(
		validate.WithSchemaPath(writeTempSchema(t)),
		validate.WithRunner(runner),
	)

	result, err := v.Validate(context.Background(), conformantXML)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	// duplicate line is collapsed
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Schemas validity error")
	assert.Contains(t, result.Errors[1], "fails to validate")
}

func TestXSDValidator_ProfileErrorReported(t *testing.T) {
	runner := &fakeRunner{result: &validate.RunResult{ExitCode: 0}}
	v := validate.NewXSDValidator(
		validate.WithSchemaPath(writeTempSchema(t)),
		validate.WithRunner(runner),
	)

	result, err := v.Validate(context.Background(), `<Invoice><ID>R-1</ID></Invoice>`)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "guideline context parameter not found")
}

func TestXSDValidator_Timeout(t *testing.T) {
	runner := &fakeRunner{result: &validate.RunResult{TimedOut: true, ExitCode: -1}}
	v := validate.NewXSDValidator(
		validate.WithSchemaPath(writeTempSchema(t)),
		validate.WithRunner(runner),
	)

	result, err := v.Validate(context.Background(), conformantXML)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "schema validation timed out")
}

func TestXSDValidator_ExitCodeWithoutOutput(t *testing.T) {
	runner := &fakeRunner{result: &validate.RunResult{ExitCode: 4}}
	v := validate.NewXSDValidator(
		validate.WithSchemaPath(writeTempSchema(t)),
		validate.WithRunner(runner),
	)

	result, err := v.Validate(context.Background(), conformantXML)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "schema validation failed with exit code 4")
}

func TestXSDValidator_MissingSchema(t *testing.T) {
	runner := &fakeRunner{result: &validate.RunResult{ExitCode: 0}}
	v := validate.NewXSDValidator(
		validate.WithSchemaPath(filepath.Join(t.TempDir(), "missing.xsd")),
		validate.WithRunner(runner),
	)

	_, err := v.Validate(context.Background(), conformantXML)
	require.Error(t, err)

	var cfgErr *model.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
