package validate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
	"github.com/SvenSonnborn/e-invoice-processor/internal/validate"
)

// fakeOfficial is a canned OfficialValidator.
type fakeOfficial struct {
	configured bool
	lines      []string
	err        error
}

func (f *fakeOfficial) Configured() bool { return f.configured }

func (f *fakeOfficial) Validate(context.Context, []byte, string) ([]string, error) {
	return f.lines, f.err
}

// fakeInspector is a canned PDFInspector.
type fakeInspector struct {
	xml      []byte
	xmlErr   error
	findings []string
}

func (f *fakeInspector) EmbeddedXML([]byte) ([]byte, error) { return f.xml, f.xmlErr }

func (f *fakeInspector) MetadataFindings([]byte) []string { return f.findings }

func newTestSchema(t *testing.T, runner validate.Runner) *validate.XSDValidator {
	t.Helper()
	return validate.NewXSDValidator(
		validate.WithSchemaPath(writeTempSchema(t)),
		validate.WithRunner(runner),
	)
}

func TestCheckXRechnung_ValidWithWarning(t *testing.T) {
	schema := newTestSchema(t, &fakeRunner{result: &validate.RunResult{ExitCode: 0}})
	o := validate.NewOrchestrator(schema)

	result, err := o.CheckXRechnung(context.Background(), conformantXML)
	require.NoError(t, err)

	// unconfigured official tier degrades to a warning, not an error
	assert.True(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, model.SeverityWarning, result.Issues[0].Severity)
	assert.Equal(t, model.SourceOfficial, result.Issues[0].Source)
	assert.Contains(t, result.Issues[0].Message, "not configured")
}

func TestCheckXRechnung_BuiltinErrors(t *testing.T) {
	schema := newTestSchema(t, &fakeRunner{result: &validate.RunResult{
		ExitCode: 3,
		Output:   []byte("invoice.xml:8: Schemas validity error\n"),
	}})
	o := validate.NewOrchestrator(schema)

	result, err := o.CheckXRechnung(context.Background(), conformantXML)
	require.NoError(t, err)
	assert.False(t, result.Valid)

	errs := result.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, model.SourceBuiltin, errs[0].Source)
}

func TestCheckXRechnung_OfficialFindings(t *testing.T) {
	schema := newTestSchema(t, &fakeRunner{result: &validate.RunResult{ExitCode: 0}})
	o := validate.NewOrchestrator(schema,
		validate.WithOfficialXRechnung(&fakeOfficial{
			configured: true,
			lines:      []string{"BR-DE-1 error: Payment means missing"},
		}),
	)

	result, err := o.CheckXRechnung(context.Background(), conformantXML)
	require.NoError(t, err)
	assert.False(t, result.Valid)

	errs := result.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, model.SourceOfficial, errs[0].Source)
	assert.Equal(t, "BR-DE-1 error: Payment means missing", errs[0].Message)

	msg := result.Message()
	assert.Contains(t, msg, "[official]")
}

func TestCheckZugferd_CrossCheckPasses(t *testing.T) {
	schema := newTestSchema(t, &fakeRunner{result: &validate.RunResult{ExitCode: 0}})
	o := validate.NewOrchestrator(schema,
		validate.WithPDFInspector(&fakeInspector{xml: []byte(conformantXML + "\n")}),
	)

	result, err := o.CheckZugferd(context.Background(), []byte("%PDF-1.7"), conformantXML)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestCheckZugferd_EmbeddedXMLMismatch(t *testing.T) {
	schema := newTestSchema(t, &fakeRunner{result: &validate.RunResult{ExitCode: 0}})
	o := validate.NewOrchestrator(schema,
		validate.WithPDFInspector(&fakeInspector{xml: []byte("<Other/>")}),
	)

	result, err := o.CheckZugferd(context.Background(), []byte("%PDF-1.7"), conformantXML)
	require.NoError(t, err)
	assert.False(t, result.Valid)

	errs := result.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "does not match")
}

func TestCheckZugferd_MetadataFindings(t *testing.T) {
	schema := newTestSchema(t, &fakeRunner{result: &validate.RunResult{ExitCode: 0}})
	o := validate.NewOrchestrator(schema,
		validate.WithPDFInspector(&fakeInspector{
			xml:      []byte(conformantXML),
			findings: []string{"XMP metadata does not declare PDF/A part 3"},
		}),
	)

	result, err := o.CheckZugferd(context.Background(), []byte("%PDF-1.7"), conformantXML)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Message(), "PDF/A part 3")
}

func TestCheckZugferd_NoInspector(t *testing.T) {
	schema := newTestSchema(t, &fakeRunner{result: &validate.RunResult{ExitCode: 0}})
	o := validate.NewOrchestrator(schema)

	_, err := o.CheckZugferd(context.Background(), []byte("%PDF-1.7"), conformantXML)
	require.Error(t, err)
}
