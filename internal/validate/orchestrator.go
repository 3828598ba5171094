// Package validate gates generated artifacts: a builtin profile+schema tier
// that always runs, plus optional official validator tools, composed into a
// single issue list per artifact.
package validate

import (
	"bytes"
	"context"
	"fmt"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
)

// PDFInspector re-opens a packaged PDF for the ZUGFeRD cross-checks.
type PDFInspector interface {
	// EmbeddedXML extracts the embedded invoice attachment.
	EmbeddedXML(pdf []byte) ([]byte, error)

	// MetadataFindings inspects the XMP metadata stream and reports every
	// missing PDF/A-3 / Factur-X marker as one finding.
	MetadataFindings(pdf []byte) []string
}

// Orchestrator composes builtin and official validation for both output
// formats. Overall validity requires that no source contributed an
// error-severity issue.
type Orchestrator struct {
	schema     *XSDValidator
	officialXR OfficialValidator
	officialZF OfficialValidator
	inspector  PDFInspector
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithOfficialXRechnung wires the official XRechnung validator.
func WithOfficialXRechnung(v OfficialValidator) OrchestratorOption {
	return func(o *Orchestrator) { o.officialXR = v }
}

// WithOfficialZugferd wires the official ZUGFeRD validator.
func WithOfficialZugferd(v OfficialValidator) OrchestratorOption {
	return func(o *Orchestrator) { o.officialZF = v }
}

// WithPDFInspector wires the PDF cross-check capability.
func WithPDFInspector(i PDFInspector) OrchestratorOption {
	return func(o *Orchestrator) { o.inspector = i }
}

// NewOrchestrator creates an orchestrator around the builtin schema validator.
func NewOrchestrator(schema *XSDValidator, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{schema: schema}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CheckXRechnung runs the builtin profile+XSD check and, when configured, the
// official validator. An unconfigured official validator degrades to a single
// warning so the pipeline still operates without the official tool installed.
func (o *Orchestrator) CheckXRechnung(ctx context.Context, xmlContent string) (*model.ValidationResult, error) {
	result := model.NewValidationResult()

	builtin, err := o.builtinIssues(ctx, xmlContent)
	if err != nil {
		return nil, err
	}
	result.Merge(builtin)

	o.runOfficial(ctx, o.officialXR, []byte(xmlContent), "xml", "XRechnung", result)
	return result, nil
}

// builtinIssues collects the profile+XSD findings for one XML document as a
// standalone result, merged by the callers into their per-format result.
func (o *Orchestrator) builtinIssues(ctx context.Context, xmlContent string) (*model.ValidationResult, error) {
	result := model.NewValidationResult()
	schemaResult, err := o.schema.Validate(ctx, xmlContent)
	if err != nil {
		return nil, err
	}
	for _, msg := range schemaResult.Errors {
		result.AddError(model.SourceBuiltin, msg)
	}
	return result, nil
}

// CheckZugferd cross-checks a freshly packaged PDF: the embedded XML must
// byte-for-byte match what was handed to the packager, the XML must still
// pass XRechnung validation, and the metadata stream must carry the PDF/A-3
// and Factur-X markers. The official ZUGFeRD validator runs when configured.
func (o *Orchestrator) CheckZugferd(ctx context.Context, pdf []byte, xmlContent string) (*model.ValidationResult, error) {
	result := model.NewValidationResult()
	if o.inspector == nil {
		return nil, model.NewConfigurationError("pdf-inspector", "no PDF inspector wired", nil)
	}

	embedded, err := o.inspector.EmbeddedXML(pdf)
	if err != nil {
		result.AddError(model.SourceBuiltin, fmt.Sprintf("failed to extract embedded XML: %v", err))
	} else if !bytes.Equal(bytes.TrimSpace(embedded), bytes.TrimSpace([]byte(xmlContent))) {
		result.AddError(model.SourceBuiltin, "embedded XML does not match the generated invoice XML")
	}

	builtin, err := o.builtinIssues(ctx, xmlContent)
	if err != nil {
		return nil, err
	}
	result.Merge(builtin)

	for _, msg := range o.inspector.MetadataFindings(pdf) {
		result.AddError(model.SourceBuiltin, msg)
	}

	o.runOfficial(ctx, o.officialZF, pdf, "pdf", "ZUGFeRD", result)
	return result, nil
}

func (o *Orchestrator) runOfficial(ctx context.Context, v OfficialValidator, payload []byte, ext, format string, result *model.ValidationResult) {
	if v == nil || !v.Configured() {
		result.AddWarning(model.SourceOfficial,
			fmt.Sprintf("official %s validator not configured; official validation skipped", format))
		return
	}

	lines, err := v.Validate(ctx, payload, ext)
	if err != nil {
		result.AddError(model.SourceOfficial, fmt.Sprintf("official %s validator failed: %v", format, err))
		return
	}
	for _, line := range lines {
		result.AddError(model.SourceOfficial, line)
	}
}
