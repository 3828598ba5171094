package einvoice

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/SvenSonnborn/e-invoice-processor/internal/logger"
	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
	"github.com/SvenSonnborn/e-invoice-processor/internal/normalize"
	"github.com/SvenSonnborn/e-invoice-processor/internal/validate"
	"github.com/SvenSonnborn/e-invoice-processor/internal/xrechnung"
	"github.com/SvenSonnborn/e-invoice-processor/internal/zugferd"
)

// EngineOptions configures the document engine.
type EngineOptions struct {
	// SchemaPath is the CII XSD file used by the builtin validator.
	SchemaPath string
	// SchemaTool is the schema validation executable.
	SchemaTool string
	// SchemaTimeout bounds one schema validation run.
	SchemaTimeout time.Duration

	// XRechnungValidatorCmd is the official XRechnung validator command
	// template ("{input}" placeholder). Empty disables the official tier.
	XRechnungValidatorCmd string
	// ZugferdValidatorCmd is the official ZUGFeRD validator command template.
	ZugferdValidatorCmd string
	// OfficialTimeout bounds one official validator run.
	OfficialTimeout time.Duration

	// AttachmentName is the embedded XML file name inside ZUGFeRD PDFs.
	AttachmentName string
}

// DefaultEngineOptions returns options using the bundled schema path,
// xmllint, and no official validators.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		SchemaPath:      validate.DefaultSchemaPath,
		SchemaTool:      validate.DefaultSchemaTool,
		SchemaTimeout:   validate.DefaultSchemaTimeout,
		OfficialTimeout: validate.DefaultOfficialTimeout,
		AttachmentName:  zugferd.DefaultAttachmentName,
	}
}

// ZugferdExport is the outcome of ZUGFeRD generation: the packaged document
// plus its post-packaging validation. The caller decides, based on
// Validation, whether the artifact may be shipped.
type ZugferdExport struct {
	*ZugferdResult
	Validation *ValidationResult
}

// Engine turns stored invoice records into XRechnung XML and ZUGFeRD PDFs.
// It is stateless per call and safe for concurrent use.
type Engine struct {
	builder      *xrechnung.Builder
	packager     *zugferd.Packager
	inspector    *zugferd.Inspector
	orchestrator *validate.Orchestrator
	log          zerolog.Logger
}

// NewEngine creates an engine with the given options.
func NewEngine(opts EngineOptions) *Engine {
	runner := validate.NewExecRunner()
	schema := validate.NewXSDValidator(
		validate.WithSchemaPath(opts.SchemaPath),
		validate.WithSchemaTool(opts.SchemaTool),
		validate.WithSchemaTimeout(opts.SchemaTimeout),
		validate.WithRunner(runner),
	)

	inspector := zugferd.NewInspector()
	orchestrator := validate.NewOrchestrator(schema,
		validate.WithOfficialXRechnung(validate.NewCommandValidator(opts.XRechnungValidatorCmd, opts.OfficialTimeout, runner)),
		validate.WithOfficialZugferd(validate.NewCommandValidator(opts.ZugferdValidatorCmd, opts.OfficialTimeout, runner)),
		validate.WithPDFInspector(inspector),
	)

	return &Engine{
		builder:      xrechnung.NewBuilder(),
		packager:     zugferd.NewPackager(zugferd.WithAttachmentName(opts.AttachmentName)),
		inspector:    inspector,
		orchestrator: orchestrator,
		log:          logger.WithComponent("engine"),
	}
}

// NewDefaultEngine creates an engine with default options.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultEngineOptions())
}

// Normalize converts a stored invoice record into the canonical
// representation used by both generators.
func (e *Engine) Normalize(stored *StoredInvoice) (*CanonicalInvoice, error) {
	return normalize.Normalize(stored)
}

// GenerateXRechnung normalizes the stored record, builds the XRechnung CII
// document, and validates it. The XML is returned together with its
// validation outcome; the caller gates persistence on Validation.Valid.
func (e *Engine) GenerateXRechnung(ctx context.Context, stored *StoredInvoice) (*GenerationResult, error) {
	inv, err := normalize.Normalize(stored)
	if err != nil {
		return nil, err
	}
	return e.generateXML(ctx, inv)
}

// GenerateXRechnungFromCanonical builds and validates the XRechnung document
// for an already-reviewed canonical invoice.
func (e *Engine) GenerateXRechnungFromCanonical(ctx context.Context, inv *CanonicalInvoice) (*GenerationResult, error) {
	return e.generateXML(ctx, inv)
}

func (e *Engine) generateXML(ctx context.Context, inv *model.CanonicalInvoice) (*model.GenerationResult, error) {
	xml, err := e.builder.Build(inv)
	if err != nil {
		return nil, err
	}

	validation, err := e.orchestrator.CheckXRechnung(ctx, xml)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("invoice_number", inv.Header.InvoiceNumber).
		Bool("valid", validation.Valid).
		Int("issues", len(validation.Issues)).
		Msg("generated XRechnung XML")
	return &model.GenerationResult{XML: xml, Validation: validation}, nil
}

// GenerateZugferd builds the XRechnung XML for a reviewed canonical invoice,
// refuses to package it while the XML fails validation, and otherwise
// packages the hybrid PDF and re-validates the finished document.
func (e *Engine) GenerateZugferd(ctx context.Context, inv *CanonicalInvoice) (*ZugferdExport, error) {
	gen, err := e.generateXML(ctx, inv)
	if err != nil {
		return nil, err
	}
	if !gen.Validation.Valid {
		return nil, model.NewValidationFailure("XRechnung", gen.Validation)
	}

	result, err := e.packager.Package(inv, gen.XML)
	if err != nil {
		return nil, err
	}

	validation, err := e.orchestrator.CheckZugferd(ctx, result.PDF, gen.XML)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("invoice_number", inv.Header.InvoiceNumber).
		Str("filename", result.Filename).
		Bool("valid", validation.Valid).
		Msg("generated ZUGFeRD PDF")
	return &ZugferdExport{ZugferdResult: result, Validation: validation}, nil
}

// GenerateZugferdFromStored is GenerateZugferd for a raw stored record.
func (e *Engine) GenerateZugferdFromStored(ctx context.Context, stored *StoredInvoice) (*ZugferdExport, error) {
	inv, err := normalize.Normalize(stored)
	if err != nil {
		return nil, err
	}
	return e.GenerateZugferd(ctx, inv)
}

// ValidateXRechnung runs the dual-source validation on an XML document.
func (e *Engine) ValidateXRechnung(ctx context.Context, xml string) (*ValidationResult, error) {
	return e.orchestrator.CheckXRechnung(ctx, xml)
}

// ValidateZugferd extracts the embedded XML from a hybrid PDF and runs the
// full ZUGFeRD validation against it.
func (e *Engine) ValidateZugferd(ctx context.Context, pdf []byte) (*ValidationResult, error) {
	xml, err := e.inspector.EmbeddedXML(pdf)
	if err != nil {
		result := model.NewValidationResult()
		result.AddError(model.SourceBuiltin, err.Error())
		return result, nil
	}
	return e.orchestrator.CheckZugferd(ctx, pdf, string(xml))
}
