// Package einvoice provides the public API for generating and validating
// German e-invoice documents: XRechnung CII XML and ZUGFeRD hybrid PDFs.
//
// Example usage:
//
//	engine := einvoice.NewDefaultEngine()
//	result, err := engine.GenerateXRechnung(ctx, stored)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Validation.Valid)
package einvoice

import "github.com/SvenSonnborn/e-invoice-processor/internal/model"

// Re-export core types for public API
type (
	StoredInvoice    = model.StoredInvoice
	StoredLineItem   = model.StoredLineItem
	ExtendedData     = model.ExtendedData
	ExtendedLineItem = model.ExtendedLineItem
	CanonicalInvoice = model.CanonicalInvoice
	Header           = model.Header
	Party            = model.Party
	Address          = model.Address
	Payment          = model.Payment
	Totals           = model.Totals
	LineItem         = model.LineItem
	TaxSubtotal      = model.TaxSubtotal
)

// Re-export result types
type (
	ValidationIssue  = model.ValidationIssue
	ValidationResult = model.ValidationResult
	GenerationResult = model.GenerationResult
	ZugferdMetadata  = model.ZugferdMetadata
	ZugferdResult    = model.ZugferdResult
)

// Re-export issue classification constants
const (
	SeverityError   = model.SeverityError
	SeverityWarning = model.SeverityWarning
	SourceBuiltin   = model.SourceBuiltin
	SourceOfficial  = model.SourceOfficial
)

// Re-export tax category codes
const (
	TaxCategoryStandard = model.TaxCategoryStandard
	TaxCategoryZero     = model.TaxCategoryZero
)

// Re-export error types
type (
	GenerationError    = model.GenerationError
	ValidationFailure  = model.ValidationFailure
	ConfigurationError = model.ConfigurationError
	ExternalToolError  = model.ExternalToolError
)
