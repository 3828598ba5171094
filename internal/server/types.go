package server

import (
	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
)

// GenerateXMLResponse is the response for the XRechnung generation endpoint
type GenerateXMLResponse struct {
	XML        string                  `json:"xml"`
	Validation *model.ValidationResult `json:"validation"`
}

// GenerateZugferdResponse is the response for the ZUGFeRD generation
// endpoint. PDFBase64 carries the document when the client did not request
// a raw download.
type GenerateZugferdResponse struct {
	Filename   string                  `json:"filename"`
	Metadata   model.ZugferdMetadata   `json:"metadata"`
	Validation *model.ValidationResult `json:"validation"`
	PDFBase64  string                  `json:"pdf_base64,omitempty"`
}

// ValidationResponse is the response for validate endpoints
type ValidationResponse struct {
	Valid  bool                    `json:"valid"`
	Issues []model.ValidationIssue `json:"issues,omitempty"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
