// Package zugferd packages a validated invoice into a ZUGFeRD hybrid
// document: a PDF/A-3 file carrying the XRechnung XML as an embedded,
// equally authoritative attachment.
package zugferd

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SvenSonnborn/e-invoice-processor/internal/logger"
	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
)

const (
	// DefaultAttachmentName is the Factur-X attachment name.
	DefaultAttachmentName = "factur-x.xml"
	// AltAttachmentName is the legacy ZUGFeRD attachment name.
	AltAttachmentName = "zugferd-invoice.xml"

	// DefaultZugferdVersion is the profile version written to the XMP block.
	DefaultZugferdVersion = "2.1"
	// DefaultConformanceLevel is the ZUGFeRD profile of the embedded XML.
	DefaultConformanceLevel = "EN 16931"

	producer = "e-invoice-processor"
)

var slugPattern = regexp.MustCompile(`\W+`)

// Packager converts a canonical invoice plus its XRechnung XML into a
// ZUGFeRD PDF. Safe for concurrent use.
type Packager struct {
	attachmentName   string
	zugferdVersion   string
	conformanceLevel string
	log              zerolog.Logger
}

// PackagerOption configures a Packager.
type PackagerOption func(*Packager)

// WithAttachmentName sets the embedded file name. Only the two names allowed
// by the ZUGFeRD standard are accepted; anything else fails at Package time.
func WithAttachmentName(name string) PackagerOption {
	return func(p *Packager) { p.attachmentName = name }
}

// WithZugferdVersion overrides the version recorded in the XMP metadata.
func WithZugferdVersion(version string) PackagerOption {
	return func(p *Packager) { p.zugferdVersion = version }
}

// WithConformanceLevel overrides the conformance level recorded in the XMP
// metadata.
func WithConformanceLevel(level string) PackagerOption {
	return func(p *Packager) { p.conformanceLevel = level }
}

// NewPackager creates a Packager with Factur-X defaults.
func NewPackager(opts ...PackagerOption) *Packager {
	p := &Packager{
		attachmentName:   DefaultAttachmentName,
		zugferdVersion:   DefaultZugferdVersion,
		conformanceLevel: DefaultConformanceLevel,
		log:              logger.WithComponent("zugferd-packager"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Package renders the visual PDF, embeds the XML, and writes the PDF/A-3
// conformance artifacts. It fails before producing any output if the invoice
// is missing fields the hybrid document cannot do without.
func (p *Packager) Package(inv *model.CanonicalInvoice, xml string) (*model.ZugferdResult, error) {
	if err := p.checkPreconditions(inv, xml); err != nil {
		return nil, err
	}

	visual, err := renderVisual(inv)
	if err != nil {
		return nil, &model.GenerationError{Message: "failed to render visual PDF", Cause: err}
	}

	doc, err := openDocument(visual)
	if err != nil {
		return nil, &model.GenerationError{Message: "failed to open rendered PDF", Cause: err}
	}

	subject := "Rechnung " + inv.Header.InvoiceNumber
	if err := doc.embedAttachment(p.attachmentName, []byte(xml), "Factur-X/ZUGFeRD invoice"); err != nil {
		return nil, &model.GenerationError{Message: "failed to embed invoice XML", Cause: err}
	}
	if err := doc.setOutputIntent(sRGBProfile()); err != nil {
		return nil, &model.GenerationError{Message: "failed to set output intent", Cause: err}
	}
	if err := doc.markStructured(); err != nil {
		return nil, &model.GenerationError{Message: "failed to mark document structure", Cause: err}
	}
	if err := doc.fixLinkAnnotations(); err != nil {
		return nil, &model.GenerationError{Message: "failed to fix link annotations", Cause: err}
	}
	if err := doc.setXMPMetadata(xmpData{
		Title:            subject,
		Author:           inv.Seller.Name,
		Producer:         producer,
		AttachmentName:   p.attachmentName,
		ZugferdVersion:   p.zugferdVersion,
		ConformanceLevel: p.conformanceLevel,
		Created:          time.Now().UTC(),
	}); err != nil {
		return nil, &model.GenerationError{Message: "failed to set XMP metadata", Cause: err}
	}
	doc.setTrailerID(subject, xml)

	pdf, err := doc.write()
	if err != nil {
		return nil, &model.GenerationError{Message: "failed to write ZUGFeRD PDF", Cause: err}
	}

	result := &model.ZugferdResult{
		Filename: Filename(inv.Header.InvoiceNumber),
		PDF:      pdf,
		Metadata: model.ZugferdMetadata{
			AttachmentName:   p.attachmentName,
			ZugferdVersion:   p.zugferdVersion,
			ConformanceLevel: p.conformanceLevel,
			InvoiceNumber:    inv.Header.InvoiceNumber,
		},
	}
	p.log.Info().
		Str("invoice_number", inv.Header.InvoiceNumber).
		Str("filename", result.Filename).
		Int("size", len(pdf)).
		Msg("packaged ZUGFeRD PDF")
	return result, nil
}

func (p *Packager) checkPreconditions(inv *model.CanonicalInvoice, xml string) error {
	var details []string
	if inv == nil {
		return model.NewGenerationError("invoice is required")
	}
	if strings.TrimSpace(inv.Header.InvoiceNumber) == "" {
		details = append(details, "invoice number is missing")
	}
	if strings.TrimSpace(inv.Seller.Name) == "" {
		details = append(details, "seller name is missing")
	}
	if strings.TrimSpace(inv.Buyer.Name) == "" {
		details = append(details, "buyer name is missing")
	}
	if len(inv.Lines) == 0 {
		details = append(details, "at least one line item is required")
	}
	if p.attachmentName != DefaultAttachmentName && p.attachmentName != AltAttachmentName {
		details = append(details, "attachment name must be "+DefaultAttachmentName+" or "+AltAttachmentName)
	}
	if !strings.HasPrefix(strings.TrimSpace(xml), "<") {
		details = append(details, "XML payload does not look like an XML document")
	}
	if len(details) > 0 {
		return &model.GenerationError{Message: "invoice is not ready for ZUGFeRD packaging", Details: details}
	}
	return nil
}

// Filename derives the download filename from the invoice number.
func Filename(invoiceNumber string) string {
	slug := slugPattern.ReplaceAllString(invoiceNumber, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "invoice"
	}
	return slug + "-zugferd.pdf"
}
