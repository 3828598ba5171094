package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxCategory is the EN16931 VAT category code used on lines and subtotals.
type TaxCategory string

const (
	// TaxCategoryStandard marks lines taxed at a positive rate ("S").
	TaxCategoryStandard TaxCategory = "S"
	// TaxCategoryZero marks zero-rated lines ("Z").
	TaxCategoryZero TaxCategory = "Z"
)

// TaxCategoryForRate derives the category code from a VAT rate.
func TaxCategoryForRate(rate decimal.Decimal) TaxCategory {
	if rate.GreaterThan(decimal.Zero) {
		return TaxCategoryStandard
	}
	return TaxCategoryZero
}

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Source identifies which validation tier produced an issue.
type Source string

const (
	SourceBuiltin  Source = "builtin"
	SourceOfficial Source = "official"
)

// Address is a postal address as required by the XRechnung party blocks.
type Address struct {
	Street      string `json:"street,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Party represents seller or buyer on the canonical invoice.
type Party struct {
	Name      string  `json:"name"`
	Address   Address `json:"address"`
	VATID     string  `json:"vat_id,omitempty"`
	TaxNumber string  `json:"tax_number,omitempty"`
}

// Header carries the document-level invoice fields.
type Header struct {
	InvoiceNumber  string     `json:"invoice_number"`
	IssueDate      time.Time  `json:"issue_date"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Currency       string     `json:"currency"`
	BuyerReference string     `json:"buyer_reference,omitempty"`
}

// Payment carries payment instructions.
type Payment struct {
	Means     string `json:"means,omitempty"`
	IBAN      string `json:"iban,omitempty"`
	TermsText string `json:"terms_text,omitempty"`
}

// Totals are the document-level amounts.
type Totals struct {
	NetAmount   decimal.Decimal `json:"net_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
}

// LineItem is one resolved invoice position. PositionIndex is unique and
// ordering-significant.
type LineItem struct {
	PositionIndex   int             `json:"position_index"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	GrossAmount     decimal.Decimal `json:"gross_amount"`
	TaxCategoryCode TaxCategory     `json:"tax_category_code"`
}

// TaxSubtotal is the aggregated taxable/tax amount pair for one
// (category, rate) group of the EN16931 tax breakdown.
type TaxSubtotal struct {
	TaxRate         decimal.Decimal `json:"tax_rate"`
	TaxCategoryCode TaxCategory     `json:"tax_category_code"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
}

// CanonicalInvoice is the format-agnostic invoice representation used as the
// single source for both XML and PDF generation. It is constructed fresh per
// export call and never mutated in place.
type CanonicalInvoice struct {
	Header       Header        `json:"header"`
	Seller       Party         `json:"seller"`
	Buyer        Party         `json:"buyer"`
	Payment      Payment       `json:"payment"`
	Lines        []LineItem    `json:"lines"`
	Totals       Totals        `json:"totals"`
	TaxBreakdown []TaxSubtotal `json:"tax_breakdown"`
}

// StoredInvoice is the shape of a persisted invoice record handed to the
// engine by the persistence/review layer. Dates are kept as stored strings
// and parsed during normalization; absent amounts are nil.
type StoredInvoice struct {
	ID           string           `json:"id"`
	Number       string           `json:"number,omitempty"`
	IssueDate    string           `json:"issue_date,omitempty"`
	DueDate      string           `json:"due_date,omitempty"`
	Currency     string           `json:"currency,omitempty"`
	SupplierName string           `json:"supplier_name,omitempty"`
	CustomerName string           `json:"customer_name,omitempty"`
	TaxID        string           `json:"tax_id,omitempty"`
	NetAmount    *decimal.Decimal `json:"net_amount,omitempty"`
	TaxAmount    *decimal.Decimal `json:"tax_amount,omitempty"`
	GrossAmount  *decimal.Decimal `json:"gross_amount,omitempty"`
	Lines        []StoredLineItem `json:"lines,omitempty"`
	Extended     *ExtendedData    `json:"extended,omitempty"`
}

// StoredLineItem is a persisted line item. Any of the amount fields may be
// absent; the resolver repairs them from whatever is present.
type StoredLineItem struct {
	PositionIndex int              `json:"position_index"`
	Description   string           `json:"description,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	NetAmount     *decimal.Decimal `json:"net_amount,omitempty"`
	TaxRate       *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxAmount     *decimal.Decimal `json:"tax_amount,omitempty"`
	GrossAmount   *decimal.Decimal `json:"gross_amount,omitempty"`
}

// ExtendedData is the raw extended-data blob attached to a stored invoice by
// an external import (addresses, fallback line items).
type ExtendedData struct {
	SellerAddress  *Address           `json:"seller_address,omitempty"`
	BuyerAddress   *Address           `json:"buyer_address,omitempty"`
	BuyerReference string             `json:"buyer_reference,omitempty"`
	PaymentMeans   string             `json:"payment_means,omitempty"`
	PaymentIBAN    string             `json:"payment_iban,omitempty"`
	PaymentTerms   string             `json:"payment_terms,omitempty"`
	LineItems      []ExtendedLineItem `json:"line_items,omitempty"`
}

// ExtendedLineItem is a fallback line item from the extended-data blob.
type ExtendedLineItem struct {
	Description string           `json:"description,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}
