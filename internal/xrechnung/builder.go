// Package xrechnung maps the canonical invoice model onto an XRechnung 3.0
// conformant Cross Industry Invoice (CII) document.
package xrechnung

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
	"github.com/SvenSonnborn/e-invoice-processor/internal/money"
)

const (
	// Profile names the target customization of this builder.
	Profile = "XRECHNUNG-CII"

	// GuidelineID is the XRechnung 3.0 guideline context parameter. The
	// profile check keys on the "xrechnung_3.0" substring within it.
	GuidelineID = "urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0"

	businessProcessID = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"

	nsRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	nsRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	nsUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"

	// commercial invoice
	invoiceTypeCode = "380"
	// unit (piece), the fixed quantity unit code
	unitCode = "C62"
	// SEPA credit transfer, the default payment means
	defaultPaymentMeans = "58"

	// CII date format qualifier for yyyymmdd
	dateFormat102 = "102"
)

var countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Builder renders canonical invoices as XRechnung CII XML. The output is
// deterministic: identical input produces byte-identical XML.
type Builder struct {
	language string
}

// NewBuilder creates a builder with German as document language.
func NewBuilder() *Builder {
	return &Builder{language: "de"}
}

// Build renders the invoice. A zero issue date is a fatal generation error;
// the document is never serialized without one.
func (b *Builder) Build(inv *model.CanonicalInvoice) (string, error) {
	if inv == nil {
		return "", model.NewGenerationError("missing canonical invoice")
	}
	if inv.Header.IssueDate.IsZero() {
		return "", model.NewGenerationError("missing issue date",
			fmt.Sprintf("invoice %s has no issue date", inv.Header.InvoiceNumber))
	}

	currency := money.Currency(inv.Header.Currency)

	root := Elem("rsm:CrossIndustryInvoice",
		b.documentContext(),
		b.exchangedDocument(inv),
		Elem("rsm:SupplyChainTradeTransaction",
			append(
				b.lineItems(inv),
				b.tradeAgreement(inv),
				b.tradeDelivery(inv),
				b.tradeSettlement(inv, currency),
			)...,
		),
	)
	root.attrs = []Attr{
		{Key: "xmlns:rsm", Value: nsRSM},
		{Key: "xmlns:ram", Value: nsRAM},
		{Key: "xmlns:udt", Value: nsUDT},
	}

	return root.render()
}

func (b *Builder) documentContext() *Node {
	return Elem("rsm:ExchangedDocumentContext",
		Elem("ram:BusinessProcessSpecifiedDocumentContextParameter",
			Txt("ram:ID", businessProcessID),
		),
		Elem("ram:GuidelineSpecifiedDocumentContextParameter",
			Txt("ram:ID", GuidelineID),
		),
	)
}

func (b *Builder) exchangedDocument(inv *model.CanonicalInvoice) *Node {
	return Elem("rsm:ExchangedDocument",
		Txt("ram:ID", inv.Header.InvoiceNumber),
		Txt("ram:TypeCode", invoiceTypeCode),
		Elem("ram:IssueDateTime", dateTimeString(inv.Header.IssueDate)),
		Txt("ram:LanguageID", b.language),
	)
}

func (b *Builder) lineItems(inv *model.CanonicalInvoice) []*Node {
	nodes := make([]*Node, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		nodes = append(nodes, Elem("ram:IncludedSupplyChainTradeLineItem",
			Elem("ram:AssociatedDocumentLineDocument",
				Txt("ram:LineID", fmt.Sprintf("%d", line.PositionIndex)),
			),
			Elem("ram:SpecifiedTradeProduct",
				Txt("ram:Name", line.Description),
			),
			Elem("ram:SpecifiedLineTradeAgreement",
				Elem("ram:NetPriceProductTradePrice",
					Txt("ram:ChargeAmount", money.FormatAmount(line.UnitPrice)),
				),
			),
			Elem("ram:SpecifiedLineTradeDelivery",
				Txt("ram:BilledQuantity", money.FormatQuantity(line.Quantity),
					Attr{Key: "unitCode", Value: unitCode}),
			),
			Elem("ram:SpecifiedLineTradeSettlement",
				Elem("ram:ApplicableTradeTax",
					Txt("ram:TypeCode", "VAT"),
					Txt("ram:CategoryCode", string(line.TaxCategoryCode)),
					Txt("ram:RateApplicablePercent", money.FormatRate(line.TaxRate)),
				),
				Elem("ram:SpecifiedTradeSettlementLineMonetarySummation",
					Txt("ram:LineTotalAmount", money.FormatAmount(line.NetAmount)),
				),
			),
		))
	}
	return nodes
}

func (b *Builder) tradeAgreement(inv *model.CanonicalInvoice) *Node {
	return Elem("ram:ApplicableHeaderTradeAgreement",
		Txt("ram:BuyerReference", inv.Header.BuyerReference),
		party("ram:SellerTradeParty", inv.Seller),
		party("ram:BuyerTradeParty", inv.Buyer),
	)
}

func party(tag string, p model.Party) *Node {
	return Elem(tag,
		Txt("ram:Name", p.Name),
		OptElem("ram:SpecifiedLegalOrganization",
			Txt("ram:TradingBusinessName", p.Name),
		),
		Elem("ram:PostalTradeAddress",
			Txt("ram:PostcodeCode", p.Address.PostalCode),
			Txt("ram:LineOne", p.Address.Street),
			Txt("ram:CityName", p.Address.City),
			Txt("ram:CountryID", normalizeCountry(p.Address.CountryCode)),
		),
		taxRegistration(p),
	)
}

// taxRegistration prefers the VAT ID (scheme VA) over the national tax
// number (scheme FC); absent when the party carries neither.
func taxRegistration(p model.Party) *Node {
	if p.VATID != "" {
		return Elem("ram:SpecifiedTaxRegistration",
			Txt("ram:ID", p.VATID, Attr{Key: "schemeID", Value: "VA"}),
		)
	}
	if p.TaxNumber != "" {
		return Elem("ram:SpecifiedTaxRegistration",
			Txt("ram:ID", p.TaxNumber, Attr{Key: "schemeID", Value: "FC"}),
		)
	}
	return nil
}

// tradeDelivery emits the delivery date, falling back from the due date to
// the issue date when no due date is present.
func (b *Builder) tradeDelivery(inv *model.CanonicalInvoice) *Node {
	deliveryDate := inv.Header.IssueDate
	if inv.Header.DueDate != nil {
		deliveryDate = *inv.Header.DueDate
	}
	return Elem("ram:ApplicableHeaderTradeDelivery",
		Elem("ram:ActualDeliverySupplyChainEvent",
			Elem("ram:OccurrenceDateTime", dateTimeString(deliveryDate)),
		),
	)
}

func (b *Builder) tradeSettlement(inv *model.CanonicalInvoice, currency string) *Node {
	children := []*Node{
		Txt("ram:InvoiceCurrencyCode", currency),
		paymentMeans(inv.Payment),
	}

	for _, sub := range inv.TaxBreakdown {
		children = append(children, Elem("ram:ApplicableTradeTax",
			Txt("ram:CalculatedAmount", money.FormatAmount(sub.TaxAmount)),
			Txt("ram:TypeCode", "VAT"),
			Txt("ram:BasisAmount", money.FormatAmount(sub.TaxableAmount)),
			Txt("ram:CategoryCode", string(sub.TaxCategoryCode)),
			Txt("ram:RateApplicablePercent", money.FormatRate(sub.TaxRate)),
		))
	}

	children = append(children,
		paymentTerms(inv.Header, inv.Payment),
		Elem("ram:SpecifiedTradeSettlementHeaderMonetarySummation",
			Txt("ram:LineTotalAmount", money.FormatAmount(inv.Totals.NetAmount)),
			Txt("ram:TaxBasisTotalAmount", money.FormatAmount(inv.Totals.NetAmount)),
			Txt("ram:TaxTotalAmount", money.FormatAmount(inv.Totals.TaxAmount),
				Attr{Key: "currencyID", Value: currency}),
			Txt("ram:GrandTotalAmount", money.FormatAmount(inv.Totals.GrossAmount)),
			Txt("ram:DuePayableAmount", money.FormatAmount(inv.Totals.GrossAmount)),
		),
	)

	return Elem("ram:ApplicableHeaderTradeSettlement", children...)
}

func paymentMeans(p model.Payment) *Node {
	means := p.Means
	if means == "" {
		means = defaultPaymentMeans
	}
	return Elem("ram:SpecifiedTradeSettlementPaymentMeans",
		Txt("ram:TypeCode", means),
		OptElem("ram:PayeePartyCreditorFinancialAccount",
			Txt("ram:IBANID", p.IBAN),
		),
	)
}

func paymentTerms(h model.Header, p model.Payment) *Node {
	var due *Node
	if h.DueDate != nil {
		due = Elem("ram:DueDateDateTime", dateTimeString(*h.DueDate))
	}
	return OptElem("ram:SpecifiedTradePaymentTerms",
		Txt("ram:Description", p.TermsText),
		due,
	)
}

func dateTimeString(t time.Time) *Node {
	return Txt("udt:DateTimeString", t.Format("20060102"),
		Attr{Key: "format", Value: dateFormat102})
}

// normalizeCountry uppercases and validates a 2-letter country code,
// defaulting to DE.
func normalizeCountry(s string) string {
	c := upper(s)
	if countryPattern.MatchString(c) {
		return c
	}
	return "DE"
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
