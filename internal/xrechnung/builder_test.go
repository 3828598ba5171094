package xrechnung_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
	"github.com/SvenSonnborn/e-invoice-processor/internal/xrechnung"
)

func testInvoice() *model.CanonicalInvoice {
	due := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	return &model.CanonicalInvoice{
		Header: model.Header{
			InvoiceNumber:  "RE-2024-001",
			IssueDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			DueDate:        &due,
			Currency:       "EUR",
			BuyerReference: "04011000-1234512345-35",
		},
		Seller: model.Party{
			Name:    "Musterfirma GmbH",
			Address: model.Address{Street: "Weg 1", PostalCode: "10115", City: "Berlin", CountryCode: "DE"},
			VATID:   "DE123456789",
		},
		Buyer: model.Party{
			Name:    "Beispiel AG",
			Address: model.Address{City: "Hamburg"},
		},
		Payment: model.Payment{
			IBAN:      "DE02120300000000202051",
			TermsText: "Zahlbar innerhalb von 30 Tagen",
		},
		Lines: []model.LineItem{
			{
				PositionIndex:   1,
				Description:     "Beratung",
				Quantity:        decimal.RequireFromString("2"),
				UnitPrice:       decimal.RequireFromString("50.00"),
				NetAmount:       decimal.RequireFromString("100.00"),
				TaxRate:         decimal.RequireFromString("19"),
				TaxAmount:       decimal.RequireFromString("19.00"),
				GrossAmount:     decimal.RequireFromString("119.00"),
				TaxCategoryCode: model.TaxCategoryStandard,
			},
		},
		Totals: model.Totals{
			NetAmount:   decimal.RequireFromString("100.00"),
			TaxAmount:   decimal.RequireFromString("19.00"),
			GrossAmount: decimal.RequireFromString("119.00"),
		},
		TaxBreakdown: []model.TaxSubtotal{
			{
				TaxRate:         decimal.RequireFromString("19"),
				TaxCategoryCode: model.TaxCategoryStandard,
				TaxableAmount:   decimal.RequireFromString("100.00"),
				TaxAmount:       decimal.RequireFromString("19.00"),
			},
		},
	}
}

func TestBuild_ConformantDocument(t *testing.T) {
	xml, err := xrechnung.NewBuilder().Build(testInvoice())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, xml, xrechnung.GuidelineID)
	assert.Contains(t, xml, "<rsm:CrossIndustryInvoice")
	assert.Contains(t, xml, "<ram:ID>RE-2024-001</ram:ID>")
	assert.Contains(t, xml, "<ram:TypeCode>380</ram:TypeCode>")
	assert.Contains(t, xml, `<udt:DateTimeString format="102">20240301</udt:DateTimeString>`)
	assert.Contains(t, xml, "<ram:BuyerReference>04011000-1234512345-35</ram:BuyerReference>")
	assert.Contains(t, xml, `<ram:ID schemeID="VA">DE123456789</ram:ID>`)
	assert.Contains(t, xml, `<ram:BilledQuantity unitCode="C62">2</ram:BilledQuantity>`)
	assert.Contains(t, xml, "<ram:RateApplicablePercent>19</ram:RateApplicablePercent>")
	assert.Contains(t, xml, "<ram:IBANID>DE02120300000000202051</ram:IBANID>")
	assert.Contains(t, xml, `<ram:TaxTotalAmount currencyID="EUR">19.00</ram:TaxTotalAmount>`)
	assert.Contains(t, xml, "<ram:GrandTotalAmount>119.00</ram:GrandTotalAmount>")
	// due date rendered in payment terms
	assert.Contains(t, xml, "20240331")
}

func TestBuild_Deterministic(t *testing.T) {
	b := xrechnung.NewBuilder()
	first, err := b.Build(testInvoice())
	require.NoError(t, err)
	second, err := b.Build(testInvoice())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_MissingIssueDate(t *testing.T) {
	inv := testInvoice()
	inv.Header.IssueDate = time.Time{}

	_, err := xrechnung.NewBuilder().Build(inv)
	require.Error(t, err)

	var genErr *model.GenerationError
	assert.True(t, errors.As(err, &genErr))
}

func TestBuild_NilInvoice(t *testing.T) {
	_, err := xrechnung.NewBuilder().Build(nil)
	require.Error(t, err)
}

func TestBuild_AbsentOptionalFieldsOmitted(t *testing.T) {
	inv := testInvoice()
	inv.Header.BuyerReference = ""
	inv.Payment = model.Payment{}
	inv.Header.DueDate = nil
	inv.Buyer.VATID = ""
	inv.Buyer.TaxNumber = ""

	xml, err := xrechnung.NewBuilder().Build(inv)
	require.NoError(t, err)

	// pruned, not emitted empty
	assert.NotContains(t, xml, "BuyerReference")
	assert.NotContains(t, xml, "PayeePartyCreditorFinancialAccount")
	assert.NotContains(t, xml, "SpecifiedTradePaymentTerms")
	// default payment means still present
	assert.Contains(t, xml, "<ram:TypeCode>58</ram:TypeCode>")
}

func TestBuild_CurrencyAndCountryNormalization(t *testing.T) {
	inv := testInvoice()
	inv.Header.Currency = "euros"
	inv.Seller.Address.CountryCode = "deutschland"

	xml, err := xrechnung.NewBuilder().Build(inv)
	require.NoError(t, err)
	assert.Contains(t, xml, "<ram:InvoiceCurrencyCode>EUR</ram:InvoiceCurrencyCode>")
	assert.Contains(t, xml, "<ram:CountryID>DE</ram:CountryID>")
}
