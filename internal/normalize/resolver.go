// Package normalize builds the canonical invoice model from a stored invoice
// record, repairing incomplete line items and falling back to extended-data
// or header totals when the record carries no usable lines.
package normalize

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
	"github.com/SvenSonnborn/e-invoice-processor/internal/money"
	"github.com/SvenSonnborn/e-invoice-processor/internal/tax"
)

// Date layouts accepted for stored invoice dates, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006",
}

// DefaultTaxRate derives the per-line fallback VAT rate from the header
// net/tax ratio: rounded (tax/net)*100, or 0 when either amount is absent.
// The result is deliberately not snapped to the legal rate set.
func DefaultTaxRate(stored *model.StoredInvoice) decimal.Decimal {
	net, okNet := money.FromPtr(stored.NetAmount)
	taxAmt, okTax := money.FromPtr(stored.TaxAmount)
	if !okNet || !okTax || net.IsZero() {
		return money.Zero
	}
	return taxAmt.Div(net).Mul(money.Hundred).Round(0)
}

// ResolveLines produces the ordered, non-empty line item sequence for a
// stored invoice. Priority: stored DB lines, then extended-data fallback
// lines, then one synthetic line from header totals. When none of these
// yields a line, resolution fails.
func ResolveLines(stored *model.StoredInvoice) ([]model.LineItem, error) {
	defaultRate := DefaultTaxRate(stored)

	if len(stored.Lines) > 0 {
		return resolveStoredLines(stored.Lines, defaultRate), nil
	}

	if stored.Extended != nil {
		if lines := resolveExtendedLines(stored.Extended.LineItems, defaultRate); len(lines) > 0 {
			return lines, nil
		}
	}

	if line, ok := syntheticLine(stored, defaultRate); ok {
		return []model.LineItem{line}, nil
	}

	return nil, model.NewGenerationError("no usable line items",
		fmt.Sprintf("invoice %s has no stored line items, no extended-data line items, and no header totals", stored.ID))
}

func resolveStoredLines(stored []model.StoredLineItem, defaultRate decimal.Decimal) []model.LineItem {
	sorted := make([]model.StoredLineItem, len(stored))
	copy(sorted, stored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PositionIndex < sorted[j].PositionIndex
	})

	lines := make([]model.LineItem, 0, len(sorted))
	for i, raw := range sorted {
		lines = append(lines, repairStoredLine(raw, i+1, defaultRate))
	}
	return lines
}

// repairStoredLine fills the derivable amount fields of a single stored line:
// net from net|unitPrice*quantity, tax from tax|gross-net|net*rate/100,
// gross from gross|net+tax, unit price from unitPrice|net/quantity.
func repairStoredLine(raw model.StoredLineItem, fallbackPos int, defaultRate decimal.Decimal) model.LineItem {
	qty, okQty := money.FromPtr(raw.Quantity)
	if !okQty || !qty.IsPositive() {
		qty = decimal.NewFromInt(1)
	}

	rate, okRate := money.FromPtr(raw.TaxRate)
	if !okRate {
		rate = defaultRate
	}

	unitPrice, okPrice := money.FromPtr(raw.UnitPrice)

	net, okNet := money.FromPtr(raw.NetAmount)
	if !okNet {
		if okPrice {
			net = money.Mul(unitPrice, qty)
		} else {
			net = money.Zero
		}
	}
	net = money.Round2(net)

	gross, okGross := money.FromPtr(raw.GrossAmount)

	taxAmt, okTax := money.FromPtr(raw.TaxAmount)
	if !okTax {
		if okGross {
			taxAmt = gross.Sub(net)
		} else {
			taxAmt = money.Tax(net, rate)
		}
	}
	taxAmt = money.Round2(taxAmt)

	if !okGross {
		gross = net.Add(taxAmt)
	}
	gross = money.Round2(gross)

	if !okPrice {
		unitPrice = money.Div(net, qty)
	}

	pos := raw.PositionIndex
	if pos <= 0 {
		pos = fallbackPos
	}

	return model.LineItem{
		PositionIndex:   pos,
		Description:     raw.Description,
		Quantity:        qty,
		UnitPrice:       unitPrice,
		NetAmount:       net,
		TaxRate:         rate,
		TaxAmount:       taxAmt,
		GrossAmount:     gross,
		TaxCategoryCode: model.TaxCategoryForRate(rate),
	}
}

// resolveExtendedLines converts fallback line items from the raw
// extended-data blob. A line is usable when it carries a total amount or a
// unit price; unusable lines are skipped.
func resolveExtendedLines(raw []model.ExtendedLineItem, defaultRate decimal.Decimal) []model.LineItem {
	lines := make([]model.LineItem, 0, len(raw))
	for _, item := range raw {
		total, okTotal := money.FromPtr(item.TotalAmount)
		unitPrice, okPrice := money.FromPtr(item.UnitPrice)
		if !okTotal && !okPrice {
			continue
		}

		qty, okQty := money.FromPtr(item.Quantity)
		if !okQty || !qty.IsPositive() {
			qty = decimal.NewFromInt(1)
		}

		var net decimal.Decimal
		if okTotal {
			net = money.Round2(total)
		} else {
			net = money.Mul(unitPrice, qty)
		}

		rate, okRate := money.FromPtr(item.TaxRate)
		if !okRate {
			rate = defaultRate
		}

		taxAmt := money.Tax(net, rate)
		if !okPrice {
			unitPrice = money.Div(net, qty)
		}

		lines = append(lines, model.LineItem{
			PositionIndex:   len(lines) + 1,
			Description:     item.Description,
			Quantity:        qty,
			UnitPrice:       unitPrice,
			NetAmount:       net,
			TaxRate:         rate,
			TaxAmount:       taxAmt,
			GrossAmount:     money.Round2(net.Add(taxAmt)),
			TaxCategoryCode: model.TaxCategoryForRate(rate),
		})
	}
	return lines
}

// syntheticLine builds a single line from the header totals when the record
// carries no line items at all.
func syntheticLine(stored *model.StoredInvoice, defaultRate decimal.Decimal) (model.LineItem, bool) {
	net, okNet := money.FromPtr(stored.NetAmount)
	gross, okGross := money.FromPtr(stored.GrossAmount)
	if !okNet && !okGross {
		return model.LineItem{}, false
	}

	if !okNet {
		net = gross
	}
	net = money.Round2(net)

	taxAmt, okTax := money.FromPtr(stored.TaxAmount)
	if !okTax {
		if okGross {
			taxAmt = decimal.Max(gross.Sub(net), money.Zero)
		} else {
			taxAmt = money.Zero
		}
	}
	taxAmt = money.Round2(taxAmt)

	if !okGross {
		gross = net.Add(taxAmt)
	}
	gross = money.Round2(gross)

	description := "Rechnungsposition"
	if stored.Number != "" {
		description = "Rechnungsposition " + stored.Number
	}

	return model.LineItem{
		PositionIndex:   1,
		Description:     description,
		Quantity:        decimal.NewFromInt(1),
		UnitPrice:       net,
		NetAmount:       net,
		TaxRate:         defaultRate,
		TaxAmount:       taxAmt,
		GrossAmount:     gross,
		TaxCategoryCode: model.TaxCategoryForRate(defaultRate),
	}, true
}

// Normalize builds a fresh canonical invoice from a stored record. The issue
// date is mandatory: a missing or unparsable value fails generation before
// any artifact is produced.
func Normalize(stored *model.StoredInvoice) (*model.CanonicalInvoice, error) {
	if stored == nil {
		return nil, model.NewGenerationError("missing invoice record")
	}

	lines, err := ResolveLines(stored)
	if err != nil {
		return nil, err
	}

	issueDate, err := parseDate(stored.IssueDate)
	if err != nil {
		return nil, model.NewGenerationError("missing or invalid issue date",
			fmt.Sprintf("invoice %s: %q", stored.ID, stored.IssueDate))
	}

	var dueDate *time.Time
	if d, err := parseDate(stored.DueDate); err == nil {
		dueDate = &d
	}

	number := stored.Number
	if number == "" {
		number = stored.ID
	}

	inv := &model.CanonicalInvoice{
		Header: model.Header{
			InvoiceNumber: number,
			IssueDate:     issueDate,
			DueDate:       dueDate,
			Currency:      stored.Currency,
		},
		Seller: model.Party{
			Name:  stored.SupplierName,
			VATID: stored.TaxID,
		},
		Buyer: model.Party{
			Name: stored.CustomerName,
		},
		Lines: lines,
	}

	if ext := stored.Extended; ext != nil {
		if ext.SellerAddress != nil {
			inv.Seller.Address = *ext.SellerAddress
		}
		if ext.BuyerAddress != nil {
			inv.Buyer.Address = *ext.BuyerAddress
		}
		inv.Header.BuyerReference = ext.BuyerReference
		inv.Payment = model.Payment{
			Means:     ext.PaymentMeans,
			IBAN:      ext.PaymentIBAN,
			TermsText: ext.PaymentTerms,
		}
	}

	inv.Totals = resolveTotals(stored, lines)
	inv.TaxBreakdown = tax.Aggregate(lines)

	return inv, nil
}

// resolveTotals prefers header-provided totals and falls back to sums over
// the resolved lines.
func resolveTotals(stored *model.StoredInvoice, lines []model.LineItem) model.Totals {
	var netSum, taxSum decimal.Decimal
	for _, line := range lines {
		netSum = money.Round2(netSum.Add(line.NetAmount))
		taxSum = money.Round2(taxSum.Add(line.TaxAmount))
	}

	net, okNet := money.FromPtr(stored.NetAmount)
	if !okNet {
		net = netSum
	}
	taxAmt, okTax := money.FromPtr(stored.TaxAmount)
	if !okTax {
		taxAmt = taxSum
	}
	gross, okGross := money.FromPtr(stored.GrossAmount)
	if !okGross {
		gross = net.Add(taxAmt)
	}

	return model.Totals{
		NetAmount:   money.Round2(net),
		TaxAmount:   money.Round2(taxAmt),
		GrossAmount: money.Round2(gross),
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}
