// Package tax aggregates resolved line items into the per-rate tax breakdown
// required by EN16931.
package tax

import (
	"sort"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
	"github.com/SvenSonnborn/e-invoice-processor/internal/money"
)

type groupKey struct {
	category model.TaxCategory
	rate     string
}

// Aggregate groups line items by (tax category, formatted rate) and sums
// their net and tax amounts into one subtotal per group, sorted ascending by
// rate. Amounts are re-rounded after every accumulation step so repeated
// additions cannot compound rounding drift. The function is pure and safe to
// call repeatedly.
func Aggregate(lines []model.LineItem) []model.TaxSubtotal {
	groups := make(map[groupKey]*model.TaxSubtotal)

	for _, line := range lines {
		key := groupKey{category: line.TaxCategoryCode, rate: money.FormatRate(line.TaxRate)}
		sub, ok := groups[key]
		if !ok {
			sub = &model.TaxSubtotal{
				TaxRate:         line.TaxRate,
				TaxCategoryCode: line.TaxCategoryCode,
				TaxableAmount:   money.Zero,
				TaxAmount:       money.Zero,
			}
			groups[key] = sub
		}
		sub.TaxableAmount = money.Round2(sub.TaxableAmount.Add(line.NetAmount))
		sub.TaxAmount = money.Round2(sub.TaxAmount.Add(line.TaxAmount))
	}

	subtotals := make([]model.TaxSubtotal, 0, len(groups))
	for _, sub := range groups {
		subtotals = append(subtotals, *sub)
	}
	sort.SliceStable(subtotals, func(i, j int) bool {
		return subtotals[i].TaxRate.LessThan(subtotals[j].TaxRate)
	})
	return subtotals
}
