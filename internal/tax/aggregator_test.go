package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
	"github.com/SvenSonnborn/e-invoice-processor/internal/tax"
)

func line(net, rate, taxAmt string) model.LineItem {
	r := decimal.RequireFromString(rate)
	return model.LineItem{
		NetAmount:       decimal.RequireFromString(net),
		TaxRate:         r,
		TaxAmount:       decimal.RequireFromString(taxAmt),
		TaxCategoryCode: model.TaxCategoryForRate(r),
	}
}

func TestAggregate_GroupsByRate(t *testing.T) {
	lines := []model.LineItem{
		line("100.00", "19", "19.00"),
		line("50.00", "19", "9.50"),
		line("30.00", "7", "2.10"),
	}

	subtotals := tax.Aggregate(lines)
	require.Len(t, subtotals, 2)

	// ascending by rate
	assert.True(t, subtotals[0].TaxRate.Equal(decimal.RequireFromString("7")))
	assert.True(t, subtotals[0].TaxableAmount.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, subtotals[0].TaxAmount.Equal(decimal.RequireFromString("2.10")))

	assert.True(t, subtotals[1].TaxRate.Equal(decimal.RequireFromString("19")))
	assert.True(t, subtotals[1].TaxableAmount.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, subtotals[1].TaxAmount.Equal(decimal.RequireFromString("28.50")))
}

func TestAggregate_ZeroRatedCategory(t *testing.T) {
	lines := []model.LineItem{
		line("50.00", "0", "0.00"),
		line("100.00", "19", "19.00"),
	}

	subtotals := tax.Aggregate(lines)
	require.Len(t, subtotals, 2)
	assert.Equal(t, model.TaxCategoryZero, subtotals[0].TaxCategoryCode)
	assert.Equal(t, model.TaxCategoryStandard, subtotals[1].TaxCategoryCode)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, tax.Aggregate(nil))
}

func TestAggregate_SingleGroupForRepeatedRate(t *testing.T) {
	lines := []model.LineItem{
		line("10.00", "19", "1.90"),
		line("20.00", "19.0", "3.80"),
	}

	// 19 and 19.0 format to the same rate and land in one group
	subtotals := tax.Aggregate(lines)
	require.Len(t, subtotals, 1)
	assert.True(t, subtotals[0].TaxableAmount.Equal(decimal.RequireFromString("30.00")))
}
