package money_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/SvenSonnborn/e-invoice-processor/internal/money"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no rounding needed", "100.00", "100"},
		{"round down", "100.004", "100"},
		{"half rounds away from zero", "100.005", "100.01"},
		{"negative half rounds away from zero", "-100.005", "-100.01"},
		{"round up", "0.996", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := money.Round2(dec.RequireFromString(tt.input))
			assert.True(t, result.Equal(dec.RequireFromString(tt.expected)),
				"got %s, want %s", result, tt.expected)
		})
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"EUR", "EUR"},
		{"usd", "USD"},
		{" chf ", "CHF"},
		{"euros", "EUR"},
		{"", "EUR"},
		{"€", "EUR"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, money.Currency(tt.input), "input %q", tt.input)
	}
}

func TestFromPtr(t *testing.T) {
	v := dec.NewFromInt(42)
	d, ok := money.FromPtr(&v)
	assert.True(t, ok)
	assert.True(t, d.Equal(v))

	d, ok = money.FromPtr(nil)
	assert.False(t, ok)
	assert.True(t, d.IsZero())
}

func TestDiv(t *testing.T) {
	a := dec.NewFromInt(100)
	b := dec.NewFromInt(3)
	result := money.Div(a, b)
	assert.True(t, result.Equal(dec.RequireFromString("33.33")))

	// Division by zero returns zero
	result = money.Div(a, dec.Zero)
	assert.True(t, result.IsZero())
}

func TestTax(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		rate     string
		expected string
	}{
		{"19% of 100.00", "100.00", "19", "19.00"},
		{"7% of 50.00", "50.00", "7", "3.50"},
		{"0% of 100.00", "100.00", "0", "0"},
		{"19% of 33.33", "33.33", "19", "6.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := money.Tax(dec.RequireFromString(tt.amount), dec.RequireFromString(tt.rate))
			assert.True(t, result.Equal(dec.RequireFromString(tt.expected)),
				"got %s, want %s", result, tt.expected)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "100.00", money.FormatAmount(dec.NewFromInt(100)))
	assert.Equal(t, "19.50", money.FormatAmount(dec.RequireFromString("19.5")))
	assert.Equal(t, "0.01", money.FormatAmount(dec.RequireFromString("0.005")))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "1", money.FormatQuantity(dec.NewFromInt(1)))
	assert.Equal(t, "2.5", money.FormatQuantity(dec.RequireFromString("2.5000")))
	assert.Equal(t, "0.1234", money.FormatQuantity(dec.RequireFromString("0.1234")))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "19", money.FormatRate(dec.NewFromInt(19)))
	assert.Equal(t, "7", money.FormatRate(dec.RequireFromString("7.00")))
	assert.Equal(t, "10.7", money.FormatRate(dec.RequireFromString("10.70")))
}
