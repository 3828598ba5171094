package zugferd

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
	"github.com/SvenSonnborn/e-invoice-processor/internal/money"
)

const displayDateLayout = "02.01.2006"

// renderVisual produces the human-readable A4 invoice that carries the
// embedded XML. Long line tables flow onto additional pages automatically.
func renderVisual(inv *model.CanonicalInvoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Rechnung "+inv.Header.InvoiceNumber, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	meta := []string{"Rechnungsdatum: " + inv.Header.IssueDate.Format(displayDateLayout)}
	if inv.Header.DueDate != nil {
		meta = append(meta, "Fällig am: "+inv.Header.DueDate.Format(displayDateLayout))
	}
	if inv.Header.BuyerReference != "" {
		meta = append(meta, "Leitweg-ID: "+inv.Header.BuyerReference)
	}
	m.AddRow(16, textLinesCol(6, meta, props.Text{Size: 9}), col.New(6))

	m.AddRow(34,
		partyCol(6, "Rechnungssteller", inv.Seller),
		partyCol(6, "Rechnungsempfänger", inv.Buyer),
	)

	m.AddRow(8,
		text.NewCol(6, "Bezeichnung", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Menge", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Einzelpreis", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Betrag", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, line := range inv.Lines {
		m.AddRow(8,
			text.NewCol(6, line.Description, props.Text{Size: 9}),
			text.NewCol(2, money.FormatQuantity(line.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatAmount(line.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatAmount(line.NetAmount), props.Text{Size: 9, Align: align.Right}),
		)
	}

	currency := money.Currency(inv.Header.Currency)
	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Nettobetrag", props.Text{Size: 9}),
		text.NewCol(3, formatMoney(inv.Totals.NetAmount, currency), props.Text{Size: 9, Align: align.Right}),
	)
	for _, sub := range inv.TaxBreakdown {
		m.AddRow(8,
			col.New(6),
			text.NewCol(3, fmt.Sprintf("USt. %s %%", money.FormatRate(sub.TaxRate)), props.Text{Size: 9}),
			text.NewCol(3, formatMoney(sub.TaxAmount, currency), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Gesamtbetrag", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(3, formatMoney(inv.Totals.GrossAmount, currency), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	if terms := paymentLines(inv); len(terms) > 0 {
		m.AddRow(18, textLinesCol(12, terms, props.Text{Size: 9}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func formatMoney(amount decimal.Decimal, currency string) string {
	return money.FormatAmount(amount) + " " + currency
}

func textLinesCol(size int, lines []string, base props.Text) core.Col {
	c := col.New(size)
	for i, line := range lines {
		p := base
		p.Top = float64(i * 4)
		c.Add(text.New(line, p))
	}
	return c
}

func partyCol(size int, label string, party model.Party) core.Col {
	lines := []string{party.Name}
	if street := strings.TrimSpace(party.Address.Street); street != "" {
		lines = append(lines, street)
	}
	if city := strings.TrimSpace(party.Address.PostalCode + " " + party.Address.City); city != "" {
		lines = append(lines, city)
	}
	if party.VATID != "" {
		lines = append(lines, "USt-IdNr.: "+party.VATID)
	}
	c := col.New(size)
	c.Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 9}))
	for i, line := range lines {
		c.Add(text.New(line, props.Text{Size: 9, Top: float64(5 + i*4)}))
	}
	return c
}

func paymentLines(inv *model.CanonicalInvoice) []string {
	var lines []string
	if inv.Payment.TermsText != "" {
		lines = append(lines, inv.Payment.TermsText)
	}
	if inv.Payment.IBAN != "" {
		lines = append(lines, "IBAN: "+inv.Payment.IBAN)
	}
	return lines
}
