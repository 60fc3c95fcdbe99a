package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in the display format of the currency code,
// e.g. "₹1,234.50" for INR. Unknown codes fall back to two decimals.
func FormatMoney(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%.2f", amount)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func (v Value) render(currency string) string {
	switch {
	case v.NA:
		return "n/a"
	case v.Amount != nil:
		return FormatMoney(*v.Amount, currency)
	case v.Percent != nil:
		return fmt.Sprintf("%.2f%%", *v.Percent)
	}
	return v.Text
}

// Markdown renders the document as a markdown page.
func Markdown(doc Document, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if doc.Subtitle != "" {
		fmt.Fprintf(&b, "_%s_\n\n", doc.Subtitle)
	}
	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Heading)
		for _, l := range s.Lines {
			fmt.Fprintf(&b, "- **%s:** %s\n", l.Label, l.Value.render(currency))
		}
		if len(s.Lines) > 0 {
			b.WriteString("\n")
		}
		if s.Table == nil {
			continue
		}
		if len(s.Table.Rows) == 0 {
			b.WriteString("No records.\n\n")
			continue
		}
		writeRow(&b, s.Table.Head)
		sep := make([]string, len(s.Table.Head))
		for i := range sep {
			sep[i] = "---"
		}
		writeRow(&b, sep)
		for _, row := range s.Table.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = escapeCell(v.render(currency))
			}
			writeRow(&b, cells)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
