// Package render produces documents for bills and billing runs.
package render

import (
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/smallbiznis/tapledger/internal/billing/format"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
)

const dateLayout = "2006-01-02"

// BillPDF writes a one-bill statement.
func BillPDF(w io.Writer, detail domain.BillDetail, issuer string) error {
	bill := detail.Bill
	money := func(cents int64) string { return format.Money(cents, bill.Currency) }

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	title := "Bill"
	if bill.CompensatesBillID != nil {
		title = "Credit note"
	}
	m.AddRow(12,
		text.NewCol(8, title, props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, issuer, props.Text{Size: 10, Align: align.Right, Top: 4}),
	)

	subject := bill.DisplayName
	if bill.SubjectType == orderdomain.SubjectEvent {
		subject = fmt.Sprintf("%s (booked by %s)", bill.EventLabel, bill.DisplayName)
	}
	meta := []string{
		"Bill number: " + bill.Number,
		"Period: " + bill.Period,
		"Date of issue: " + bill.CreatedAt.UTC().Format(dateLayout),
		"Status: " + string(bill.Status),
	}
	if bill.CompensatesBillID != nil {
		meta = append(meta, "Corrects bill: "+bill.CompensatesBillID.String())
	}
	metaCol := col.New(6)
	for i, line := range meta {
		metaCol.Add(text.New(line, props.Text{Top: float64(i * 4)}))
	}
	m.AddRow(float64(len(meta)*4+4),
		metaCol,
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(subject, props.Text{Top: 5}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Drink", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, item := range detail.Items {
		m.AddRow(7,
			text.NewCol(6, item.DrinkName, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.UnitPriceCents), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.SubtotalCents), props.Text{Size: 9, Align: align.Right}),
		)
	}

	totals := []struct {
		label string
		cents int64
		bold  bool
	}{
		{"Drinks", bill.DrinksTotalCents, false},
		{"Fees", bill.FeesCents, false},
		{"Previous balance", bill.OldBalanceCents, false},
		{"Total", bill.TotalCents, true},
	}
	for _, row := range totals {
		style := props.Text{Size: 9}
		if row.bold {
			style.Style = fontstyle.Bold
		}
		valueStyle := style
		valueStyle.Align = align.Right
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, row.label, style),
			text.NewCol(2, money(row.cents), valueStyle),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return err
	}
	_, err = w.Write(doc.GetBytes())
	return err
}
