// Package pdf renders the compliance report of an approved Product
// Information Request.
//
// A4 page layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Product name  │  Request ID + approval date        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CUSTOMER: name + contact                                   │
//	│  SUPPLIER: name + contact                                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE: Question | Type | Answer | Approved                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: generation timestamp                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	apppir "github.com/scottring/compliant-connect-sub001/internal/application/pir"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 16, Green: 94, Blue: 74}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ apppir.ReportGenerator = (*ReportGenerator)(nil)

// ReportGenerator implements pir.ReportGenerator using Maroto v2.
type ReportGenerator struct{}

// NewReportGenerator builds the generator.
func NewReportGenerator() *ReportGenerator { return &ReportGenerator{} }

// GenerateReport renders the PDF and returns its bytes.
func (g *ReportGenerator) GenerateReport(
	_ context.Context,
	req *entity.PIRRequest,
	customer, supplier *entity.Company,
	rows []apppir.ReportRow,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Product Compliance Report", true).
		WithAuthor(customer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(req))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partyRow("CUSTOMER", customer))
	m.AddRows(partyRow("SUPPLIER", supplier))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range rows {
		m.AddRows(answerRow(r))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: product name (left), request ID and approval date (right).
func headerRow(req *entity.PIRRequest) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(req.ProductName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Product Compliance Report", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REQUEST "+req.ID, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Approved: "+req.UpdatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// partyRow: one side of the exchange with its contact data.
func partyRow(label string, c *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Contact: %s   |   Email: %s",
				c.Name,
				nonEmpty(c.ContactName, "—"),
				nonEmpty(c.ContactEmail, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Question", 5, align.Left),
		h("Type", 2, align.Center),
		h("Answer", 4, align.Left),
		h("Approved", 1, align.Center),
	)
}

func answerRow(r apppir.ReportRow) core.Row {
	approved := "—"
	if r.Approved {
		approved = "Yes"
	}
	return row.New(7).Add(
		col.New(5).Add(text.New(r.Question, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(r.Type, props.Text{Size: 8, Top: 1, Align: align.Center, Color: colorGray})),
		col.New(4).Add(text.New(nonEmpty(r.Answer, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(1).Add(text.New(approved, props.Text{Size: 8, Top: 1, Align: align.Center})),
	)
}

func footerRow() core.Row {
	return row.New(6).Add(
		col.New(12).Add(
			text.New("Generated "+time.Now().Format("02/01/2006 15:04")+" by Compliant Connect", props.Text{
				Size: 7, Color: colorGray, Align: align.Center, Top: 1,
			}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
