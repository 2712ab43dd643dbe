package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const pdfGrid = 12

// GeneratePDF renders one sheet as a PDF document using maroto/v2.
// Sheets wider than six columns are laid out in landscape.
func GeneratePDF(sh Sheet, generated string) ([]byte, error) {
	cols := sh.Columns()
	if cols == 0 {
		return nil, fmt.Errorf("generate pdf: sheet %q is empty", sh.Name)
	}
	if cols > pdfGrid {
		return nil, fmt.Errorf("generate pdf: sheet %q has %d columns, max %d", sh.Name, cols, pdfGrid)
	}

	orient := orientation.Vertical
	if cols > 6 {
		orient = orientation.Horizontal
	}

	cfg := config.NewBuilder().
		WithOrientation(orient).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)
	sizes := gridSizes(sh.Widths, cols)

	for _, r := range sh.Rows {
		addSheetRow(m, r, sizes)
	}
	addFooter(m, generated)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// gridSizes spreads n columns over maroto's 12-unit grid in proportion to
// their widths. Every column gets at least one unit.
func gridSizes(widths []float64, n int) []int {
	w := make([]float64, n)
	var total float64
	for i := range w {
		w[i] = 10
		if i < len(widths) && widths[i] > 0 {
			w[i] = widths[i]
		}
		total += w[i]
	}

	sizes := make([]int, n)
	used := 0
	widest := 0
	for i := range w {
		sizes[i] = int(w[i] / total * pdfGrid)
		if sizes[i] < 1 {
			sizes[i] = 1
		}
		used += sizes[i]
		if w[i] > w[widest] {
			widest = i
		}
	}

	// hand out or take back the rounding difference
	for used < pdfGrid {
		sizes[widest]++
		used++
	}
	for used > pdfGrid {
		shrink := -1
		for i := range sizes {
			if sizes[i] > 1 && (shrink < 0 || sizes[i] > sizes[shrink]) {
				shrink = i
			}
		}
		sizes[shrink]--
		used--
	}
	return sizes
}

var (
	headerBg  = &props.Color{Red: 33, Green: 37, Blue: 41}
	sectionBg = &props.Color{Red: 235, Green: 235, Blue: 235}
	totalBg   = &props.Color{Red: 245, Green: 245, Blue: 245}
	mutedText = &props.Color{Red: 80, Green: 80, Blue: 80}
)

func addSheetRow(m core.Maroto, r SheetRow, sizes []int) {
	switch r.Kind {
	case RowBlank:
		m.AddRows(row.New(4))
		return
	case RowTitle:
		m.AddRows(row.New(12).Add(
			col.New(pdfGrid).Add(text.New(firstCell(r), props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Center,
			})),
		))
		return
	case RowText:
		m.AddRows(row.New(14).Add(
			col.New(pdfGrid).Add(text.New(firstCell(r), props.Text{
				Size:  8,
				Style: fontstyle.Italic,
				Align: align.Left,
			})),
		))
		return
	case RowMeta:
		addMetaRow(m, r)
		return
	}

	base := props.Text{Size: 7, Align: align.Left}
	var cell *props.Cell
	height := 6.0

	switch r.Kind {
	case RowHeader:
		base.Style = fontstyle.Bold
		base.Align = align.Center
		base.Color = &props.Color{Red: 255, Green: 255, Blue: 255}
		cell = &props.Cell{BackgroundColor: headerBg}
		height = 8
	case RowSection:
		base.Style = fontstyle.Bold
		cell = &props.Cell{BackgroundColor: sectionBg}
	case RowGroup:
		base.Style = fontstyle.BoldItalic
	case RowTotal:
		base.Style = fontstyle.Bold
		cell = &props.Cell{BackgroundColor: totalBg}
	}

	cols := make([]core.Col, len(sizes))
	for i, size := range sizes {
		v := ""
		if i < len(r.Cells) {
			v = r.Cells[i]
		}
		c := col.New(size).Add(text.New(v, base))
		if cell != nil {
			c = c.WithStyle(cell)
		}
		cols[i] = c
	}
	m.AddRows(row.New(height).Add(cols...))
}

// addMetaRow renders "LABEL: value" pairs, two pairs per line at most.
func addMetaRow(m core.Maroto, r SheetRow) {
	label := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left}
	value := props.Text{Size: 8, Align: align.Left, Color: mutedText}

	var cols []core.Col
	switch {
	case len(r.Cells) >= 4:
		cols = []core.Col{
			col.New(2).Add(text.New(r.Cells[0], label)),
			col.New(4).Add(text.New(r.Cells[1], value)),
			col.New(2).Add(text.New(r.Cells[2], label)),
			col.New(4).Add(text.New(r.Cells[3], value)),
		}
	case len(r.Cells) >= 2:
		cols = []core.Col{
			col.New(3).Add(text.New(r.Cells[0], label)),
			col.New(9).Add(text.New(r.Cells[1], value)),
		}
	default:
		cols = []core.Col{col.New(pdfGrid).Add(text.New(firstCell(r), label))}
	}
	m.AddRows(row.New(6).Add(cols...))
}

func firstCell(r SheetRow) string {
	if len(r.Cells) == 0 {
		return ""
	}
	return r.Cells[0]
}

// addFooter adds the generated-date line at the bottom.
func addFooter(m core.Maroto, generated string) {
	if generated == "" {
		return
	}
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(pdfGrid).Add(
				text.New(
					fmt.Sprintf("Generated on %s", generated),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}
