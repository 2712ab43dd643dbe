package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

type sheetStyles struct {
	title, header, section, group, item, total, text int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	// Title style: bold, 14pt.
	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	}); err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}

	// Column header style: bold, white text, charcoal background, centered.
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 10},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}

	if s.section, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("create section style: %w", err)
	}

	if s.group, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Underline: "single", Size: 10},
	}); err != nil {
		return s, fmt.Errorf("create group style: %w", err)
	}

	if s.item, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create item style: %w", err)
	}

	if s.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Border: thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create total style: %w", err)
	}

	if s.text, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true, Size: 10},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	}); err != nil {
		return s, fmt.Errorf("create text style: %w", err)
	}
	return s, nil
}

func (s sheetStyles) forKind(k RowKind) (int, bool) {
	switch k {
	case RowTitle:
		return s.title, true
	case RowHeader:
		return s.header, true
	case RowSection:
		return s.section, true
	case RowGroup:
		return s.group, true
	case RowItem:
		return s.item, true
	case RowTotal:
		return s.total, true
	case RowText:
		return s.text, true
	}
	return 0, false
}

// GenerateExcel writes the sheets into one workbook and returns the file
// contents as a byte slice.
func GenerateExcel(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("generate excel: no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	for i, sh := range sheets {
		name := excelSheetName(sh.Name, i)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("set sheet name: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, sh, styles); err != nil {
			return nil, fmt.Errorf("write sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// excelSheetName enforces the 31 character sheet name limit.
func excelSheetName(name string, i int) string {
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func writeSheet(f *excelize.File, name string, sh Sheet, styles sheetStyles) error {
	cols := sh.Columns()
	if cols == 0 {
		return nil
	}
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return fmt.Errorf("last column: %w", err)
	}

	for i, w := range sh.Widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(name, col, col, w); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	for i, r := range sh.Rows {
		rowNum := i + 1
		for c, v := range r.Cells {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, rowNum)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(name, cell, sanitizeExcelCell(v)); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}

		first := fmt.Sprintf("A%d", rowNum)
		last := fmt.Sprintf("%s%d", lastCol, rowNum)
		if r.Kind == RowTitle || r.Kind == RowText {
			if cols > 1 {
				if err := f.MergeCell(name, first, last); err != nil {
					return fmt.Errorf("merge %s: %w", first, err)
				}
			}
		}
		if r.Kind == RowText {
			if err := f.SetRowHeight(name, rowNum, 45); err != nil {
				return fmt.Errorf("row height %d: %w", rowNum, err)
			}
		}

		style, ok := styles.forKind(r.Kind)
		if !ok || len(r.Cells) == 0 {
			continue
		}
		end := last
		if r.Kind != RowTitle && r.Kind != RowText && r.Kind != RowSection {
			lc, _ := excelize.ColumnNumberToName(len(r.Cells))
			end = fmt.Sprintf("%s%d", lc, rowNum)
		}
		if err := f.SetCellStyle(name, first, end, style); err != nil {
			return fmt.Errorf("style row %d: %w", rowNum, err)
		}
	}
	return nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
// Plain negative amounts such as "-225000.00" are left alone.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '-':
		if isSignedNumber(s) {
			return s
		}
		return "'" + s
	case '=', '+', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func isSignedNumber(s string) bool {
	if len(s) < 2 {
		return false
	}
	dot := false
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
