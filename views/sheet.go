// Package views holds the printable HTML pages.
package views

import (
	"strings"

	"constructboq/services"
)

//go:generate templ generate

func rowClass(k services.RowKind) string {
	switch k {
	case services.RowTitle:
		return "title"
	case services.RowMeta:
		return "meta"
	case services.RowHeader:
		return "header"
	case services.RowSection:
		return "section"
	case services.RowGroup:
		return "group"
	case services.RowTotal:
		return "total"
	case services.RowText:
		return "text"
	case services.RowItem:
		return "item"
	}
	return "blank"
}

// firstCell is the text of a row merged across the sheet.
func firstCell(r services.SheetRow) string {
	if len(r.Cells) == 0 {
		return ""
	}
	return r.Cells[0]
}

// padCells returns exactly cols cells, blank-filled.
func padCells(cells []string, cols int) []string {
	out := make([]string, cols)
	copy(out, cells)
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	s = strings.TrimPrefix(s, "-")
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == ',':
		default:
			return false
		}
	}
	return digits > 0
}
