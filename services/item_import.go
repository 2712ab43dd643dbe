package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TemplateField describes one column of the line item import template.
type TemplateField struct {
	Key          ItemField // line item field the column maps to
	Label        string    // header shown in the spreadsheet
	Description  string    // shown on the Instructions sheet
	FormatRule   string
	ExampleValue string
	Required     bool
}

// ItemTemplateFields returns the ordered columns of the import template.
func ItemTemplateFields() []TemplateField {
	return []TemplateField{
		{Key: FieldBillItem, Label: "Bill Item", Description: "Bill description, optionally prefixed with 'Category:'", ExampleValue: "Sub Structure: Excavation - Bulk excavation", Required: true},
		{Key: FieldLocation, Label: "Location", Description: "Where on the drawing the measurement was taken", ExampleValue: "Axis A-D / 1-4"},
		{Key: FieldSourceRef, Label: "Source Drawing", Description: "Drawing reference", ExampleValue: "S-101"},
		{Key: FieldTimesing, Label: "Timesing", Description: "Multiplier; negative for deductions", FormatRule: "Number, default 1", ExampleValue: "2"},
		{Key: FieldDimension, Label: "Dimension", Description: "Dimension string; its numbers are multiplied", ExampleValue: "10.00 x 0.60"},
		{Key: FieldQuantity, Label: "Quantity", Description: "Overrides the dimension when filled in", FormatRule: "Number", ExampleValue: "12"},
		{Key: FieldUnit, Label: "Unit", Description: "Unit of measure", ExampleValue: "m3", Required: true},
		{Key: FieldCategory, Label: "Category", Description: "Trade section (select from dropdown)", ExampleValue: string(CategorySubStruct), Required: true},
		{Key: FieldConfidence, Label: "Confidence", Description: "High, Medium or Low", ExampleValue: string(ConfidenceHigh)},
		{Key: FieldEstimatedRate, Label: "Rate", Description: "Estimated unit rate", FormatRule: "Number", ExampleValue: "350"},
	}
}

// ImportError is a single field-level error on one row.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult is returned after parsing and validating an uploaded file.
// Rows with errors are left out of Items.
type ImportResult struct {
	TotalRows int           `json:"total_rows"`
	ValidRows int           `json:"valid_rows"`
	ErrorRows int           `json:"error_rows"`
	Errors    []ImportError `json:"errors"`
	Items     []LineItem    `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapHeadersToFields maps uploaded column headers to template fields.
// Returns the field of each column (nil when unrecognized) and the
// unrecognized headers.
func mapHeadersToFields(headers []string, fields []TemplateField) ([]*TemplateField, []string) {
	byLabel := make(map[string]*TemplateField, len(fields))
	for i := range fields {
		byLabel[strings.ToLower(fields[i].Label)] = &fields[i]
		byLabel[strings.ToLower(string(fields[i].Key))] = &fields[i]
	}

	mapped := make([]*TemplateField, len(headers))
	var unrecognized []string
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		// Strip trailing " *" that the template adds for required fields
		norm = strings.TrimSpace(strings.TrimSuffix(norm, " *"))
		if f, ok := byLabel[norm]; ok {
			mapped[i] = f
		} else {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// ImportItems parses a .csv or .xlsx takeoff sheet into line items. Item IDs
// are left empty for the session to assign.
func ImportItems(file io.Reader, fileName string) (*ImportResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	fields := ItemTemplateFields()
	columns, _ := mapHeadersToFields(headers, fields)

	result := &ImportResult{TotalRows: len(dataRows)}
	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		values := make(map[ItemField]string)
		for colIdx, f := range columns {
			if f == nil || colIdx >= len(row) {
				continue
			}
			values[f.Key] = strings.TrimSpace(row[colIdx])
		}
		if isBlankRow(values) {
			result.TotalRows--
			continue
		}

		item, rowErrors := itemFromRow(rowNum, values, fields)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}
		result.Items = append(result.Items, item)
	}
	result.ValidRows = len(result.Items)
	return result, nil
}

func isBlankRow(values map[ItemField]string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}

func itemFromRow(rowNum int, values map[ItemField]string, fields []TemplateField) (LineItem, []ImportError) {
	var errs []ImportError
	for _, f := range fields {
		if f.Required && values[f.Key] == "" {
			errs = append(errs, ImportError{Row: rowNum, Field: f.Label, Message: fmt.Sprintf("%s is required", f.Label)})
		}
	}

	number := func(key ItemField, label string, def float64) float64 {
		v := values[key]
		if v == "" {
			return def
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil || !IsFinite(n) {
			errs = append(errs, ImportError{Row: rowNum, Field: label, Message: fmt.Sprintf("%s must be a number", label)})
			return def
		}
		return n
	}

	item := LineItem{
		BillItemDescription: values[FieldBillItem],
		Description:         values[FieldBillItem],
		LocationDescription: values[FieldLocation],
		SourceRef:           values[FieldSourceRef],
		Dimension:           values[FieldDimension],
		Unit:                values[FieldUnit],
		Category:            CanonicalCategory(Category(values[FieldCategory])),
		Confidence:          Confidence(values[FieldConfidence]),
		Timesing:            number(FieldTimesing, "Timesing", 1),
		Quantity:            number(FieldQuantity, "Quantity", 0),
	}
	if values[FieldEstimatedRate] != "" {
		rate := number(FieldEstimatedRate, "Rate", 0)
		item.EstimatedRate = &rate
	}
	if item.Confidence == "" {
		item.Confidence = ConfidenceMedium
	}

	if item.Category != "" && !ValidCategory(item.Category) {
		errs = append(errs, ImportError{Row: rowNum, Field: "Category", Message: fmt.Sprintf("unknown category %q", item.Category)})
	}
	switch item.Confidence {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
	default:
		errs = append(errs, ImportError{Row: rowNum, Field: "Confidence", Message: "Confidence must be High, Medium or Low"})
	}

	// an explicit quantity wins over the dimension
	if values[FieldQuantity] == "" {
		if qty, ok := RecomputeQuantity(item.Dimension, item.Timesing); ok {
			item.Quantity = qty
		}
	}
	return item, errs
}

// GenerateErrorReport creates a downloadable .xlsx file from import errors.
func GenerateErrorReport(errors []ImportError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := strconv.Itoa(i + 2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
