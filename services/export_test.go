package services

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func demoDocument(t *testing.T, mode Mode) Document {
	t.Helper()
	s := NewSession(DemoTakeoff(mode, fixedNow), mode, DefaultSettings(), fixedNow)
	return DocumentFor(s, "2026-03-01")
}

func certificateDocument(t *testing.T) Document {
	t.Helper()
	s := NewSession(TakeoffResult{ProjectName: "Villa", Items: []LineItem{item("1", "Works", "m2", CategorySuper, 100)}}, ModePayment, DefaultSettings(), fixedNow)
	s.SetRate("Works", 45000)
	s.Settings.PreviousPayments = 1200000
	return DocumentFor(s, "2026-03-01")
}

func sheetNames(sheets []Sheet) []string {
	names := make([]string, len(sheets))
	for i, sh := range sheets {
		names[i] = sh.Name
	}
	return names
}

func findRow(sh Sheet, first string) (SheetRow, bool) {
	for _, r := range sh.Rows {
		if len(r.Cells) > 0 && r.Cells[0] == first {
			return r, true
		}
	}
	return SheetRow{}, false
}

func TestBuildWorkbook_SheetsByMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want []string
	}{
		{ModeEstimation, []string{SheetTakeoff, SheetBOQ, SheetGrandSummary, SheetRebar, SheetClarifications}},
		{ModePayment, []string{SheetTakeoff, SheetValuation, SheetCertificate, SheetRebar, SheetClarifications}},
	}
	for _, tt := range tests {
		got := sheetNames(BuildWorkbook(demoDocument(t, tt.mode)))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("BuildWorkbook(%s) sheets = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestBuildWorkbook_OmitsEmptyAppendices(t *testing.T) {
	s := NewSession(TakeoffResult{Items: []LineItem{item("1", "Works", "m2", CategorySuper, 1)}}, ModeEstimation, DefaultSettings(), fixedNow)
	got := sheetNames(BuildWorkbook(DocumentFor(s, "")))
	want := []string{SheetTakeoff, SheetBOQ, SheetGrandSummary}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sheets = %v, want %v", got, want)
	}
}

func TestBuildBOQSheet_Estimation(t *testing.T) {
	s := NewSession(TakeoffResult{Items: []LineItem{
		item("1", "Excavation", "m3", CategorySubStruct, 10),
		item("2", "Concrete", "m3", CategorySuper, 2),
	}}, ModeEstimation, DefaultSettings(), fixedNow)
	s.SetRate("Excavation", 100)
	s.SetRate("Concrete", 500)

	sh := BuildBOQSheet(DocumentFor(s, ""))
	if sh.Rows[0].Cells[0] != "BILL OF QUANTITIES" {
		t.Errorf("title = %q", sh.Rows[0].Cells[0])
	}

	var items, totals [][]string
	for _, r := range sh.Rows {
		switch r.Kind {
		case RowItem:
			items = append(items, r.Cells)
		case RowTotal:
			totals = append(totals, r.Cells)
		}
	}
	wantItems := [][]string{
		{"A", "Excavation", "m3", "10.00", "100.00", "1000.00"},
		{"B", "Concrete", "m3", "2.00", "500.00", "1000.00"},
	}
	if !reflect.DeepEqual(items, wantItems) {
		t.Errorf("item rows = %v, want %v", items, wantItems)
	}
	if len(totals) != 2 || totals[0][1] != "Total Carried to Summary" || totals[0][5] != "1000.00" {
		t.Errorf("total rows = %v", totals)
	}
}

func TestBuildBOQSheet_PaymentTitles(t *testing.T) {
	d := certificateDocument(t)
	if got := BuildBOQSheet(d).Rows[0].Cells[0]; got != "INTERIM SUMMARY PAGE 1" {
		t.Errorf("interim title = %q", got)
	}
	d.Meta.IsFinalAccount = true
	sh := BuildBOQSheet(d)
	if got := sh.Rows[0].Cells[0]; got != "FINAL SUMMARY" {
		t.Errorf("final title = %q", got)
	}
	if sh.Columns() != 12 {
		t.Errorf("Columns() = %d, want 12", sh.Columns())
	}

	var labels []string
	for _, r := range sh.Rows {
		if r.Kind == RowTotal {
			labels = append(labels, r.Cells[1])
		}
	}
	want := []string{"SUB TOTAL", "ADD: VAT (15%)", "GRAND TOTAL"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("total labels = %v, want %v", labels, want)
	}
}

func TestBuildSummarySheet(t *testing.T) {
	s := NewSession(TakeoffResult{Items: []LineItem{item("1", "Works", "m2", CategorySuper, 100)}}, ModeEstimation, DefaultSettings(), fixedNow)
	s.SetRate("Works", 1000)
	sh := BuildSummarySheet(DocumentFor(s, ""))

	tests := map[string]string{
		string(CategorySuper): "100000.00",
		"SUB TOTAL (A)":       "100000.00",
		"CONTINGENCY (10%)":   "10000.00",
		"TOTAL AMOUNT (A+B)":  "110000.00",
		"VAT (15%)":           "16500.00",
		"GRAND TOTAL":         "126500.00",
	}
	for label, want := range tests {
		r, ok := findRow(sh, label)
		if !ok {
			t.Errorf("missing row %q", label)
			continue
		}
		if r.Cells[1] != want {
			t.Errorf("%s = %q, want %q", label, r.Cells[1], want)
		}
	}
}

func TestBuildCertificateSheet(t *testing.T) {
	sh := BuildCertificateSheet(certificateDocument(t))

	if sh.Rows[0].Cells[0] != "INTERIM PAYMENT CERTIFICATE" {
		t.Errorf("title = %q", sh.Rows[0].Cells[0])
	}
	if r, ok := findRow(sh, "DESCRIPTION"); !ok || r.Cells[2] != "AMOUNT (ETB)" {
		t.Errorf("header row = %+v", r)
	}
	if r, ok := findRow(sh, "Less: Retention (5%)"); !ok || r.Cells[2] != "-225000.00" {
		t.Errorf("retention row = %+v", r)
	}
	r, ok := findRow(sh, "NET AMOUNT DUE THIS CERTIFICATE")
	if !ok || r.Kind != RowTotal || r.Cells[2] != "3716250.00" {
		t.Errorf("amount due row = %+v", r)
	}

	var statement string
	for _, r := range sh.Rows {
		if r.Kind == RowText {
			statement = r.Cells[0]
		}
	}
	if !strings.Contains(statement, "3,716,250.00 ETB") || !strings.Contains(statement, "Three Million") {
		t.Errorf("statement = %q", statement)
	}
}

func TestBuildTakeoffSheet(t *testing.T) {
	items := []LineItem{
		{ID: "1", BillItemDescription: "Sub Structure: Excavation", Timesing: 1, Dimension: "10.00 x 2.00", Quantity: 20, Unit: "m3", Category: CategorySubStruct, SourceRef: "S-101"},
		{ID: "2", BillItemDescription: "Sub Structure: Excavation", Timesing: -1, Dimension: "1.00 x 3.00", Quantity: -3, Unit: "m3", Category: CategorySubStruct, SourceRef: "S-102"},
	}
	s := NewSession(TakeoffResult{Items: items}, ModeEstimation, DefaultSettings(), fixedNow)
	sh := BuildTakeoffSheet(DocumentFor(s, ""), TakeoffFilter{})

	var total SheetRow
	for _, r := range sh.Rows {
		if r.Kind == RowTotal {
			total = r
		}
	}
	if total.Cells[2] != "17.00" || total.Cells[3] != "Total Excavation (m3)" {
		t.Errorf("total row = %v", total.Cells)
	}

	if r, ok := findRow(sh, "-1"); !ok || r.Cells[2] != "-3.00" {
		t.Errorf("deduction row = %+v", r)
	}
}

func TestTakeoffSections_Filter(t *testing.T) {
	items := []LineItem{
		{BillItemDescription: "Roof sheet", Unit: "m2", Category: CategoryRoofing, SourceRef: "A-201", Quantity: 5},
		{BillItemDescription: "Excavation", Unit: "m3", Category: CategorySubStruct, SourceRef: "S-101", Quantity: 10, LocationDescription: "Grid B"},
		{BillItemDescription: "Excavation", Unit: "m3", Category: CategorySubStruct, SourceRef: "S-101", Quantity: 4},
		{BillItemDescription: "Ridge", Unit: "m", Category: CategoryRoofing, SourceRef: "S-101", Quantity: 2},
	}

	all := TakeoffSections(items, TakeoffFilter{Source: "All"})
	if len(all) != 2 || all[0].Category != CategoryRoofing || all[1].Category != CategorySubStruct {
		t.Fatalf("sections = %+v", all)
	}
	if all[1].Bills[0].Total != 14 || len(all[1].Bills[0].Items) != 2 {
		t.Errorf("excavation bill = %+v", all[1].Bills[0])
	}

	// the first S-101 item is sub structure, but roofing still leads
	bySource := TakeoffSections(items, TakeoffFilter{Source: "S-101"})
	if len(bySource) != 2 || bySource[0].Category != CategoryRoofing || bySource[0].Bills[0].Name != "Ridge" {
		t.Errorf("source filtered sections = %+v", bySource)
	}

	bySearch := TakeoffSections(items, TakeoffFilter{Search: "grid b"})
	if len(bySearch) != 1 || bySearch[0].Bills[0].Total != 10 {
		t.Errorf("search filtered sections = %+v", bySearch)
	}

	if got := TakeoffSections(items, TakeoffFilter{Search: "nothing matches"}); len(got) != 0 {
		t.Errorf("expected no sections, got %d", len(got))
	}
}

func TestRefLetter(t *testing.T) {
	tests := map[int]string{0: "A", 1: "B", 25: "Z", 26: "A", 27: "B"}
	for n, want := range tests {
		if got := RefLetter(n); got != want {
			t.Errorf("RefLetter(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		prefix, project, ext, want string
	}{
		{"Takeoff", "Sample Villa Project", "xlsx", "Takeoff_Sample_Villa_Project.xlsx"},
		{"BOQ", "  Two   Spaces ", "pdf", "BOQ_Two_Spaces.pdf"},
		{"Certificate", "", "pdf", "Certificate_Project.pdf"},
	}
	for _, tt := range tests {
		if got := ExportFilename(tt.prefix, tt.project, tt.ext); got != tt.want {
			t.Errorf("ExportFilename(%q) = %q, want %q", tt.project, got, tt.want)
		}
	}
}

func TestGenerateExcel(t *testing.T) {
	data, err := GenerateExcel(BuildWorkbook(demoDocument(t, ModePayment)))
	if err != nil {
		t.Fatalf("GenerateExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	want := []string{SheetTakeoff, SheetValuation, SheetCertificate, SheetRebar, SheetClarifications}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("sheets = %v, want %v", got, want)
	}

	titles := map[string]string{
		SheetTakeoff:     "TAKEOFF SHEET",
		SheetValuation:   "INTERIM SUMMARY PAGE 1",
		SheetCertificate: "INTERIM PAYMENT CERTIFICATE",
		SheetRebar:       "REBAR SCHEDULE",
	}
	for sheet, want := range titles {
		got, err := f.GetCellValue(sheet, "A1")
		if err != nil {
			t.Errorf("GetCellValue(%s) error = %v", sheet, err)
			continue
		}
		if got != want {
			t.Errorf("%s A1 = %q, want %q", sheet, got, want)
		}
	}
}

func TestGenerateExcel_NoSheets(t *testing.T) {
	if _, err := GenerateExcel(nil); err == nil {
		t.Error("expected error for empty workbook")
	}
}

func TestExcelSheetName(t *testing.T) {
	if got := excelSheetName("", 2); got != "Sheet3" {
		t.Errorf("excelSheetName(\"\") = %q", got)
	}
	long := strings.Repeat("x", 40)
	if got := excelSheetName(long, 0); len(got) != 31 {
		t.Errorf("len = %d, want 31", len(got))
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Excavation", "Excavation"},
		{"=SUM(A1:A2)", "'=SUM(A1:A2)"},
		{"+1", "'+1"},
		{"@cmd", "'@cmd"},
		{"-225000.00", "-225000.00"},
		{"-4", "-4"},
		{"-", "'-"},
		{"-1+1", "'-1+1"},
		{"-1.2.3", "'-1.2.3"},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.in); got != tt.want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGridSizes(t *testing.T) {
	tests := []struct {
		name   string
		widths []float64
		n      int
	}{
		{"takeoff", []float64{10, 25, 15, 60, 30}, 5},
		{"valuation", []float64{5, 40, 8, 12, 12, 12, 12, 10, 15, 15, 15, 15}, 12},
		{"certificate", []float64{40, 5, 20}, 3},
		{"no widths", nil, 4},
		{"single", []float64{10}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sizes := gridSizes(tt.widths, tt.n)
			if len(sizes) != tt.n {
				t.Fatalf("len = %d, want %d", len(sizes), tt.n)
			}
			sum := 0
			for _, s := range sizes {
				if s < 1 {
					t.Errorf("column size %d < 1 in %v", s, sizes)
				}
				sum += s
			}
			if sum != pdfGrid {
				t.Errorf("sizes %v sum to %d, want %d", sizes, sum, pdfGrid)
			}
		})
	}
}

func TestGeneratePDF(t *testing.T) {
	for _, sh := range BuildWorkbook(demoDocument(t, ModePayment)) {
		data, err := GeneratePDF(sh, "2026-03-01")
		if err != nil {
			t.Fatalf("GeneratePDF(%s) error = %v", sh.Name, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			t.Errorf("GeneratePDF(%s) did not produce a PDF", sh.Name)
		}
	}
}

func TestGeneratePDF_RejectsBadSheets(t *testing.T) {
	if _, err := GeneratePDF(Sheet{Name: "empty"}, ""); err == nil {
		t.Error("expected error for an empty sheet")
	}
	wide := Sheet{Name: "wide", Widths: make([]float64, 13)}
	if _, err := GeneratePDF(wide, ""); err == nil {
		t.Error("expected error for more than 12 columns")
	}
}
