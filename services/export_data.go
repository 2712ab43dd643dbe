package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RowKind tells renderers how to style a sheet row.
type RowKind int

const (
	RowBlank   RowKind = iota
	RowTitle           // document title, merged across the sheet
	RowMeta            // "LABEL:", value
	RowHeader          // column headers
	RowSection         // category heading
	RowGroup           // bill name heading on the takeoff sheet
	RowItem            // ordinary data row
	RowTotal           // subtotal / total rows
	RowText            // free text merged across the sheet
)

// SheetRow is one row of an exported document.
type SheetRow struct {
	Kind  RowKind
	Cells []string
}

// Sheet is a named table of rows. Widths are column widths in characters.
type Sheet struct {
	Name   string
	Widths []float64
	Rows   []SheetRow
}

// Columns returns the number of columns of the widest row.
func (s Sheet) Columns() int {
	n := len(s.Widths)
	for _, r := range s.Rows {
		if len(r.Cells) > n {
			n = len(r.Cells)
		}
	}
	return n
}

func (s *Sheet) add(kind RowKind, cells ...string) {
	s.Rows = append(s.Rows, SheetRow{Kind: kind, Cells: cells})
}

func (s *Sheet) blank() { s.add(RowBlank) }

// Sheet names of the exported workbook.
const (
	SheetTakeoff        = "Takeoff Sheet"
	SheetBOQ            = "Bill of Quantities"
	SheetValuation      = "Valuation Summary"
	SheetGrandSummary   = "Grand Summary"
	SheetCertificate    = "Payment Certificate"
	SheetRebar          = "Rebar Schedule"
	SheetClarifications = "Clarifications"
)

// TakeoffFilter narrows the takeoff sheet. Search matches case-insensitively
// against the whole item; Source matches sourceRef exactly. Empty fields and
// the source "All" match everything.
type TakeoffFilter struct {
	Search string
	Source string
}

func (f TakeoffFilter) match(item LineItem) bool {
	if f.Source != "" && f.Source != "All" && item.SourceRef != f.Source {
		return false
	}
	if f.Search == "" {
		return true
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(raw)), strings.ToLower(f.Search))
}

// TakeoffBill is the list of measurements of one bill name in a category.
type TakeoffBill struct {
	Name  string     `json:"name"`
	Unit  string     `json:"unit"`
	Items []LineItem `json:"items"`
	Total float64    `json:"total"`
}

// TakeoffSection is one category of the takeoff sheet.
type TakeoffSection struct {
	Category Category      `json:"category"`
	Bills    []TakeoffBill `json:"bills"`
}

// TakeoffSections groups the filtered items by category and bill name.
// Categories follow first appearance in the unfiltered list; bill names
// follow first appearance among the filtered items.
func TakeoffSections(items []LineItem, f TakeoffFilter) []TakeoffSection {
	catOrder := CategoryOrder(items)

	var sections []TakeoffSection
	secIndex := make(map[Category]int)
	billIndex := make(map[Category]map[string]int)

	for _, item := range items {
		if !f.match(item) {
			continue
		}
		si, ok := secIndex[item.Category]
		if !ok {
			sections = append(sections, TakeoffSection{Category: item.Category})
			si = len(sections) - 1
			secIndex[item.Category] = si
			billIndex[item.Category] = make(map[string]int)
		}
		sec := &sections[si]
		name := item.BillName()
		bi, ok := billIndex[item.Category][name]
		if !ok {
			sec.Bills = append(sec.Bills, TakeoffBill{Name: name, Unit: item.Unit})
			bi = len(sec.Bills) - 1
			billIndex[item.Category][name] = bi
		}
		bill := &sec.Bills[bi]
		bill.Items = append(bill.Items, item)
		bill.Total += item.Quantity
	}

	// sections were appended in filtered first-appearance order; reorder by
	// the unfiltered appearance order so filtering never reshuffles headings
	for i := 1; i < len(sections); i++ {
		for j := i; j > 0 && catOrder[sections[j].Category] < catOrder[sections[j-1].Category]; j-- {
			sections[j], sections[j-1] = sections[j-1], sections[j]
		}
	}
	return sections
}

// Document bundles everything the export builders read.
type Document struct {
	Takeoff  TakeoffResult
	Meta     DocumentMeta
	Settings Settings
	Snapshot Snapshot
	Date     string
}

// DocumentFor snapshots a session for export.
func DocumentFor(s *Session, date string) Document {
	return Document{
		Takeoff:  s.Takeoff,
		Meta:     s.Meta,
		Settings: s.Settings,
		Snapshot: s.Recompute(),
		Date:     date,
	}
}

func (d Document) partyRows(sh *Sheet, projectLabel string) {
	sh.add(RowMeta, projectLabel, d.Meta.ProjectName)
	sh.add(RowMeta, "CLIENT:", d.Meta.Client)
	sh.add(RowMeta, "CONTRACTOR:", d.Meta.Contractor)
	sh.add(RowMeta, "CONSULTANT:", d.Meta.Consultant)
}

func (d Document) signatureRows(sh *Sheet) {
	sigs := d.Meta.Signatures
	sh.blank()
	sh.blank()
	sh.add(RowSection, "APPROVAL SIGNATURES")
	for _, s := range []struct {
		label string
		sig   Signature
	}{
		{"PREPARED BY:", sigs.Prepared},
		{"CHECKED BY:", sigs.Checked},
		{"APPROVED BY:", sigs.Approved},
	} {
		sh.blank()
		sh.add(RowMeta, s.label, s.sig.Name, "DATE:", s.sig.Date)
		sh.add(RowMeta, "SIGNATURE:", "__________________________")
	}
}

func unitLabels(u UnitSystem) (dim, qty string) {
	if u == UnitImperial {
		return "ft", "sq.ft/cu.yd"
	}
	return "m", "m2/m3"
}

// BuildTakeoffSheet lays out the dimension sheet: per category and bill
// name, every measurement followed by the bill total.
func BuildTakeoffSheet(d Document, f TakeoffFilter) Sheet {
	sh := Sheet{Name: SheetTakeoff, Widths: []float64{10, 25, 15, 60, 30}}
	sh.add(RowTitle, "TAKEOFF SHEET")
	d.partyRows(&sh, "PROJECT NAME:")
	sh.add(RowMeta, "DATE:", d.Date)
	sh.blank()

	dimUnit, qtyUnit := unitLabels(d.Settings.UnitSystem)
	sh.add(RowHeader, "TIMESING", fmt.Sprintf("DIMENSION (%s)", dimUnit), fmt.Sprintf("QTY (%s)", qtyUnit), "DESCRIPTION", "SOURCE DRAWING")

	for _, sec := range TakeoffSections(d.Takeoff.Items, f) {
		sh.add(RowSection, "", "", "", strings.ToUpper(string(sec.Category)), "")
		for _, bill := range sec.Bills {
			sh.add(RowGroup, "", "", "", bill.Name, "")
			for _, item := range bill.Items {
				sh.add(RowItem, formatQty(item.Timesing), item.Dimension, fixed2(item.Quantity), item.LocationDescription, item.SourceRef)
			}
			sh.add(RowTotal, "", "", fixed2(bill.Total), fmt.Sprintf("Total %s (%s)", bill.Name, bill.Unit), "")
			sh.blank()
		}
	}
	d.signatureRows(&sh)
	return sh
}

// RefLetter returns the BOQ reference letter for the n-th group, counting
// across all categories and recycling after Z.
func RefLetter(n int) string {
	return string(rune('A' + n%26))
}

func boqTitle(mode Mode, final bool) string {
	switch {
	case mode == ModeEstimation:
		return "BILL OF QUANTITIES"
	case final:
		return "FINAL SUMMARY"
	default:
		return "INTERIM SUMMARY PAGE 1"
	}
}

// BuildBOQSheet lays out the priced bill. Estimation has one quantity and
// amount per group and a "Total Carried to Summary" row per category;
// payment has the four-column quantity and amount matrix and a closing
// sub-total, VAT and grand total block.
func BuildBOQSheet(d Document) Sheet {
	v := d.Snapshot.Valuation
	mode := d.Snapshot.Mode

	sh := Sheet{Name: SheetBOQ, Widths: []float64{5, 40, 8, 12, 12, 15}}
	if mode == ModePayment {
		sh.Name = SheetValuation
		sh.Widths = []float64{5, 40, 8, 12, 12, 12, 12, 10, 15, 15, 15, 15}
	}

	sh.add(RowTitle, boqTitle(mode, d.Meta.IsFinalAccount))
	d.partyRows(&sh, "PROJECT NAME:")
	sh.add(RowMeta, "CURRENCY:", d.Settings.Currency)
	sh.blank()

	if mode == ModeEstimation {
		sh.add(RowHeader, "Ref", "Description", "Unit", "Quantity", "Rate", "Amount")
	} else {
		sh.add(RowHeader, "Ref", "Description", "Unit",
			"Contract Qty", "Previous Qty", "Current Qty", "Cumulative Qty",
			"Rate",
			"Contract Amt", "Previous Amt", "Current Amt", "Cumulative Amt")
	}

	ref := 0
	for _, cat := range d.Snapshot.Categories {
		heading := make([]string, len(sh.Widths))
		heading[0] = strings.ToUpper(string(cat))
		sh.add(RowSection, heading...)

		for _, g := range v.GroupsIn(cat) {
			letter := RefLetter(ref)
			ref++
			if mode == ModeEstimation {
				sh.add(RowItem, letter, g.Name, g.Unit, fixed2(g.TotalQuantity), fixed2(g.Rate), fixed2(g.Amounts.Contract))
				continue
			}
			sh.add(RowItem, letter, g.Name, g.Unit,
				fixed2(g.TotalQuantity), fixed2(g.PreviousQuantity), fixed2(g.ExecutedQuantity), fixed2(g.CumulativeQuantity()),
				fixed2(g.Rate),
				fixed2(g.Amounts.Contract), fixed2(g.Amounts.Previous), fixed2(g.Amounts.Current), fixed2(g.Amounts.Cumulative))
		}
		if mode == ModeEstimation {
			sh.add(RowTotal, "", "Total Carried to Summary", "", "", "", fixed2(v.CategoryAmounts(cat).Contract))
		}
		sh.blank()
	}

	if mode == ModePayment {
		sh.blank()
		matrix := func(label string, a Amounts) {
			sh.add(RowTotal, "", label, "", "", "", "", "", "",
				fixed2(a.Contract), fixed2(a.Previous), fixed2(a.Current), fixed2(a.Cumulative))
		}
		matrix("SUB TOTAL", v.Totals)
		matrix(fmt.Sprintf("ADD: VAT (%s%%)", FormatPercent(v.Markup.VATPct)), v.Markup.VAT)
		matrix("GRAND TOTAL", v.Markup.GrandTotal)
	}

	d.signatureRows(&sh)
	return sh
}

// BuildSummarySheet lays out the estimation grand summary: category totals
// carried from the bill, then the contingency and VAT chain.
func BuildSummarySheet(d Document) Sheet {
	v := d.Snapshot.Valuation
	m := v.Markup

	sh := Sheet{Name: SheetGrandSummary, Widths: []float64{40, 15, 15, 15, 15}}
	sh.add(RowTitle, "GRAND SUMMARY")
	sh.blank()
	d.partyRows(&sh, "PROJECT NAME:")
	sh.blank()
	sh.add(RowHeader, "Description", "Amount")
	for _, ct := range v.CategoryTotals {
		sh.add(RowItem, string(ct.Category), fixed2(ct.Amounts.Contract))
	}
	sh.add(RowBlank, "", "")
	sh.add(RowTotal, "SUB TOTAL (A)", fixed2(v.Totals.Contract))
	sh.add(RowItem, fmt.Sprintf("CONTINGENCY (%s%%)", FormatPercent(m.ContingencyPct)), fixed2(m.Contingency.Contract))
	sh.add(RowTotal, "TOTAL AMOUNT (A+B)", fixed2(m.Taxable.Contract))
	sh.add(RowItem, fmt.Sprintf("VAT (%s%%)", FormatPercent(m.VATPct)), fixed2(m.VAT.Contract))
	sh.add(RowTotal, "GRAND TOTAL", fixed2(m.GrandTotal.Contract))

	d.signatureRows(&sh)
	return sh
}

func certificateTitle(final bool) string {
	if final {
		return "FINAL PAYMENT CERTIFICATE"
	}
	return "INTERIM PAYMENT CERTIFICATE"
}

// BuildCertificateSheet lays out the payment certificate statement and the
// certifying sentence.
func BuildCertificateSheet(d Document) Sheet {
	c := d.Snapshot.Certificate

	sh := Sheet{Name: SheetCertificate, Widths: []float64{40, 5, 20}}
	sh.add(RowTitle, certificateTitle(d.Meta.IsFinalAccount))
	d.partyRows(&sh, "PROJECT:")
	sh.add(RowMeta, "DATE:", d.Meta.ValuationDate)
	sh.blank()
	sh.add(RowHeader, "DESCRIPTION", "", fmt.Sprintf("AMOUNT (%s)", c.Currency))
	for _, l := range c.Lines() {
		kind := RowItem
		if l.Emphasis {
			kind = RowTotal
		}
		sh.add(kind, l.Label, "", l.Display())
	}
	sh.blank()
	sh.add(RowText, c.Statement())

	d.signatureRows(&sh)
	return sh
}

// BuildRebarSheet lays out the bar bending schedule.
func BuildRebarSheet(d Document) Sheet {
	sh := Sheet{Name: SheetRebar, Widths: []float64{20, 10, 8, 8, 8, 8, 10, 10, 12, 12}}
	sh.add(RowTitle, "REBAR SCHEDULE")
	d.partyRows(&sh, "PROJECT:")
	sh.blank()
	sh.add(RowHeader, "Member", "Bar Mark", "Type", "Shape", "No. Mb", "No. Bar", "Total No", "Length", "Total Len", "Weight (kg)")
	for _, r := range d.Takeoff.RebarItems {
		sh.add(RowItem, r.Member, r.ID, r.BarType, r.ShapeCode,
			formatQty(r.NoOfMembers), formatQty(r.BarsPerMember), formatQty(r.TotalBars),
			formatQty(r.LengthPerBar), formatQty(r.TotalLength), formatQty(r.TotalWeight))
	}
	d.signatureRows(&sh)
	return sh
}

// BuildClarificationsSheet lists the technical queries raised during
// extraction and the assumptions taken.
func BuildClarificationsSheet(d Document) Sheet {
	sh := Sheet{Name: SheetClarifications, Widths: []float64{10, 60, 60, 15}}
	sh.add(RowTitle, "CLARIFICATIONS & ASSUMPTIONS")
	sh.add(RowMeta, "PROJECT:", d.Meta.ProjectName)
	sh.blank()
	sh.add(RowHeader, "ID", "QUERY / AMBIGUITY", "ASSUMPTION MADE", "IMPACT")
	for _, tq := range d.Takeoff.TechnicalQueries {
		sh.add(RowItem, tq.ID, tq.Query, tq.Assumption, tq.ImpactLevel)
	}
	return sh
}

// BuildWorkbook returns every sheet of the export in workbook order. The
// grand summary is only produced in estimation mode and the certificate only
// in payment mode; rebar and clarifications only when the takeoff has them.
func BuildWorkbook(d Document) []Sheet {
	sheets := []Sheet{
		BuildTakeoffSheet(d, TakeoffFilter{}),
		BuildBOQSheet(d),
	}
	if d.Snapshot.Mode == ModeEstimation {
		sheets = append(sheets, BuildSummarySheet(d))
	} else {
		sheets = append(sheets, BuildCertificateSheet(d))
	}
	if len(d.Takeoff.RebarItems) > 0 {
		sheets = append(sheets, BuildRebarSheet(d))
	}
	if len(d.Takeoff.TechnicalQueries) > 0 {
		sheets = append(sheets, BuildClarificationsSheet(d))
	}
	return sheets
}

// ExportFilename builds the download name, e.g. "Takeoff_Sample_Villa_Project.xlsx".
func ExportFilename(prefix, projectName, ext string) string {
	name := strings.Join(strings.Fields(projectName), "_")
	if name == "" {
		name = "Project"
	}
	return prefix + "_" + name + "." + ext
}
