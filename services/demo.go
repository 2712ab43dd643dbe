package services

import (
	"fmt"
	"time"
)

func f64(v float64) *float64 { return &v }

type demoRow struct {
	bill, location, source string
	timesing               float64
	dimension              string
	unit                   string
	category               Category
	confidence             Confidence
	rate                   float64
	contractQty, prevQty   float64
}

var villaRows = []demoRow{
	{"Sub Structure: Excavation - Bulk excavation to reduced level", "Axis A-D / 1-4", "S-101 Foundation Plan", 1, "14.00 x 12.00 x 0.30", "m3", CategorySubStruct, ConfidenceHigh, 350, 60, 50.4},
	{"Sub Structure: Excavation - Trench excavation for strip footing", "Axis A-D", "S-101 Foundation Plan", 2, "14.00 x 0.80 x 1.20", "m3", CategorySubStruct, ConfidenceHigh, 420, 30, 0},
	{"Sub Structure: Concrete - C-25 concrete in isolated footings", "F1 (12 Nr)", "S-102 Footing Details", 12, "1.50 x 1.50 x 0.40", "m3", CategorySubStruct, ConfidenceMedium, 9800, 12, 10.8},
	{"Super Structure: Columns - C-25 concrete in columns", "Ground floor C1", "S-201 Column Schedule", 12, "0.30 x 0.30 x 3.00", "m3", CategorySuper, ConfidenceHigh, 11200, 7, 0},
	{"Masonry & Partitioning: Walls - 200mm HCB external wall", "North elevation", "A-201 Elevations", 1, "14.00 x 3.00", "m2", CategoryMasonry, ConfidenceMedium, 1150, 180, 42},
	{"Masonry & Partitioning: Walls - 200mm HCB external wall", "Deduct W1 openings", "A-301 Schedules", -4, "1.20 x 1.50", "m2", CategoryMasonry, ConfidenceMedium, 1150, 0, 0},
	{"Super Structure: Slabs - C-25 concrete in solid slab", "First floor slab", "S-202 Slab Plan", 1, "14.00 x 12.00 x 0.15", "m3", CategorySuper, ConfidenceHigh, 10600, 26, 0},
	{"Sub Structure: Hardcore - 250mm hardcore fill", "Ground floor", "A-101 Ground Floor Plan", 1, "13.60 x 11.60", "m2", CategorySubStruct, ConfidenceLow, 480, 160, 157.76},
	{"Openings (Doors/Windows): Doors - D1 solid timber door", "Main entrance", "A-301 Schedules", 1, "1 Nr", "nr", CategoryOpenings, ConfidenceHigh, 18500, 1, 0},
	{"Openings (Doors/Windows): Windows - W1 aluminium window", "Bedrooms", "A-301 Schedules", 4, "1 Nr", "nr", CategoryOpenings, ConfidenceHigh, 12500, 4, 0},
	{"Finishing Works: Floor - 60x60cm porcelain floor tiles", "Living & dining", "A-101 Ground Floor Plan", 1, "8.00 x 6.00", "m2", CategoryFinishing, ConfidenceMedium, 2200, 90, 0},
	{"Roofing: Roof - EGA 300 corrugated roof sheet", "Main roof", "A-401 Roof Plan", 1, "15.00 x 13.00 x 1.15", "m2", CategoryRoofing, ConfidenceMedium, 1450, 225, 0},
	{"Electrical: Points - Lighting point", "All rooms", "E-101 Electrical Layout", 1, "36 Nr", "nr", CategoryElectric, ConfidenceMedium, 950, 36, 12},
	{"Sanitary & Plumbing: Fixtures - WC pan complete", "Bathrooms", "P-101 Plumbing Layout", 3, "1 Nr", "nr", CategorySanitary, ConfidenceHigh, 8500, 3, 0},
	{"General & External: External works - Compound wall", "Site boundary", "A-001 Site Plan", 1, "56.00 x 2.40", "m2", CategoryGeneral, ConfidenceLow, 1300, 134.4, 0},
}

// DemoTakeoff returns the Sample Villa Project takeoff. In payment mode the
// items carry contract and previous quantities as a contract BOQ would.
func DemoTakeoff(mode Mode, now time.Time) TakeoffResult {
	t := TakeoffResult{
		ProjectName: "Sample Villa Project",
		Date:        now.UTC().Format(time.RFC3339),
		SourceFiles: []string{"Sample_Villa_Project_G+1.dwg"},
		DrawingType: "Full Project Set",
		UnitSystem:  UnitMetric,
		Summary:     "G+1 villa measured from the sample drawing set. Typical floor measured once.",
		RebarItems: []RebarItem{
			{ID: "01", Member: "Footing F1", BarType: "Ø12", ShapeCode: "00", NoOfMembers: 12, BarsPerMember: 16, TotalBars: 192, LengthPerBar: 1.4, TotalLength: 268.8, TotalWeight: 238.7},
			{ID: "02", Member: "Column C1", BarType: "Ø16", ShapeCode: "00", NoOfMembers: 12, BarsPerMember: 4, TotalBars: 48, LengthPerBar: 3.6, TotalLength: 172.8, TotalWeight: 272.7},
		},
		TechnicalQueries: []TechnicalQuery{
			{ID: "TQ-01", Query: "Footing depth not dimensioned on S-102.", Assumption: "Footing depth taken as 400mm.", ImpactLevel: "Medium"},
		},
	}

	for i, r := range villaRows {
		item := LineItem{
			ID:                  fmt.Sprintf("villa-%02d", i+1),
			Description:         r.bill,
			BillItemDescription: r.bill,
			LocationDescription: r.location,
			SourceRef:           r.source,
			Timesing:            r.timesing,
			Dimension:           r.dimension,
			Unit:                r.unit,
			Category:            r.category,
			Confidence:          r.confidence,
			EstimatedRate:       f64(r.rate),
		}
		if qty, ok := RecomputeQuantity(r.dimension, r.timesing); ok {
			item.Quantity = qty
		}
		if mode == ModePayment {
			item.ContractRate = f64(r.rate)
			if r.contractQty != 0 {
				item.ContractQuantity = f64(r.contractQty)
			}
			if r.prevQty != 0 {
				item.PreviousQuantity = f64(r.prevQty)
			}
		}
		t.Items = append(t.Items, item)
	}
	return t
}
