package services

// Slice names of the cost composition chart.
const (
	SliceMaterials         = "Materials"
	SliceLabor             = "Labor"
	SlicePlant             = "Plant"
	SliceOverheadAndProfit = "Overhead & Profit"
)

// ChartSlice is one named value of a chart series.
type ChartSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// CategoryCost is one bar of the cost-by-category chart.
type CategoryCost struct {
	Name Category `json:"name"`
	Cost float64  `json:"cost"`
}

// Analytics is the project-wide cost decomposition.
type Analytics struct {
	Split            CostSplit      `json:"split"`
	Composition      []ChartSlice   `json:"composition"`
	CategoryCosts    []CategoryCost `json:"categoryCosts"`
	TotalProjectCost float64        `json:"totalProjectCost"`
}

// Analyze decomposes every priced group through its cost model. Category
// costs use contract totals, not the decomposed buckets.
func Analyze(v Valuation, breakdowns map[GroupKey]RateBreakdown) Analytics {
	var split CostSplit
	for _, g := range v.Groups {
		split = split.add(CostModelFor(g.ID, breakdowns).Decompose(g))
	}

	a := Analytics{
		Split: split,
		Composition: []ChartSlice{
			{Name: SliceMaterials, Value: split.Materials},
			{Name: SliceLabor, Value: split.Labor},
			{Name: SlicePlant, Value: split.Plant},
			{Name: SliceOverheadAndProfit, Value: split.Overhead + split.Profit},
		},
		TotalProjectCost: split.Total(),
	}
	for _, ct := range v.CategoryTotals {
		a.CategoryCosts = append(a.CategoryCosts, CategoryCost{Name: ct.Category, Cost: ct.Amounts.Contract})
	}
	return a
}
