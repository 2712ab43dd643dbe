package services

// RateComponent is one cost line of a rate build-up, in currency per unit.
type RateComponent struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// RateBreakdown derives a unit rate from first principles.
type RateBreakdown struct {
	Materials   []RateComponent `json:"materials"`
	Labor       []RateComponent `json:"labor"`
	Plant       []RateComponent `json:"plant"`
	OverheadPct float64         `json:"overheadPct"`
	ProfitPct   float64         `json:"profitPct"`
}

func sumCosts(rows []RateComponent) float64 {
	var total float64
	for _, r := range rows {
		total += r.Cost
	}
	return total
}

func (b RateBreakdown) MaterialsCost() float64 { return sumCosts(b.Materials) }
func (b RateBreakdown) LaborCost() float64     { return sumCosts(b.Labor) }
func (b RateBreakdown) PlantCost() float64     { return sumCosts(b.Plant) }

// PrimeCost is materials + labor + plant.
func (b RateBreakdown) PrimeCost() float64 {
	return b.MaterialsCost() + b.LaborCost() + b.PlantCost()
}

// OverheadAmount is the overhead share of the prime cost.
func (b RateBreakdown) OverheadAmount() float64 {
	return b.PrimeCost() * b.OverheadPct / 100
}

// ProfitAmount applies profit on prime cost plus overhead.
func (b RateBreakdown) ProfitAmount() float64 {
	return (b.PrimeCost() + b.OverheadAmount()) * b.ProfitPct / 100
}

// FinalRate is the unrounded unit rate of the build-up.
func (b RateBreakdown) FinalRate() float64 {
	return b.PrimeCost() + b.OverheadAmount() + b.ProfitAmount()
}

// CostSplit is a cost decomposed into analytics buckets.
type CostSplit struct {
	Materials float64 `json:"materials"`
	Labor     float64 `json:"labor"`
	Plant     float64 `json:"plant"`
	Overhead  float64 `json:"overhead"`
	Profit    float64 `json:"profit"`
}

// Total sums all five buckets.
func (c CostSplit) Total() float64 {
	return c.Materials + c.Labor + c.Plant + c.Overhead + c.Profit
}

func (c CostSplit) add(o CostSplit) CostSplit {
	return CostSplit{
		Materials: c.Materials + o.Materials,
		Labor:     c.Labor + o.Labor,
		Plant:     c.Plant + o.Plant,
		Overhead:  c.Overhead + o.Overhead,
		Profit:    c.Profit + o.Profit,
	}
}

// CostModel decides how a priced group's cost is decomposed. It is either
// ExplicitCost (a saved rate build-up) or HeuristicCost.
type CostModel interface {
	Decompose(g GroupValuation) CostSplit
	costModel()
}

// ExplicitCost scales a rate build-up's per-unit costs by the group quantity.
type ExplicitCost struct {
	Breakdown RateBreakdown
}

func (ExplicitCost) costModel() {}

func (e ExplicitCost) Decompose(g GroupValuation) CostSplit {
	qty := g.TotalQuantity
	b := e.Breakdown
	return CostSplit{
		Materials: b.MaterialsCost() * qty,
		Labor:     b.LaborCost() * qty,
		Plant:     b.PlantCost() * qty,
		Overhead:  b.OverheadAmount() * qty,
		Profit:    b.ProfitAmount() * qty,
	}
}

// Heuristic split of a contract amount when no build-up exists. Overhead is
// folded into profit.
const (
	heuristicMaterials = 0.5
	heuristicLabor     = 0.3
	heuristicPlant     = 0.1
	heuristicProfit    = 0.1
)

// HeuristicCost splits the contract amount 50/30/10/10.
type HeuristicCost struct{}

func (HeuristicCost) costModel() {}

func (HeuristicCost) Decompose(g GroupValuation) CostSplit {
	total := g.TotalQuantity * g.Rate
	return CostSplit{
		Materials: total * heuristicMaterials,
		Labor:     total * heuristicLabor,
		Plant:     total * heuristicPlant,
		Profit:    total * heuristicProfit,
	}
}

// CostModelFor returns the cost model of a group.
func CostModelFor(key GroupKey, breakdowns map[GroupKey]RateBreakdown) CostModel {
	if b, ok := breakdowns[key]; ok {
		return ExplicitCost{Breakdown: b}
	}
	return HeuristicCost{}
}
