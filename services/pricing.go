package services

// Settings holds the percentage knobs and display options that drive a
// recompute. Currency and UnitSystem never change arithmetic.
type Settings struct {
	ContingencyPct   float64    `json:"contingencyPct" yaml:"contingency_pct"`
	VATPct           float64    `json:"vatPct" yaml:"vat_pct"`
	RetentionPct     float64    `json:"retentionPct" yaml:"retention_pct"`
	AdvanceRecovery  float64    `json:"advanceRecovery" yaml:"advance_recovery"`
	PreviousPayments float64    `json:"previousPayments" yaml:"previous_payments"`
	Currency         string     `json:"projectCurrency" yaml:"currency"`
	UnitSystem       UnitSystem `json:"unitSystem" yaml:"unit_system"`
}

// DefaultSettings returns the defaults used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		ContingencyPct: 10,
		VATPct:         15,
		RetentionPct:   5,
		Currency:       "ETB",
		UnitSystem:     UnitMetric,
	}
}

// Amounts is the four-column money matrix of a valuation.
type Amounts struct {
	Contract   float64 `json:"contract"`
	Previous   float64 `json:"previous"`
	Current    float64 `json:"current"`
	Cumulative float64 `json:"cumulative"`
}

func (a Amounts) add(b Amounts) Amounts {
	return Amounts{
		Contract:   a.Contract + b.Contract,
		Previous:   a.Previous + b.Previous,
		Current:    a.Current + b.Current,
		Cumulative: a.Cumulative + b.Cumulative,
	}
}

func (a Amounts) pct(p float64) Amounts {
	return Amounts{
		Contract:   a.Contract * p / 100,
		Previous:   a.Previous * p / 100,
		Current:    a.Current * p / 100,
		Cumulative: a.Cumulative * p / 100,
	}
}

// EffectiveRate picks the unit rate for a group: a manual price keyed by
// bill name, else the contract rate, else the estimated rate.
func EffectiveRate(g BoqGroup, prices map[string]float64) float64 {
	if rate, ok := prices[g.Name]; ok {
		return rate
	}
	if g.ContractRate != nil {
		return *g.ContractRate
	}
	return g.EstimatedRate
}

// GroupValuation is a priced BOQ group.
type GroupValuation struct {
	BoqGroup
	Rate    float64 `json:"rate"`
	Amounts Amounts `json:"amounts"`
}

// CalcGroupAmounts prices one group at the given rate.
func CalcGroupAmounts(g BoqGroup, rate float64) Amounts {
	previous := g.PreviousQuantity * rate
	current := g.ExecutedQuantity * rate
	return Amounts{
		Contract:   g.TotalQuantity * rate,
		Previous:   previous,
		Current:    current,
		Cumulative: previous + current,
	}
}

// Markup is the chain applied on top of the sub-total. In estimation mode it
// is contingency, then VAT on sub-total plus contingency. In payment mode the
// contingency layer is skipped and VAT applies to the sub-total directly.
type Markup struct {
	ContingencyPct float64 `json:"contingencyPct"`
	VATPct         float64 `json:"vatPct"`
	Contingency    Amounts `json:"contingency"`
	Taxable        Amounts `json:"taxable"`
	VAT            Amounts `json:"vat"`
	GrandTotal     Amounts `json:"grandTotal"`
}

// CalcMarkup runs the markup chain over the sub-totals.
func CalcMarkup(totals Amounts, mode Mode, contingencyPct, vatPct float64) Markup {
	m := Markup{ContingencyPct: contingencyPct, VATPct: vatPct}
	m.Contingency = totals.pct(contingencyPct)
	m.Taxable = totals
	if mode == ModeEstimation {
		m.Taxable = totals.add(m.Contingency)
	}
	m.VAT = m.Taxable.pct(vatPct)
	m.GrandTotal = m.Taxable.add(m.VAT)
	return m
}

// CategoryTotal is the sub-total of one category, carried to the summary.
type CategoryTotal struct {
	Category Category `json:"category"`
	Amounts  Amounts  `json:"amounts"`
}

// Valuation is the fully priced BOQ.
type Valuation struct {
	Mode           Mode             `json:"mode"`
	Groups         []GroupValuation `json:"groups"`
	CategoryTotals []CategoryTotal  `json:"categoryTotals"`
	Totals         Amounts          `json:"totals"`
	Markup         Markup           `json:"markup"`
}

// CategoryAmounts returns the totals for one category, zero if absent.
func (v Valuation) CategoryAmounts(c Category) Amounts {
	for _, ct := range v.CategoryTotals {
		if ct.Category == c {
			return ct.Amounts
		}
	}
	return Amounts{}
}

// GroupsIn returns the priced groups of one category in BOQ order.
func (v Valuation) GroupsIn(c Category) []GroupValuation {
	var out []GroupValuation
	for _, g := range v.Groups {
		if g.Category == c {
			out = append(out, g)
		}
	}
	return out
}

// Value prices sorted groups and builds category totals, grand totals and
// the markup chain.
func Value(groups []BoqGroup, prices map[string]float64, mode Mode, s Settings) Valuation {
	v := Valuation{Mode: mode}

	cats := OrderedCategories(groups)
	catIndex := make(map[Category]int, len(cats))
	for i, c := range cats {
		catIndex[c] = i
		v.CategoryTotals = append(v.CategoryTotals, CategoryTotal{Category: c})
	}

	for _, g := range groups {
		rate := EffectiveRate(g, prices)
		amounts := CalcGroupAmounts(g, rate)
		v.Groups = append(v.Groups, GroupValuation{BoqGroup: g, Rate: rate, Amounts: amounts})

		ct := &v.CategoryTotals[catIndex[g.Category]]
		ct.Amounts = ct.Amounts.add(amounts)
		v.Totals = v.Totals.add(amounts)
	}

	v.Markup = CalcMarkup(v.Totals, mode, s.ContingencyPct, s.VATPct)
	return v
}
