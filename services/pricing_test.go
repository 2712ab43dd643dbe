package services

import "testing"

func TestEffectiveRate(t *testing.T) {
	g := BoqGroup{Name: "Excavation", EstimatedRate: 300}
	withContract := g
	withContract.ContractRate = ptr(350)

	tests := []struct {
		name   string
		group  BoqGroup
		prices map[string]float64
		want   float64
	}{
		{"estimated only", g, nil, 300},
		{"contract beats estimated", withContract, nil, 350},
		{"manual beats contract", withContract, map[string]float64{"Excavation": 400}, 400},
		{"manual zero is still manual", withContract, map[string]float64{"Excavation": 0}, 0},
		{"price for other bill ignored", withContract, map[string]float64{"Backfill": 10}, 350},
		{"nothing set", BoqGroup{Name: "X"}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveRate(tt.group, tt.prices); got != tt.want {
				t.Errorf("EffectiveRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalcGroupAmounts(t *testing.T) {
	g := BoqGroup{TotalQuantity: 100, PreviousQuantity: 20, ExecutedQuantity: 30}
	got := CalcGroupAmounts(g, 50)

	want := Amounts{Contract: 5000, Previous: 1000, Current: 1500, Cumulative: 2500}
	if got != want {
		t.Errorf("CalcGroupAmounts() = %+v, want %+v", got, want)
	}
	if got.Cumulative != got.Previous+got.Current {
		t.Errorf("cumulative %v != previous %v + current %v", got.Cumulative, got.Previous, got.Current)
	}
}

func TestCalcMarkup_Estimation(t *testing.T) {
	m := CalcMarkup(Amounts{Contract: 100000}, ModeEstimation, 10, 15)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"contingency", m.Contingency.Contract, 10000},
		{"taxable", m.Taxable.Contract, 110000},
		{"vat", m.VAT.Contract, 16500},
		{"grand total", m.GrandTotal.Contract, 126500},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestCalcMarkup_PaymentSkipsContingency(t *testing.T) {
	totals := Amounts{Contract: 100000, Previous: 20000, Current: 30000, Cumulative: 50000}
	m := CalcMarkup(totals, ModePayment, 10, 15)

	if m.Taxable != totals {
		t.Errorf("Taxable = %+v, want sub-totals %+v", m.Taxable, totals)
	}
	if !approx(m.VAT.Cumulative, 7500) {
		t.Errorf("VAT cumulative = %v, want 7500", m.VAT.Cumulative)
	}
	if !approx(m.GrandTotal.Contract, 115000) {
		t.Errorf("GrandTotal contract = %v, want 115000", m.GrandTotal.Contract)
	}
}

func TestCalcMarkup_ZeroPercentages(t *testing.T) {
	m := CalcMarkup(Amounts{Contract: 5000}, ModeEstimation, 0, 0)
	if m.GrandTotal.Contract != 5000 {
		t.Errorf("GrandTotal = %v, want 5000", m.GrandTotal.Contract)
	}
}

func TestValue_TotalsMatchGroups(t *testing.T) {
	items := []LineItem{
		item("1", "Excavation", "m3", CategorySubStruct, 10),
		item("2", "Roof sheet", "m2", CategoryRoofing, 4),
		item("3", "Backfill", "m3", CategorySubStruct, 5),
	}
	prices := map[string]float64{"Excavation": 100, "Roof sheet": 250, "Backfill": 40}

	v := Value(GroupItems(items, ModeEstimation, nil), prices, ModeEstimation, DefaultSettings())

	if len(v.CategoryTotals) != 2 {
		t.Fatalf("expected 2 category totals, got %d", len(v.CategoryTotals))
	}
	if v.CategoryTotals[0].Category != CategorySubStruct {
		t.Errorf("first category = %q, want %q", v.CategoryTotals[0].Category, CategorySubStruct)
	}
	if got := v.CategoryAmounts(CategorySubStruct).Contract; !approx(got, 1200) {
		t.Errorf("Sub Structure contract = %v, want 1200", got)
	}
	if got := v.CategoryAmounts(CategoryRoofing).Contract; !approx(got, 1000) {
		t.Errorf("Roofing contract = %v, want 1000", got)
	}
	if got := v.CategoryAmounts(CategoryMech).Contract; got != 0 {
		t.Errorf("absent category contract = %v, want 0", got)
	}
	if !approx(v.Totals.Contract, 2200) {
		t.Errorf("Totals.Contract = %v, want 2200", v.Totals.Contract)
	}

	var sum float64
	for _, ct := range v.CategoryTotals {
		sum += ct.Amounts.Contract
	}
	if !approx(sum, v.Totals.Contract) {
		t.Errorf("sum of category totals %v != grand sub-total %v", sum, v.Totals.Contract)
	}

	if got := len(v.GroupsIn(CategorySubStruct)); got != 2 {
		t.Errorf("GroupsIn(Sub Structure) = %d groups, want 2", got)
	}
	if !approx(v.Markup.GrandTotal.Contract, 2200*1.1*1.15) {
		t.Errorf("GrandTotal = %v, want %v", v.Markup.GrandTotal.Contract, 2200*1.1*1.15)
	}
}

func TestValue_PaymentMatrix(t *testing.T) {
	items := []LineItem{item("1", "Excavation", "m3", CategorySubStruct, 30)}
	key := KeyOf(items[0])
	overrides := map[GroupKey]QuantityOverride{key: {Contract: ptr(100), Previous: ptr(20)}}

	s := DefaultSettings()
	v := Value(GroupItems(items, ModePayment, overrides), map[string]float64{"Excavation": 10}, ModePayment, s)

	want := Amounts{Contract: 1000, Previous: 200, Current: 300, Cumulative: 500}
	if v.Totals != want {
		t.Errorf("Totals = %+v, want %+v", v.Totals, want)
	}
	if !approx(v.Markup.VAT.Cumulative, 75) {
		t.Errorf("VAT cumulative = %v, want 75", v.Markup.VAT.Cumulative)
	}
}
