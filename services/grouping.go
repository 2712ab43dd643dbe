package services

import "sort"

// GroupKey identifies a BOQ group. Two items belong to the same group only
// when all three fields match exactly.
type GroupKey struct {
	BillName string   `json:"billName"`
	Unit     string   `json:"unit"`
	Category Category `json:"category"`
}

// KeyOf returns the group key for an item.
func KeyOf(item LineItem) GroupKey {
	return GroupKey{BillName: item.BillName(), Unit: item.Unit, Category: item.Category}
}

// String renders the key for display. It is not parsed back.
func (k GroupKey) String() string {
	return k.BillName + " | " + k.Unit + " | " + string(k.Category)
}

// QuantityOverride carries payment-mode quantities supplied from a contract
// BOQ or a previous certificate. Nil fields fall back to their defaults.
type QuantityOverride struct {
	Contract *float64 `json:"contract,omitempty"`
	Previous *float64 `json:"previous,omitempty"`
}

// BoqGroup is a derived bill item: all line items sharing a GroupKey.
type BoqGroup struct {
	ID                 GroupKey   `json:"id"`
	Name               string     `json:"name"`
	Unit               string     `json:"unit"`
	Category           Category   `json:"category"`
	Items              []LineItem `json:"items"`
	TotalQuantity      float64    `json:"totalQuantity"`
	ExecutedQuantity   float64    `json:"executedQuantity"`
	ExecutedPercentage float64    `json:"executedPercentage"`
	PreviousQuantity   float64    `json:"previousQuantity"`
	PreviousPercentage float64    `json:"previousPercentage"`
	EstimatedRate      float64    `json:"estimatedRate"`
	ContractRate       *float64   `json:"contractRate,omitempty"`
	OrderIndex         int        `json:"orderIndex"`
}

// CumulativeQuantity is previous plus executed quantity.
func (g BoqGroup) CumulativeQuantity() float64 {
	return g.PreviousQuantity + g.ExecutedQuantity
}

// CategoryOrder maps each category to the index of its first item in the
// original list.
func CategoryOrder(items []LineItem) map[Category]int {
	order := make(map[Category]int)
	for i, item := range items {
		if _, ok := order[item.Category]; !ok {
			order[item.Category] = i
		}
	}
	return order
}

// GroupItems collapses items into BOQ groups, sorted by category first
// appearance and then by the position of each group's first item.
func GroupItems(items []LineItem, mode Mode, overrides map[GroupKey]QuantityOverride) []BoqGroup {
	catOrder := CategoryOrder(items)

	index := make(map[GroupKey]int)
	var groups []BoqGroup

	for i, item := range items {
		key := KeyOf(item)
		pos, ok := index[key]
		if !ok {
			g := BoqGroup{
				ID:           key,
				Name:         key.BillName,
				Unit:         item.Unit,
				Category:     item.Category,
				ContractRate: item.ContractRate,
				OrderIndex:   i,
			}
			if item.EstimatedRate != nil {
				g.EstimatedRate = *item.EstimatedRate
			}
			groups = append(groups, g)
			pos = len(groups) - 1
			index[key] = pos
		}

		g := &groups[pos]
		g.Items = append(g.Items, item)
		if mode == ModePayment {
			g.ExecutedQuantity += item.Quantity
		} else {
			g.TotalQuantity += item.Quantity
		}
	}

	for i := range groups {
		g := &groups[i]
		if mode == ModePayment {
			g.TotalQuantity = g.ExecutedQuantity
			g.PreviousQuantity = 0
			if o, ok := overrides[g.ID]; ok {
				if o.Contract != nil {
					g.TotalQuantity = *o.Contract
				}
				if o.Previous != nil {
					g.PreviousQuantity = *o.Previous
				}
			}
		}
		if g.TotalQuantity != 0 {
			g.ExecutedPercentage = g.ExecutedQuantity / g.TotalQuantity * 100
			g.PreviousPercentage = g.PreviousQuantity / g.TotalQuantity * 100
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		ca, cb := catOrder[groups[a].Category], catOrder[groups[b].Category]
		if ca != cb {
			return ca < cb
		}
		return groups[a].OrderIndex < groups[b].OrderIndex
	})
	return groups
}

// OrderedCategories lists the categories of already sorted groups, each once.
func OrderedCategories(groups []BoqGroup) []Category {
	seen := make(map[Category]bool)
	var cats []Category
	for _, g := range groups {
		if !seen[g.Category] {
			seen[g.Category] = true
			cats = append(cats, g.Category)
		}
	}
	return cats
}

// OverridesFromItems seeds payment overrides from contract and previous
// quantities carried on the items. A later item replaces an earlier item's
// override for the same group.
func OverridesFromItems(items []LineItem) map[GroupKey]QuantityOverride {
	overrides := make(map[GroupKey]QuantityOverride)
	for _, item := range items {
		if item.ContractQuantity == nil && item.PreviousQuantity == nil {
			continue
		}
		overrides[KeyOf(item)] = QuantityOverride{
			Contract: item.ContractQuantity,
			Previous: item.PreviousQuantity,
		}
	}
	return overrides
}
