package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/spf13/cast"
)

var (
	ErrItemNotFound = errors.New("line item not found")
	ErrUnknownField = errors.New("unknown line item field")
)

var dimensionNumber = regexp.MustCompile(`[+-]?([0-9]*[.])?[0-9]+`)

// RecomputeQuantity multiplies every number found in a dimension string by
// the timesing factor and rounds to 2 decimals. ok is false when the string
// holds no numbers or the product is not finite, in which case the caller
// keeps the old quantity.
func RecomputeQuantity(dimension string, timesing float64) (qty float64, ok bool) {
	matches := dimensionNumber.FindAllString(dimension, -1)
	if len(matches) == 0 {
		return 0, false
	}
	product := 1.0
	for _, m := range matches {
		n, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		product *= n
	}
	qty = product * timesing
	if !IsFinite(qty) {
		return 0, false
	}
	return RoundMoney(qty), true
}

// ItemField names an editable line item field.
type ItemField string

const (
	FieldDescription   ItemField = "description"
	FieldBillItem      ItemField = "billItemDescription"
	FieldLocation      ItemField = "locationDescription"
	FieldSourceRef     ItemField = "sourceRef"
	FieldTimesing      ItemField = "timesing"
	FieldDimension     ItemField = "dimension"
	FieldQuantity      ItemField = "quantity"
	FieldUnit          ItemField = "unit"
	FieldCategory      ItemField = "category"
	FieldConfidence    ItemField = "confidence"
	FieldEstimatedRate ItemField = "estimatedRate"
	FieldContractRate  ItemField = "contractRate"
)

// UpdateItem returns a copy of items with one field of one item replaced.
// Editing the dimension or timesing recomputes the quantity; no other edit
// does.
func UpdateItem(items []LineItem, id string, field ItemField, value any) ([]LineItem, error) {
	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	updated := make([]LineItem, len(items))
	copy(updated, items)
	item := updated[idx]

	var err error
	switch field {
	case FieldDescription:
		item.Description, err = cast.ToStringE(value)
	case FieldBillItem:
		item.BillItemDescription, err = cast.ToStringE(value)
	case FieldLocation:
		item.LocationDescription, err = cast.ToStringE(value)
	case FieldSourceRef:
		item.SourceRef, err = cast.ToStringE(value)
	case FieldUnit:
		item.Unit, err = cast.ToStringE(value)
	case FieldCategory:
		var s string
		s, err = cast.ToStringE(value)
		item.Category = CanonicalCategory(Category(s))
	case FieldConfidence:
		var s string
		s, err = cast.ToStringE(value)
		item.Confidence = Confidence(s)
	case FieldDimension:
		item.Dimension, err = cast.ToStringE(value)
	case FieldTimesing:
		item.Timesing, err = finiteFloat(value)
	case FieldQuantity:
		item.Quantity, err = finiteFloat(value)
	case FieldEstimatedRate:
		item.EstimatedRate, err = optionalFloat(value)
	case FieldContractRate:
		item.ContractRate, err = optionalFloat(value)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", field, err)
	}

	if field == FieldDimension || field == FieldTimesing {
		if qty, ok := RecomputeQuantity(item.Dimension, item.Timesing); ok {
			item.Quantity = qty
		}
	}

	updated[idx] = item
	return updated, nil
}

func optionalFloat(value any) (*float64, error) {
	if value == nil {
		return nil, nil
	}
	f, err := finiteFloat(value)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func finiteFloat(value any) (float64, error) {
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, err
	}
	if !IsFinite(f) {
		return 0, fmt.Errorf("%v is not a finite number", value)
	}
	return f, nil
}
