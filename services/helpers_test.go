package services

import (
	"bytes"
	"math"
	"time"
)

// bytesReader wraps a byte slice in a bytes.Reader for use with excelize.OpenReader.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func ptr(v float64) *float64 { return &v }

func item(id, bill, unit string, cat Category, qty float64) LineItem {
	return LineItem{
		ID:                  id,
		Description:         bill,
		BillItemDescription: bill,
		Timesing:            1,
		Quantity:            qty,
		Unit:                unit,
		Category:            cat,
		Confidence:          ConfidenceHigh,
	}
}
