// Package services implements the quantity aggregation and valuation engine
// for drawing takeoffs: grouping line items into a Bill of Quantities, pricing,
// payment certificates, cost analytics and the export documents built on them.
package services

import (
	"strings"
	"time"
)

// Category is the trade section a measured item belongs to.
type Category string

const (
	CategoryGeneral   Category = "General & External"
	CategorySubStruct Category = "Sub Structure"
	CategorySuper     Category = "Super Structure"
	CategoryMasonry   Category = "Masonry & Partitioning"
	CategoryFinishing Category = "Finishing Works"
	CategoryOpenings  Category = "Openings (Doors/Windows)"
	CategoryRoofing   Category = "Roofing"
	CategoryElectric  Category = "Electrical"
	CategoryMech      Category = "Mechanical"
	CategorySanitary  Category = "Sanitary & Plumbing"
)

// Categories lists every category the extraction step may emit.
var Categories = []Category{
	CategoryGeneral,
	CategorySubStruct,
	CategorySuper,
	CategoryMasonry,
	CategoryFinishing,
	CategoryOpenings,
	CategoryRoofing,
	CategoryElectric,
	CategoryMech,
	CategorySanitary,
}

// categoryOpeningsAlias is the short form extractors use for the
// doors/windows section.
const categoryOpeningsAlias Category = "Openings"

// CanonicalCategory maps the "Openings" alias to CategoryOpenings and returns
// any other category unchanged.
func CanonicalCategory(c Category) Category {
	if c == categoryOpeningsAlias {
		return CategoryOpenings
	}
	return c
}

// ValidCategory reports whether c is one of the known categories. The short
// form "Openings" is accepted as an alias of the doors/windows section.
func ValidCategory(c Category) bool {
	c = CanonicalCategory(c)
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Confidence is the extractor's confidence in a measurement. Low confidence
// is only flagged for review; it never changes a computation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Mode selects between pre-contract estimation and interim valuation.
type Mode string

const (
	ModeEstimation Mode = "ESTIMATION"
	ModePayment    Mode = "PAYMENT"
)

// ParseMode maps a user-supplied mode string to a Mode. Anything that is not
// a payment mode falls back to estimation.
func ParseMode(s string) Mode {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PAYMENT", "IPC", "VALUATION":
		return ModePayment
	default:
		return ModeEstimation
	}
}

// UnitSystem affects unit labels only.
type UnitSystem string

const (
	UnitMetric   UnitSystem = "metric"
	UnitImperial UnitSystem = "imperial"
)

// LineItem is one measured quantity as produced by the extraction step.
type LineItem struct {
	ID                  string     `json:"id" validate:"required"`
	Description         string     `json:"description"`
	BillItemDescription string     `json:"billItemDescription,omitempty"`
	LocationDescription string     `json:"locationDescription,omitempty"`
	SourceRef           string     `json:"sourceRef,omitempty"`
	Timesing            float64    `json:"timesing"`
	Dimension           string     `json:"dimension"`
	Quantity            float64    `json:"quantity"`
	Unit                string     `json:"unit" validate:"required"`
	Category            Category   `json:"category" validate:"required,boqcategory"`
	Confidence          Confidence `json:"confidence" validate:"omitempty,confidence"`
	EstimatedRate       *float64   `json:"estimatedRate,omitempty"`
	ContractRate        *float64   `json:"contractRate,omitempty"`
	ContractQuantity    *float64   `json:"contractQuantity,omitempty"`
	PreviousQuantity    *float64   `json:"previousQuantity,omitempty"`
}

// BillDescription returns the bill description, falling back to the legacy
// description field.
func (i LineItem) BillDescription() string {
	if i.BillItemDescription != "" {
		return i.BillItemDescription
	}
	return i.Description
}

// BillName returns the canonical name used for grouping: the text after the
// first ':' of the bill description, trimmed, or the whole description when
// it has no ':'.
func (i LineItem) BillName() string {
	return CanonicalBillName(i.BillDescription())
}

// CanonicalBillName strips a "Category:" prefix from a bill description.
func CanonicalBillName(desc string) string {
	if _, after, found := strings.Cut(desc, ":"); found {
		return strings.TrimSpace(after)
	}
	return desc
}

// LowConfidence reports whether the item should be flagged for review.
func (i LineItem) LowConfidence() bool {
	return strings.EqualFold(string(i.Confidence), string(ConfidenceLow))
}

// RebarItem is one row of a bar bending schedule.
type RebarItem struct {
	ID            string  `json:"id"`
	Member        string  `json:"member"`
	BarType       string  `json:"barType"`
	ShapeCode     string  `json:"shapeCode"`
	NoOfMembers   float64 `json:"noOfMembers"`
	BarsPerMember float64 `json:"barsPerMember"`
	TotalBars     float64 `json:"totalBars"`
	LengthPerBar  float64 `json:"lengthPerBar"`
	TotalLength   float64 `json:"totalLength"`
	TotalWeight   float64 `json:"totalWeight"`
}

// TechnicalQuery records an ambiguity and the assumption made to proceed.
type TechnicalQuery struct {
	ID          string `json:"id"`
	Query       string `json:"query"`
	Assumption  string `json:"assumption"`
	ImpactLevel string `json:"impactLevel"`
}

// TakeoffResult is the full payload returned by the extraction step.
type TakeoffResult struct {
	ID               string           `json:"id,omitempty"`
	IsPaid           bool             `json:"isPaid,omitempty"`
	Date             string           `json:"date,omitempty"`
	ProjectName      string           `json:"projectName"`
	SourceFiles      []string         `json:"sourceFiles,omitempty"`
	DrawingType      string           `json:"drawingType,omitempty"`
	UnitSystem       UnitSystem       `json:"unitSystem,omitempty"`
	Items            []LineItem       `json:"items" validate:"dive"`
	RebarItems       []RebarItem      `json:"rebarItems"`
	TechnicalQueries []TechnicalQuery `json:"technicalQueries,omitempty"`
	Summary          string           `json:"summary"`
}

const batchSeparator = "\n\n--- ADDITIONAL BATCH ---\n"

// MergeTakeoff appends a newly analysed batch to an existing takeoff. The
// existing identity, payment state, name, drawing type and unit system are
// kept; item lists are concatenated so prior item IDs are preserved.
func MergeTakeoff(existing, batch TakeoffResult, batchFiles []string, now time.Time) TakeoffResult {
	merged := TakeoffResult{
		ID:          existing.ID,
		IsPaid:      existing.IsPaid,
		Date:        now.UTC().Format(time.RFC3339),
		ProjectName: existing.ProjectName,
		DrawingType: existing.DrawingType,
		UnitSystem:  existing.UnitSystem,
		Summary:     existing.Summary + batchSeparator + batch.Summary,
	}

	merged.SourceFiles = append(append([]string{}, existing.SourceFiles...), batchFiles...)
	merged.Items = append(append([]LineItem{}, existing.Items...), batch.Items...)
	merged.RebarItems = append(append([]RebarItem{}, existing.RebarItems...), batch.RebarItems...)
	merged.TechnicalQueries = append(append([]TechnicalQuery{}, existing.TechnicalQueries...), batch.TechnicalQueries...)
	return merged
}

// UniqueSources lists the distinct drawing references in first-appearance
// order. Items without a reference are reported as "Unknown".
func UniqueSources(items []LineItem) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, item := range items {
		src := item.SourceRef
		if src == "" {
			src = "Unknown"
		}
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return sources
}
