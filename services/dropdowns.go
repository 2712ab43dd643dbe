package services

// MetricUnits is the list of metric units offered for line items.
var MetricUnits = []string{
	"m",
	"m2",
	"m3",
	"kg",
	"ton",
	"nr",
	"pcs",
	"ls",
}

// ImperialUnits is the list of imperial units offered for line items.
var ImperialUnits = []string{
	"ft",
	"sq.ft",
	"cu.yd",
	"lb",
	"nr",
	"pcs",
	"ls",
}

// UnitOptions returns the unit dropdown for a unit system.
func UnitOptions(u UnitSystem) []string {
	if u == UnitImperial {
		return ImperialUnits
	}
	return MetricUnits
}
