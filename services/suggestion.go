package services

import (
	"regexp"
	"strconv"
	"strings"
)

var suggestionNumber = regexp.MustCompile(`[0-9,]+`)

// ParseRateSuggestion takes the first comma-grouped number of a suggested
// rate range such as "3,500 - 4,200".
func ParseRateSuggestion(text string) (float64, bool) {
	for _, m := range suggestionNumber.FindAllString(text, -1) {
		digits := strings.ReplaceAll(m, ",", "")
		if digits == "" {
			continue
		}
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
