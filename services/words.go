package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var amountPattern = regexp.MustCompile(`^(\d{1,12})(\.(\d{1,2}))?$`)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

var scales = []string{"", "Thousand", "Million", "Billion"}

// CurrencyName returns the spoken name of a currency code.
func CurrencyName(currency string) string {
	switch currency {
	case "ETB":
		return "Birr"
	case "USD":
		return "Dollars"
	default:
		return currency
	}
}

// NumberToWords renders a currency amount in English words, e.g.
// 1250.50 USD -> "One Thousand Two Hundred Fifty Dollars and Fifty Cents".
// Amounts with more than 12 integer digits yield "". A zero whole part
// yields "Zero". Negative amounts are rendered with a "Negative" prefix.
// NaN and infinities yield "".
func NumberToWords(amount float64, currency string) string {
	if !IsFinite(amount) {
		return ""
	}
	if amount < 0 {
		if RoundMoney(amount) == 0 {
			return "Zero"
		}
		words := NumberToWords(-amount, currency)
		if words == "" {
			return ""
		}
		return "Negative " + words
	}

	m := amountPattern.FindStringSubmatch(decimal.NewFromFloat(amount).StringFixed(2))
	if m == nil {
		return ""
	}
	whole, _ := strconv.ParseInt(m[1], 10, 64)
	cents, _ := strconv.Atoi(m[3])

	if whole == 0 {
		return "Zero"
	}

	var chunks []string
	for scale := 0; whole > 0; scale++ {
		n := int(whole % 1000)
		whole /= 1000
		if n == 0 {
			continue
		}
		chunk := convertUnder1000(n)
		if scales[scale] != "" {
			chunk += " " + scales[scale]
		}
		chunks = append([]string{chunk}, chunks...)
	}

	words := strings.Join(chunks, " ") + " " + CurrencyName(currency)
	if cents > 0 {
		return words + " and " + convertUnder100(cents) + " Cents"
	}
	return words + " Only"
}

func convertUnder1000(n int) string {
	var parts []string
	if n > 99 {
		parts = append(parts, ones[n/100]+" Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, convertUnder100(n))
	}
	return strings.Join(parts, " ")
}

func convertUnder100(n int) string {
	if n < 20 {
		return ones[n]
	}
	result := tens[n/10]
	if n%10 != 0 {
		result += "-" + ones[n%10]
	}
	return result
}
