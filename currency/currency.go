// Package currency normalizes the mix of symbols and ISO codes the
// marketplace uses. Parsing never fails: unknown input degrades to a zero
// amount in USD so downstream scoring can proceed.
package currency

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// usdRates maps ISO codes to their fixed USD conversion rate.
// Unknown codes are treated as USD (rate 1).
var usdRates = map[string]float64{
	"USD": 1,
	"EUR": 1.09,
	"GBP": 1.27,
	"AUD": 0.66,
	"CAD": 0.74,
	"SGD": 0.74,
	"NZD": 0.61,
	"INR": 0.012,
}

// symbolCodes maps currency glyphs to ISO codes.
var symbolCodes = map[string]string{
	"$":   "USD",
	"€":   "EUR",
	"£":   "GBP",
	"₹":   "INR",
	"A$":  "AUD",
	"C$":  "CAD",
	"S$":  "SGD",
	"NZ$": "NZD",
}

// amountRe captures an optional symbol, a comma-grouped numeric literal with
// an optional decimal part, and an optional trailing ISO code.
var amountRe = regexp.MustCompile(`(NZ\$|A\$|C\$|S\$|[$€£₹])?\s*([\d,]+(?:\.\d+)?)\s*([A-Z]{3})?`)

// ConvertToUSD converts amount from the given ISO code using the fixed rate
// table. Unknown codes pass through at rate 1.
func ConvertToUSD(amount float64, code string) float64 {
	rate, ok := usdRates[strings.ToUpper(code)]
	if !ok {
		rate = 1
	}
	return math.Round(amount * rate)
}

// DetectCurrency maps a currency glyph to an ISO code, defaulting to USD.
func DetectCurrency(symbol string) string {
	if code, ok := symbolCodes[strings.TrimSpace(symbol)]; ok {
		return code
	}
	return "USD"
}

// ParseAmount extracts the first amount/currency pair from free text.
// An explicit trailing ISO code wins over the symbol. No match yields
// {0, "USD"}.
func ParseAmount(text string) (float64, string) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return 0, "USD"
	}

	raw := strings.ReplaceAll(m[2], ",", "")
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, "USD"
	}

	code := "USD"
	switch {
	case m[3] != "":
		code = strings.ToUpper(m[3])
	case m[1] != "":
		code = DetectCurrency(m[1])
	}
	return amount, code
}
