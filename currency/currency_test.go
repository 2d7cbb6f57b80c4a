package currency

import "testing"

func TestConvertToUSD_KnownRates(t *testing.T) {
	cases := []struct {
		amount float64
		code   string
		want   float64
	}{
		{100, "USD", 100},
		{100, "EUR", 109},
		{100, "GBP", 127},
		{25000, "INR", 300},
		{1000, "AUD", 660},
	}
	for _, c := range cases {
		if got := ConvertToUSD(c.amount, c.code); got != c.want {
			t.Errorf("ConvertToUSD(%v, %q) = %v, want %v", c.amount, c.code, got, c.want)
		}
	}
}

func TestConvertToUSD_UnknownCodePassesThrough(t *testing.T) {
	if got := ConvertToUSD(250, "XYZ"); got != 250 {
		t.Errorf("ConvertToUSD(250, XYZ) = %v, want 250", got)
	}
	if got := ConvertToUSD(99.6, "XYZ"); got != 100 {
		t.Errorf("ConvertToUSD(99.6, XYZ) = %v, want 100 (rounded)", got)
	}
}

func TestDetectCurrency(t *testing.T) {
	cases := map[string]string{
		"$":  "USD",
		"€":  "EUR",
		"£":  "GBP",
		"₹":  "INR",
		"A$": "AUD",
		"?":  "USD", // unmapped symbol defaults to USD
		"":   "USD",
	}
	for sym, want := range cases {
		if got := DetectCurrency(sym); got != want {
			t.Errorf("DetectCurrency(%q) = %q, want %q", sym, got, want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		text     string
		amount   float64
		currency string
	}{
		{"₹25,000.00 INR", 25000, "INR"},
		{"$1,500", 1500, "USD"},
		{"€750.50", 750.5, "EUR"},
		{"250 GBP", 250, "GBP"},
		{"A$3,000", 3000, "AUD"},
		{"₹5000", 5000, "INR"},
		{"garbage", 0, "USD"},
		{"", 0, "USD"},
	}
	for _, c := range cases {
		amount, code := ParseAmount(c.text)
		if amount != c.amount || code != c.currency {
			t.Errorf("ParseAmount(%q) = (%v, %q), want (%v, %q)",
				c.text, amount, code, c.amount, c.currency)
		}
	}
}

func TestParseAmount_ExplicitCodeWinsOverSymbol(t *testing.T) {
	amount, code := ParseAmount("$2,000 CAD")
	if amount != 2000 || code != "CAD" {
		t.Errorf("ParseAmount($2,000 CAD) = (%v, %q), want (2000, CAD)", amount, code)
	}
}
