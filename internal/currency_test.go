package internal

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestGetCurrency_CaseInsensitive(t *testing.T) {
	for _, code := range []string{"sek", "Sek", "SEK", " seK "} {
		if c := GetCurrency(code); c.Code != "SEK" {
			t.Errorf("GetCurrency(%q).Code = %q, want SEK", code, c.Code)
		}
	}
}

func TestCurrency_Format(t *testing.T) {
	nbsp := "\u00a0" // x/text uses a non-breaking space as Swedish thousands separator

	tests := []struct {
		name   string
		code   string
		amount string
		want   string
	}{
		{"USD thousands", "USD", "1234.56", "$1,234.56"},
		{"USD rounds to cents", "USD", "43.3333", "$43.33"},
		{"USD pads decimals", "USD", "10", "$10.00"},
		{"SEK suffix", "SEK", "1234.5", "1" + nbsp + "234,50 kr"},
		{"EUR german grouping", "EUR", "1234.56", "1.234,56 €"},
		{"unknown code is its own symbol", "XYZ", "1234.5", "1,234.50 XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetCurrency(tt.code).Format(decimal.RequireFromString(tt.amount))
			if got != tt.want {
				t.Errorf("Format(%s) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestCurrency_FormatZeroValue(t *testing.T) {
	var c Currency
	if got := c.Format(decimal.RequireFromString("5")); got != "5.00" {
		t.Errorf("zero Currency Format = %q, want 5.00", got)
	}
}

func TestParseCurrencyFromLocale(t *testing.T) {
	tests := []struct {
		locale       string
		wantCurrency string
		wantTag      string
	}{
		{"sv_SE.UTF-8", "SEK", "sv-SE"},
		{"en_US.UTF-8", "USD", "en-US"},
		{"pt_BR.UTF-8", "BRL", "pt-BR"},
		{"de_DE", "EUR", "de-DE"},
		{"en_GB.UTF-8", "GBP", "en-GB"},
		{"de_DE@euro", "EUR", "de-DE"},
		{"C", "", ""},
		{"en", "", ""}, // no region
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			gotCurrency, gotTag := parseCurrencyFromLocale(tt.locale)
			if gotCurrency != tt.wantCurrency {
				t.Errorf("parseCurrencyFromLocale(%q) currency = %q, want %q", tt.locale, gotCurrency, tt.wantCurrency)
			}
			if tt.wantTag != "" && gotTag.String() != tt.wantTag {
				t.Errorf("parseCurrencyFromLocale(%q) tag = %q, want %q", tt.locale, gotTag.String(), tt.wantTag)
			}
		})
	}
}

func TestLocaleFromEnv(t *testing.T) {
	tests := []struct {
		name                string
		monetary, all, lang string
		want                string
	}{
		{"LC_MONETARY wins", "sv_SE.UTF-8", "en_US.UTF-8", "de_DE.UTF-8", "sv_SE.UTF-8"},
		{"LC_ALL before LANG", "", "en_GB.UTF-8", "de_DE.UTF-8", "en_GB.UTF-8"},
		{"LANG last", "", "", "pt_BR.UTF-8", "pt_BR.UTF-8"},
		{"C locales skipped", "C", "POSIX", "C.UTF-8", ""},
		{"nothing set", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LC_MONETARY", tt.monetary)
			t.Setenv("LC_ALL", tt.all)
			t.Setenv("LANG", tt.lang)
			if got := localeFromEnv(); got != tt.want {
				t.Errorf("localeFromEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCurrency_Configured(t *testing.T) {
	if c := ResolveCurrency("eur"); c.Code != "EUR" {
		t.Errorf("ResolveCurrency(eur).Code = %q", c.Code)
	}
	if c := ResolveCurrency(""); c.Code == "" {
		t.Error("ResolveCurrency(\"\") returned no currency")
	}
}
