package internal

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency formats money amounts for one currency and locale
type Currency struct {
	Code    string // "USD", "EUR", "SEK"
	symbol  string
	prefix  bool
	printer *message.Printer
}

// symbolOverrides replaces x/text symbols that read badly in a terminal
var symbolOverrides = map[string]string{
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"ISK": "kr",
}

// prefixCurrencies put the symbol before the amount. x/text does not expose CLDR
// symbol placement, so this is kept by hand.
var prefixCurrencies = map[string]bool{
	"USD": true, "GBP": true, "JPY": true, "CAD": true, "AUD": true,
	"MXN": true, "HKD": true, "SGD": true, "NZD": true, "ZAR": true, "INR": true,
}

// homeLocale is the formatting locale used for a currency when the system
// locale is unknown
var homeLocale = map[string]language.Tag{
	"USD": language.AmericanEnglish,
	"EUR": language.German,
	"GBP": language.BritishEnglish,
	"SEK": language.Swedish,
	"NOK": language.Norwegian,
	"DKK": language.Danish,
	"CHF": language.German,
	"JPY": language.Japanese,
	"CAD": language.CanadianFrench,
	"AUD": language.MustParse("en-AU"),
	"NZD": language.MustParse("en-NZ"),
	"INR": language.MustParse("en-IN"),
	"BRL": language.BrazilianPortuguese,
	"PLN": language.Polish,
	"CZK": language.Czech,
}

// GetCurrency returns the Currency for a code, formatted in the currency's home
// locale (English for codes without one). Unknown codes use the code as symbol.
func GetCurrency(code string) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	tag, ok := homeLocale[code]
	if !ok {
		tag = language.English
	}
	return GetCurrencyWithLocale(code, tag)
}

// GetCurrencyWithLocale returns a Currency formatted with a specific locale
func GetCurrencyWithLocale(code string, tag language.Tag) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	printer := message.NewPrinter(tag)

	symbol, ok := symbolOverrides[code]
	if !ok {
		if unit, err := currency.ParseISO(code); err == nil {
			symbol = printer.Sprint(currency.NarrowSymbol(unit))
		} else {
			symbol = code
		}
	}

	return Currency{
		Code:    code,
		symbol:  symbol,
		prefix:  prefixCurrencies[code],
		printer: printer,
	}
}

// DetectSystemCurrency derives a currency and formatting locale from the OS
// locale, e.g. "sv_SE.UTF-8" gives SEK formatted as sv-SE. ok is false when
// nothing usable is found.
func DetectSystemCurrency() (Currency, bool) {
	locale := detectSystemLocale()
	if locale == "" {
		return Currency{}, false
	}
	code, tag := parseCurrencyFromLocale(locale)
	if code == "" {
		return Currency{}, false
	}
	return GetCurrencyWithLocale(code, tag), true
}

// ResolveCurrency picks the configured currency, then the system one, then USD
func ResolveCurrency(code string) Currency {
	if strings.TrimSpace(code) != "" {
		return GetCurrency(code)
	}
	if c, ok := DetectSystemCurrency(); ok {
		return c
	}
	return GetCurrency("USD")
}

// parseCurrencyFromLocale extracts a currency code and language tag from a
// POSIX or BCP 47 locale string
func parseCurrencyFromLocale(locale string) (string, language.Tag) {
	base := locale
	if idx := strings.IndexAny(base, ".@"); idx != -1 {
		base = base[:idx]
	}

	tag, err := language.Parse(strings.Replace(base, "_", "-", 1))
	if err != nil {
		return "", language.Und
	}

	_, _, region := tag.Raw()
	if region.String() == "" || region.String() == "ZZ" {
		return "", language.Und
	}

	unit, ok := currency.FromRegion(region)
	if !ok {
		return "", language.Und
	}
	return unit.String(), tag
}

// Format renders an amount with two decimals and the currency symbol
func (c Currency) Format(amount decimal.Decimal) string {
	printer := c.printer
	if printer == nil {
		printer = message.NewPrinter(language.English)
	}
	formatted := printer.Sprint(number.Decimal(
		amount.Round(2).InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))

	if c.symbol == "" {
		return formatted
	}
	if c.prefix {
		return c.symbol + formatted
	}
	return formatted + " " + c.symbol
}
