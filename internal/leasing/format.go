package leasing

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// GroupDigits renders an integer with comma thousands separators, e.g. 12000 => "12,000".
func GroupDigits(n int64) string {
	return amountPrinter.Sprintf("%d", n)
}

// FormatAmount prefixes the grouped amount with the currency label: FormatAmount(2000, "AED") => "AED 2,000".
func FormatAmount(amount int64, currency string) string {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return GroupDigits(amount)
	}
	return currency + " " + GroupDigits(amount)
}
