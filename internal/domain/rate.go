package domain

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// CurrencyCodeLength is the fixed length of a currency code.
const CurrencyCodeLength = 3

// RateTable maps a currency code to units of that currency per one unit of
// the source's anchor currency.
type RateTable map[string]float64

func (t RateTable) Clone() RateTable {
	return maps.Clone(t)
}

// Codes returns the table's currency codes sorted alphabetically.
func (t RateTable) Codes() []string {
	codes := slices.Collect(maps.Keys(t))
	slices.Sort(codes)
	return codes
}

func (t RateTable) Has(code string) bool {
	_, ok := t[code]
	return ok
}

// ConversionResult maps a target currency code to the converted amount.
type ConversionResult map[string]decimal.Decimal

func (r ConversionResult) Clone() ConversionResult {
	return maps.Clone(r)
}
