package domain

import "errors"

var (
	ErrEmptyInput          = errors.New("input must not be empty")
	ErrInvalidFormat       = errors.New("invalid format")
	ErrCurrencyUnavailable = errors.New("currency not available")
	ErrDuplicateTarget     = errors.New("duplicate target currencies are not allowed")
	ErrBaseEqualsTarget    = errors.New("base currency cannot be one of the target currencies")
	ErrTooLow              = errors.New("amount is too low")
	ErrTooHigh             = errors.New("amount is too high")
	ErrInvalidRates        = errors.New("invalid exchange rates")
	ErrCurrenciesNotSet    = errors.New("currencies must be set before converting")
	ErrAmountNotSet        = errors.New("amount must be set before converting")
	ErrInvalidBaseRate     = errors.New("invalid exchange rate for base currency")
	ErrInvalidTargetRate   = errors.New("invalid exchange rate for target currency")
	ErrConversion          = errors.New("conversion failed")

	ErrRateSourceUnavailable = errors.New("exchange rate source unavailable")
)

// ErrorKind is a stable machine-readable name of an error category.
type ErrorKind string

const (
	KindEmptyInput          ErrorKind = "EmptyInput"
	KindInvalidFormat       ErrorKind = "InvalidFormat"
	KindCurrencyUnavailable ErrorKind = "CurrencyUnavailable"
	KindDuplicateTarget     ErrorKind = "DuplicateTarget"
	KindBaseEqualsTarget    ErrorKind = "BaseEqualsTarget"
	KindTooLow              ErrorKind = "TooLow"
	KindTooHigh             ErrorKind = "TooHigh"
	KindInvalidRates        ErrorKind = "InvalidRates"
	KindCurrenciesNotSet    ErrorKind = "CurrenciesNotSet"
	KindAmountNotSet        ErrorKind = "AmountNotSet"
	KindInvalidBaseRate     ErrorKind = "InvalidBaseRate"
	KindInvalidTargetRate   ErrorKind = "InvalidTargetRate"
	KindConversionError     ErrorKind = "ConversionError"
	KindRateSource          ErrorKind = "RateSourceUnavailable"
	KindUnknown             ErrorKind = "Unknown"
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrEmptyInput, KindEmptyInput},
	{ErrInvalidFormat, KindInvalidFormat},
	{ErrCurrencyUnavailable, KindCurrencyUnavailable},
	{ErrDuplicateTarget, KindDuplicateTarget},
	{ErrBaseEqualsTarget, KindBaseEqualsTarget},
	{ErrTooLow, KindTooLow},
	{ErrTooHigh, KindTooHigh},
	{ErrInvalidRates, KindInvalidRates},
	{ErrCurrenciesNotSet, KindCurrenciesNotSet},
	{ErrAmountNotSet, KindAmountNotSet},
	{ErrInvalidBaseRate, KindInvalidBaseRate},
	{ErrInvalidTargetRate, KindInvalidTargetRate},
	{ErrConversion, KindConversionError},
	{ErrRateSourceUnavailable, KindRateSource},
}

// KindOf returns the kind of the first taxonomy error found in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
