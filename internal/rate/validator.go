package rate

import (
	"fmt"
	"regexp"
	"strings"

	"fxconvert/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	DefaultDecimalPlaces = 5
	maxFractionDigits    = 10
)

var (
	DefaultMinAmount = decimal.RequireFromString("0.01")
	DefaultMaxAmount = decimal.NewFromInt(999_999_999)

	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	amountPattern   = regexp.MustCompile(fmt.Sprintf(`^\d+(\.\d{1,%d})?$`, maxFractionDigits))
)

// Limits configures amount validation and rounding.
type Limits struct {
	MinAmount     decimal.Decimal
	MaxAmount     decimal.Decimal
	DecimalPlaces int32
}

func DefaultLimits() Limits {
	return Limits{
		MinAmount:     DefaultMinAmount,
		MaxAmount:     DefaultMaxAmount,
		DecimalPlaces: DefaultDecimalPlaces,
	}
}

// ValidateCurrency trims and uppercases input and checks it is a three letter code.
func ValidateCurrency(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", domain.ErrEmptyInput
	}
	code := strings.ToUpper(trimmed)
	if len(code) != domain.CurrencyCodeLength || !currencyPattern.MatchString(code) {
		return "", fmt.Errorf("%w: currency code must be exactly %d letters, got %q", domain.ErrInvalidFormat, domain.CurrencyCodeLength, trimmed)
	}
	return code, nil
}

// SplitTargets splits a comma separated list into trimmed, uppercased,
// non-empty tokens without validating them.
func SplitTargets(input string) []string {
	tokens := make([]string, 0, 4)
	for _, piece := range strings.Split(input, ",") {
		if t := strings.ToUpper(strings.TrimSpace(piece)); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// ValidateTargets parses a comma separated list of target currency codes.
func ValidateTargets(input string) ([]string, error) {
	return normalizeTargets(SplitTargets(input))
}

func normalizeTargets(tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, domain.ErrEmptyInput
	}

	codes := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		code, err := ValidateCurrency(token)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid target currency %q", domain.ErrInvalidFormat, token)
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	if len(seen) != len(codes) {
		return nil, domain.ErrDuplicateTarget
	}
	return codes, nil
}

// Validator validates amounts against configured limits. Currency checks do
// not depend on configuration and are package functions.
type Validator struct {
	limits Limits
}

func (v Validator) Limits() Limits {
	return v.limits
}

// ValidateAmount parses an unsigned decimal amount, accepting one comma as
// the decimal separator, and rounds it to the configured decimal places.
func (v Validator) ValidateAmount(input string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, domain.ErrEmptyInput
	}

	normalized := strings.Replace(trimmed, ",", ".", 1)
	if !amountPattern.MatchString(normalized) {
		return decimal.Zero, fmt.Errorf("%w: amount must be a positive number with at most %d decimals, got %q", domain.ErrInvalidFormat, maxFractionDigits, trimmed)
	}

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}
	if amount.LessThan(v.limits.MinAmount) {
		return decimal.Zero, fmt.Errorf("%w: must be at least %s", domain.ErrTooLow, v.limits.MinAmount)
	}
	if amount.GreaterThan(v.limits.MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: must not exceed %s", domain.ErrTooHigh, v.limits.MaxAmount)
	}
	return amount.Round(v.limits.DecimalPlaces), nil
}

func NewValidator(limits Limits) Validator {
	return Validator{limits: limits}
}
