package rate

import (
	"fmt"
	"math"
	"slices"

	"fxconvert/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// State is the converter's readiness, derived from what has been configured.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateRatesLoaded   State = "rates_loaded"
	StateCurrenciesSet State = "currencies_set"
	StateReady         State = "ready"
)

// Status is a read-only snapshot of the converter.
type Status struct {
	Base     string
	Targets  []string
	Amount   decimal.Decimal
	HasRates bool
	IsReady  bool
	State    State
}

// Converter holds the rate table and the conversion request being built.
// It is not safe for concurrent use; callers confine it to a single owner.
type Converter struct {
	validator Validator
	logger    logrus.FieldLogger

	rates   domain.RateTable
	base    string
	targets []string
	amount  decimal.Decimal
}

// SetRates replaces the rate table. Entries with a malformed code or a
// non-positive, NaN or infinite rate are dropped with a warning.
func (c *Converter) SetRates(rates map[string]float64) error {
	if len(rates) == 0 {
		return fmt.Errorf("%w: no exchange rates provided", domain.ErrInvalidRates)
	}

	table := make(domain.RateTable, len(rates))
	for code, value := range rates {
		if !currencyPattern.MatchString(code) {
			c.logger.WithField("currency", code).Warn("Dropping rate with malformed currency code")
			continue
		}
		if !validRate(value) {
			c.logger.WithFields(logrus.Fields{"currency": code, "rate": value}).Warn("Dropping invalid rate")
			continue
		}
		table[code] = value
	}
	if len(table) == 0 {
		return fmt.Errorf("%w: all %d exchange rates are invalid", domain.ErrInvalidRates, len(rates))
	}

	c.rates = table
	return nil
}

// SetCurrencies validates base and targets against the current rate table
// and replaces both only if every check passes.
func (c *Converter) SetCurrencies(base string, targets []string) error {
	baseCode, err := ValidateCurrency(base)
	if err != nil {
		return fmt.Errorf("invalid base currency: %w", err)
	}
	if !c.rates.Has(baseCode) {
		return fmt.Errorf("%w: base currency %s", domain.ErrCurrencyUnavailable, baseCode)
	}

	if len(targets) == 0 {
		return fmt.Errorf("%w: at least one target currency is required", domain.ErrEmptyInput)
	}
	codes := make([]string, 0, len(targets))
	for _, target := range targets {
		code, err := ValidateCurrency(target)
		if err != nil {
			return fmt.Errorf("invalid target currency %q: %w", target, err)
		}
		if !c.rates.Has(code) {
			return fmt.Errorf("%w: target currency %s", domain.ErrCurrencyUnavailable, code)
		}
		codes = append(codes, code)
	}

	unique := slices.Clone(codes)
	slices.Sort(unique)
	if len(slices.Compact(unique)) != len(codes) {
		return domain.ErrDuplicateTarget
	}
	if slices.Contains(codes, baseCode) {
		return fmt.Errorf("%w: %s", domain.ErrBaseEqualsTarget, baseCode)
	}

	c.base = baseCode
	c.targets = codes
	return nil
}

// SetAmount validates and stores the amount; on failure the previous amount is kept.
func (c *Converter) SetAmount(input string) error {
	amount, err := c.validator.ValidateAmount(input)
	if err != nil {
		return err
	}
	c.amount = amount
	return nil
}

// Convert converts the amount from base into every target currency.
// Either all targets are converted or an error is returned.
func (c *Converter) Convert() (domain.ConversionResult, error) {
	if c.base == "" || len(c.targets) == 0 {
		return nil, domain.ErrCurrenciesNotSet
	}
	if !c.amount.IsPositive() {
		return nil, domain.ErrAmountNotSet
	}

	baseRate, ok := c.rates[c.base]
	if !ok || !validRate(baseRate) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidBaseRate, c.base)
	}

	amount := c.amount.InexactFloat64()
	places := c.validator.limits.DecimalPlaces
	result := make(domain.ConversionResult, len(c.targets))
	for _, target := range c.targets {
		targetRate, ok := c.rates[target]
		if !ok || !validRate(targetRate) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTargetRate, target)
		}

		converted := (amount / baseRate) * targetRate
		if math.IsNaN(converted) || math.IsInf(converted, 0) {
			return nil, fmt.Errorf("%w: %s to %s produced a non-finite value", domain.ErrConversion, c.base, target)
		}
		result[target] = decimal.NewFromFloat(converted).Round(places)
	}
	return result, nil
}

func (c *Converter) Status() Status {
	hasRates := len(c.rates) > 0
	st := Status{
		Base:     c.base,
		Targets:  slices.Clone(c.targets),
		Amount:   c.amount,
		HasRates: hasRates,
	}
	switch {
	case !hasRates:
		st.State = StateUninitialized
	case c.base == "" || len(c.targets) == 0:
		st.State = StateRatesLoaded
	case !c.amount.IsPositive():
		st.State = StateCurrenciesSet
	default:
		st.State = StateReady
		st.IsReady = true
	}
	return st
}

// Rates returns a copy of the current rate table.
func (c *Converter) Rates() domain.RateTable {
	return c.rates.Clone()
}

// Reset clears base, targets and amount. The rate table is kept.
func (c *Converter) Reset() {
	c.base = ""
	c.targets = nil
	c.amount = decimal.Zero
}

func validRate(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func NewConverter(validator Validator, logger logrus.FieldLogger) *Converter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Converter{validator: validator, logger: logger}
}
