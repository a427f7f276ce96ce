package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"
	"fxconvert/internal/history"
	"fxconvert/internal/rate"

	"github.com/sirupsen/logrus"
)

// Session owns the converter and the history log of one user session.
// All access goes through a single lock so every operation is atomic.
type Session struct {
	mu        sync.Mutex
	converter *rate.Converter
	history   *history.Log
	client    adapters.RateClient
	places    int32
	logger    logrus.FieldLogger
}

// RefreshRates fetches the latest rates and replaces the rate table.
// The fetch itself runs without holding the lock.
func (s *Session) RefreshRates(ctx context.Context) (int, error) {
	rates, err := s.client.GetLatestRates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.converter.SetRates(rates); err != nil {
		return 0, fmt.Errorf("failed to apply exchange rates: %w", err)
	}
	count := len(s.converter.Rates())
	s.logger.WithField("currencies", count).Info("Exchange rates updated")
	return count, nil
}

func (s *Session) Status() rate.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.converter.Status()
}

func (s *Session) Rates() domain.RateTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.converter.Rates()
}

// SupportedCurrencies returns the codes of the current rate table, sorted.
func (s *Session) SupportedCurrencies() []string {
	return s.Rates().Codes()
}

// SetCurrencies sets the base and a comma separated list of targets.
func (s *Session) SetCurrencies(base, targets string) error {
	return s.SetCurrencyList(base, rate.SplitTargets(targets))
}

func (s *Session) SetCurrencyList(base string, targets []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.converter.SetCurrencies(base, targets)
}

func (s *Session) SetAmount(amount string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.converter.SetAmount(amount)
}

// Convert runs the conversion and records it in the history.
func (s *Session) Convert() (history.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.converter.Convert()
	if err != nil {
		return history.Entry{}, err
	}

	st := s.converter.Status()
	entry := s.history.Add(history.Entry{
		Base:    st.Base,
		Targets: st.Targets,
		Amount:  st.Amount,
		Result:  result,
	})
	s.logger.WithFields(logrus.Fields{
		"id":      entry.ID,
		"base":    entry.Base,
		"targets": entry.Targets,
		"amount":  entry.Amount.String(),
	}).Debug("Conversion recorded")
	return entry, nil
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.converter.Reset()
}

// History returns the formatted history lines, oldest first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(s.history.All())
}

func (s *Session) HistoryEntries() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

func (s *Session) Statistics() history.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Statistics()
}

func (s *Session) DecimalPlaces() int32 {
	return s.places
}

func NewSession(client adapters.RateClient, limits rate.Limits, maxHistory int, logger logrus.FieldLogger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{
		converter: rate.NewConverter(rate.NewValidator(limits), logger),
		history:   history.NewLog(maxHistory, limits.DecimalPlaces),
		client:    client,
		places:    limits.DecimalPlaces,
		logger:    logger,
	}
}
