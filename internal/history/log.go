package history

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"fxconvert/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultMaxEntries = 1000

// Entry is one recorded conversion.
type Entry struct {
	ID        string                  `json:"id"`
	Timestamp time.Time               `json:"timestamp"`
	Base      string                  `json:"base"`
	Targets   []string                `json:"targets"`
	Amount    decimal.Decimal         `json:"amount"`
	Result    domain.ConversionResult `json:"result"`
}

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type Statistics struct {
	TotalEntries           int             `json:"total_entries"`
	MostUsedBaseCurrency   string          `json:"most_used_base_currency,omitempty"`
	MostUsedTargetCurrency string          `json:"most_used_target_currency,omitempty"`
	AverageAmount          decimal.Decimal `json:"average_amount"`
	DateRange              *DateRange      `json:"date_range"`
}

// Log is a capped, append-only record of conversions. Once the cap is
// reached the oldest entries are evicted first.
// Log is not safe for concurrent use.
type Log struct {
	entries       []Entry
	maxEntries    int
	decimalPlaces int32

	now   func() time.Time
	newID func() string
}

// Add stamps the entry with the current time and a fresh id and appends it.
func (l *Log) Add(e Entry) Entry {
	e.ID = l.newID()
	e.Timestamp = l.now()
	e.Targets = slices.Clone(e.Targets)
	e.Result = e.Result.Clone()

	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.maxEntries; over > 0 {
		l.entries = slices.Delete(l.entries, 0, over)
	}
	return e
}

// All yields one formatted line per entry, oldest first.
func (l *Log) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range l.entries {
			if !yield(l.format(e)) {
				return
			}
		}
	}
}

// Entries returns a copy of the recorded entries, oldest first.
func (l *Log) Entries() []Entry {
	return slices.Clone(l.entries)
}

func (l *Log) Len() int {
	return len(l.entries)
}

// Statistics summarizes the log. An empty log yields zero values.
func (l *Log) Statistics() Statistics {
	if len(l.entries) == 0 {
		return Statistics{AverageAmount: decimal.Zero}
	}

	bases := newCounter()
	targets := newCounter()
	total := decimal.Zero
	from, to := l.entries[0].Timestamp, l.entries[0].Timestamp

	for _, e := range l.entries {
		bases.add(e.Base)
		for _, t := range e.Targets {
			targets.add(t)
		}
		total = total.Add(e.Amount)
		if e.Timestamp.Before(from) {
			from = e.Timestamp
		}
		if e.Timestamp.After(to) {
			to = e.Timestamp
		}
	}

	return Statistics{
		TotalEntries:           len(l.entries),
		MostUsedBaseCurrency:   bases.top(),
		MostUsedTargetCurrency: targets.top(),
		AverageAmount:          total.Div(decimal.NewFromInt(int64(len(l.entries)))).Round(l.decimalPlaces),
		DateRange:              &DateRange{From: from, To: to},
	}
}

func (l *Log) format(e Entry) string {
	results := make([]string, 0, len(e.Targets))
	for _, t := range e.Targets {
		if v, ok := e.Result[t]; ok {
			results = append(results, fmt.Sprintf("%s: %s", t, v.StringFixed(l.decimalPlaces)))
		}
	}
	return fmt.Sprintf("%s | %s %s → %s = %s",
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Amount.String(),
		e.Base,
		strings.Join(e.Targets, ", "),
		strings.Join(results, ", "),
	)
}

// counter counts occurrences and remembers first appearance order for ties.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) top() string {
	best, bestCount := "", 0
	for _, key := range c.order {
		if c.counts[key] > bestCount {
			best, bestCount = key, c.counts[key]
		}
	}
	return best
}

// NewLog creates a log holding at most maxEntries entries; non-positive
// values fall back to DefaultMaxEntries.
func NewLog(maxEntries int, decimalPlaces int32) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Log{
		maxEntries:    maxEntries,
		decimalPlaces: decimalPlaces,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}
