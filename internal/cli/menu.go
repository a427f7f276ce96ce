package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fxconvert/internal/domain"
	"fxconvert/internal/history"
	"fxconvert/internal/rate"
)

const (
	optionCurrencies = iota + 1
	optionRates
	optionSetCurrencies
	optionSetAmount
	optionConvert
	optionHistory
	optionExit
)

const (
	currenciesPerRow = 5
	rateDecimals     = 6
	wideRule         = 70
	narrowRule       = 50
)

var menuOptions = []string{
	"Show available currencies",
	"Show exchange rates",
	"Set base and target currencies",
	"Set amount",
	"Convert",
	"Show history",
	"Exit",
}

// Session is the conversion session driven by the menu.
type Session interface {
	Status() rate.Status
	Rates() domain.RateTable
	SupportedCurrencies() []string
	SetCurrencies(base, targets string) error
	SetAmount(amount string) error
	Convert() (history.Entry, error)
	History() []string
	Statistics() history.Statistics
	DecimalPlaces() int32
}

type Menu struct {
	session Session
	in      io.Reader
	out     io.Writer
	prompts bool

	lines <-chan string
}

// ValidateMenuChoice parses a menu option number.
func ValidateMenuChoice(input string) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, domain.ErrEmptyInput
	}
	choice, err := strconv.Atoi(trimmed)
	if err != nil || choice < optionCurrencies || choice > optionExit {
		return 0, fmt.Errorf("%w: choose an option between %d and %d", domain.ErrInvalidFormat, optionCurrencies, optionExit)
	}
	return choice, nil
}

// Run shows the menu until the user exits, input ends or ctx is canceled.
func (m *Menu) Run(ctx context.Context) error {
	m.lines = readLines(ctx, m.in)

	for {
		m.printStatus()
		m.printOptions()

		input, ok := m.ask(ctx, "Choose an option: ")
		if !ok {
			m.exit()
			return ctx.Err()
		}

		choice, err := ValidateMenuChoice(input)
		if err != nil {
			m.printError(err)
			continue
		}

		switch choice {
		case optionCurrencies:
			m.showCurrencies()
		case optionRates:
			m.showRates()
		case optionSetCurrencies:
			m.setCurrencies(ctx)
		case optionSetAmount:
			m.setAmount(ctx)
		case optionConvert:
			m.convert()
		case optionHistory:
			m.showHistory()
		case optionExit:
			m.exit()
			return nil
		}
	}
}

func (m *Menu) ask(ctx context.Context, label string) (string, bool) {
	if m.prompts {
		m.printf("%s", label)
	}
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-m.lines:
		return line, ok
	}
}

func (m *Menu) printStatus() {
	st := m.session.Status()
	base, targets, amount := "-", "-", "-"
	if st.Base != "" {
		base = st.Base
	}
	if len(st.Targets) > 0 {
		targets = strings.Join(st.Targets, ", ")
	}
	if st.Amount.IsPositive() {
		amount = st.Amount.String()
	}
	ready := "no"
	if st.IsReady {
		ready = "yes"
	}

	m.rule(narrowRule)
	m.printf(" Base: %s | Targets: %s | Amount: %s | Ready: %s\n", base, targets, amount, ready)
	m.rule(narrowRule)
}

func (m *Menu) printOptions() {
	for i, option := range menuOptions {
		m.printf(" %d. %s\n", i+1, option)
	}
}

func (m *Menu) showCurrencies() {
	codes := m.session.SupportedCurrencies()
	m.printf("Available currencies\n")
	m.rule(narrowRule)
	for i, code := range codes {
		m.printf(" %-6s", code)
		if (i+1)%currenciesPerRow == 0 || i == len(codes)-1 {
			m.printf("\n")
		}
	}
	m.rule(narrowRule)
	m.printf("Total: %d currencies\n", len(codes))
}

func (m *Menu) showRates() {
	rates := m.session.Rates()
	m.printf("Exchange rates\n")
	m.rule(narrowRule)
	for _, code := range rates.Codes() {
		m.printf(" %-6s %18.*f\n", code, rateDecimals, rates[code])
	}
	m.rule(narrowRule)
	m.printf("Total: %d rates\n", len(rates))
}

func (m *Menu) setCurrencies(ctx context.Context) {
	base, ok := m.ask(ctx, "Base currency (e.g. USD): ")
	if !ok {
		return
	}
	targets, ok := m.ask(ctx, "Target currencies, comma separated (e.g. EUR,JPY): ")
	if !ok {
		return
	}

	if err := m.session.SetCurrencies(base, targets); err != nil {
		m.printError(err)
		return
	}
	st := m.session.Status()
	m.printf("Currencies set: %s → %s\n", st.Base, strings.Join(st.Targets, ", "))
}

func (m *Menu) setAmount(ctx context.Context) {
	input, ok := m.ask(ctx, "Amount: ")
	if !ok {
		return
	}

	if err := m.session.SetAmount(input); err != nil {
		m.printError(err)
		return
	}
	m.printf("Amount set: %s\n", m.session.Status().Amount)
}

func (m *Menu) convert() {
	entry, err := m.session.Convert()
	if err != nil {
		m.printError(err)
		return
	}

	places := m.session.DecimalPlaces()
	m.printf("Conversion result\n")
	m.rule(narrowRule)
	m.printf("Original amount: %s %s\n", entry.Amount, entry.Base)
	m.rule(narrowRule)
	for _, target := range entry.Targets {
		m.printf(" %-8s : %20s\n", target, entry.Result[target].StringFixed(places))
	}
	m.rule(narrowRule)
	m.printf("Conversion saved to history\n")
}

func (m *Menu) showHistory() {
	m.printf("Conversion history\n")
	m.rule(wideRule)

	lines := m.session.History()
	if len(lines) == 0 {
		m.printf("No conversions yet\n")
		return
	}
	for i, line := range lines {
		m.printf("%3d. %s\n", i+1, line)
	}
	m.rule(wideRule)

	stats := m.session.Statistics()
	m.printf("Statistics\n")
	m.printf("   Total conversions: %d\n", stats.TotalEntries)
	m.printf("   Most used base currency: %s\n", orNA(stats.MostUsedBaseCurrency))
	m.printf("   Most used target currency: %s\n", orNA(stats.MostUsedTargetCurrency))
	m.printf("   Average amount: %s\n", stats.AverageAmount.StringFixed(m.session.DecimalPlaces()))
	if stats.DateRange != nil {
		m.printf("   From %s to %s\n",
			stats.DateRange.From.Format("2006-01-02 15:04:05"),
			stats.DateRange.To.Format("2006-01-02 15:04:05"))
	}
}

func (m *Menu) exit() {
	m.printf("\nConversions this session: %d\n", m.session.Statistics().TotalEntries)
	m.printf("Goodbye!\n")
}

func (m *Menu) printError(err error) {
	m.printf("Error: %v\n", err)
}

func (m *Menu) rule(width int) {
	m.printf("%s\n", strings.Repeat("═", width))
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// readLines feeds input lines to a channel that is closed at EOF.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// NewMenu creates a menu reading from in and writing to out. Prompts are
// printed only when prompts is true, typically when in is a terminal.
func NewMenu(session Session, in io.Reader, out io.Writer, prompts bool) *Menu {
	return &Menu{session: session, in: in, out: out, prompts: prompts}
}
