package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fxconvert/internal/domain"
	"fxconvert/internal/history"
	"fxconvert/internal/rate"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSession struct{ mock.Mock }

func (m *MockSession) RefreshRates(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSession) Status() rate.Status {
	args := m.Called()
	st, _ := args.Get(0).(rate.Status)
	return st
}

func (m *MockSession) Rates() domain.RateTable {
	args := m.Called()
	rates, _ := args.Get(0).(domain.RateTable)
	return rates
}

func (m *MockSession) SupportedCurrencies() []string {
	args := m.Called()
	codes, _ := args.Get(0).([]string)
	return codes
}

func (m *MockSession) SetCurrencyList(base string, targets []string) error {
	args := m.Called(base, targets)
	return args.Error(0)
}

func (m *MockSession) SetAmount(amount string) error {
	args := m.Called(amount)
	return args.Error(0)
}

func (m *MockSession) Convert() (history.Entry, error) {
	args := m.Called()
	e, _ := args.Get(0).(history.Entry)
	return e, args.Error(1)
}

func (m *MockSession) Reset() {
	m.Called()
}

func (m *MockSession) History() []string {
	args := m.Called()
	lines, _ := args.Get(0).([]string)
	return lines
}

func (m *MockSession) HistoryEntries() []history.Entry {
	args := m.Called()
	entries, _ := args.Get(0).([]history.Entry)
	return entries
}

func (m *MockSession) Statistics() history.Statistics {
	args := m.Called()
	stats, _ := args.Get(0).(history.Statistics)
	return stats
}

func (m *MockSession) DecimalPlaces() int32 {
	return 5
}

type errorJSON struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func newTestHandler() (*Handler, *MockSession) {
	logger, _ := logtest.NewNullLogger()
	session := new(MockSession)
	return NewRateHandler(session, logger), session
}

func readyStatus() rate.Status {
	return rate.Status{
		Base:     "USD",
		Targets:  []string{"EUR", "JPY"},
		Amount:   decimal.NewFromInt(100),
		HasRates: true,
		IsReady:  true,
		State:    rate.StateReady,
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorJSON {
	t.Helper()
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var ej errorJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ej))
	return ej
}

// --- Status ---

func TestHandler_GetStatus(t *testing.T) {
	h, session := newTestHandler()
	session.On("Status").Return(readyStatus()).Once()

	rr := httptest.NewRecorder()
	h.GetStatus(rr, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var res StatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, "USD", res.Base)
	require.Equal(t, []string{"EUR", "JPY"}, res.Targets)
	require.Equal(t, "100", res.Amount)
	require.True(t, res.IsReady)
	require.Equal(t, "ready", res.State)
	session.AssertExpectations(t)
}

func TestHandler_GetStatus_Uninitialized(t *testing.T) {
	h, session := newTestHandler()
	session.On("Status").Return(rate.Status{State: rate.StateUninitialized}).Once()

	rr := httptest.NewRecorder()
	h.GetStatus(rr, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"targets":[],"has_rates":false,"is_ready":false,"state":"uninitialized"}`, rr.Body.String())
}

func TestHandler_Reset(t *testing.T) {
	h, session := newTestHandler()
	session.On("Reset").Return().Once()
	session.On("Status").Return(rate.Status{HasRates: true, State: rate.StateRatesLoaded}).Once()

	rr := httptest.NewRecorder()
	h.Reset(rr, httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"state":"rates_loaded"`)
	session.AssertExpectations(t)
}

// --- Rates ---

func TestHandler_GetRates(t *testing.T) {
	h, session := newTestHandler()
	session.On("Rates").Return(domain.RateTable{"USD": 1, "EUR": 0.85}).Once()

	rr := httptest.NewRecorder()
	h.GetRates(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var res RatesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, 2, res.Count)
	require.InDelta(t, 0.85, res.Rates["EUR"], 1e-9)
}

func TestHandler_RefreshRates_Success(t *testing.T) {
	h, session := newTestHandler()
	session.On("RefreshRates", mock.Anything).Return(32, nil).Once()

	rr := httptest.NewRecorder()
	h.RefreshRates(rr, httptest.NewRequest(http.MethodPost, "/api/v1/rates/refresh", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"count":32}`, rr.Body.String())
	session.AssertExpectations(t)
}

func TestHandler_RefreshRates_SourceError(t *testing.T) {
	h, session := newTestHandler()
	err := fmt.Errorf("failed to fetch exchange rates: %w: request limit exceeded", domain.ErrRateSourceUnavailable)
	session.On("RefreshRates", mock.Anything).Return(0, err).Once()

	rr := httptest.NewRecorder()
	h.RefreshRates(rr, httptest.NewRequest(http.MethodPost, "/api/v1/rates/refresh", nil))

	require.Equal(t, http.StatusBadGateway, rr.Code)
	ej := decodeError(t, rr)
	require.Equal(t, "RateSourceUnavailable", ej.Kind)
	require.Contains(t, ej.Error, "request limit exceeded")
}

func TestHandler_GetCurrencies(t *testing.T) {
	h, session := newTestHandler()
	session.On("SupportedCurrencies").Return([]string{"EUR", "USD"}).Once()

	rr := httptest.NewRecorder()
	h.GetCurrencies(rr, httptest.NewRequest(http.MethodGet, "/api/v1/currencies", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"codes":["EUR","USD"]}`, rr.Body.String())
}

// --- SetCurrencies ---

func TestHandler_SetCurrencies_Success(t *testing.T) {
	h, session := newTestHandler()
	session.On("SetCurrencyList", "usd", []string{"eur", "jpy"}).Return(nil).Once()
	session.On("Status").Return(readyStatus()).Once()

	body := bytes.NewBufferString(`{"base":"usd","targets":["eur","jpy"]}`)
	rr := httptest.NewRecorder()
	h.SetCurrencies(rr, httptest.NewRequest(http.MethodPut, "/api/v1/currencies", body))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"base":"USD"`)
	session.AssertExpectations(t)
}

func TestHandler_SetCurrencies_DomainErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"empty", domain.ErrEmptyInput, http.StatusBadRequest, "EmptyInput"},
		{"format", fmt.Errorf("invalid base currency: %w: bad", domain.ErrInvalidFormat), http.StatusBadRequest, "InvalidFormat"},
		{"duplicate", domain.ErrDuplicateTarget, http.StatusBadRequest, "DuplicateTarget"},
		{"base equals target", domain.ErrBaseEqualsTarget, http.StatusBadRequest, "BaseEqualsTarget"},
		{"unavailable", fmt.Errorf("%w: target currency CHF", domain.ErrCurrencyUnavailable), http.StatusUnprocessableEntity, "CurrencyUnavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, session := newTestHandler()
			session.On("SetCurrencyList", "USD", []string{"CHF"}).Return(tc.err).Once()

			body := bytes.NewBufferString(`{"base":"USD","targets":["CHF"]}`)
			rr := httptest.NewRecorder()
			h.SetCurrencies(rr, httptest.NewRequest(http.MethodPut, "/api/v1/currencies", body))

			require.Equal(t, tc.wantCode, rr.Code)
			ej := decodeError(t, rr)
			require.Equal(t, tc.wantKind, ej.Kind)
			require.Equal(t, tc.err.Error(), ej.Error)
			session.AssertNotCalled(t, "Status")
		})
	}
}

func TestHandler_SetCurrencies_InvalidBody(t *testing.T) {
	bodies := []string{
		`{`,
		`{"base":"USD","targets":"EUR"}`,
		`{"base":"USD","targets":["EUR"],"extra":true}`,
		`{"base":"` + strings.Repeat("A", 2000) + `"}`,
	}

	for _, raw := range bodies {
		h, session := newTestHandler()
		rr := httptest.NewRecorder()
		h.SetCurrencies(rr, httptest.NewRequest(http.MethodPut, "/api/v1/currencies", bytes.NewBufferString(raw)))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, "invalid request body", decodeError(t, rr).Error)
		session.AssertNotCalled(t, "SetCurrencyList", mock.Anything, mock.Anything)
	}
}

// --- SetAmount ---

func TestHandler_SetAmount_Success(t *testing.T) {
	h, session := newTestHandler()
	session.On("SetAmount", "100,50").Return(nil).Once()
	st := readyStatus()
	st.Amount = decimal.RequireFromString("100.5")
	session.On("Status").Return(st).Once()

	rr := httptest.NewRecorder()
	h.SetAmount(rr, httptest.NewRequest(http.MethodPut, "/api/v1/amount", bytes.NewBufferString(`{"amount":"100,50"}`)))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"amount":"100.5"`)
	session.AssertExpectations(t)
}

func TestHandler_SetAmount_TooHigh(t *testing.T) {
	h, session := newTestHandler()
	session.On("SetAmount", "1000000000").Return(fmt.Errorf("%w: must not exceed 999999999", domain.ErrTooHigh)).Once()

	rr := httptest.NewRecorder()
	h.SetAmount(rr, httptest.NewRequest(http.MethodPut, "/api/v1/amount", bytes.NewBufferString(`{"amount":"1000000000"}`)))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "TooHigh", decodeError(t, rr).Kind)
}

// --- Convert ---

func TestHandler_Convert_Success(t *testing.T) {
	h, session := newTestHandler()
	now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	entry := history.Entry{
		ID:        "0b3f9c3e-8d43-4c1a-9b54-8a4a2f1e2d10",
		Timestamp: now,
		Base:      "USD",
		Targets:   []string{"EUR", "JPY"},
		Amount:    decimal.NewFromInt(100),
		Result: domain.ConversionResult{
			"EUR": decimal.NewFromInt(85),
			"JPY": decimal.NewFromInt(15000),
		},
	}
	session.On("Convert").Return(entry, nil).Once()

	rr := httptest.NewRecorder()
	h.Convert(rr, httptest.NewRequest(http.MethodPost, "/api/v1/conversions", nil))

	require.Equal(t, http.StatusCreated, rr.Code)
	var res ConversionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, entry.ID, res.ID)
	require.True(t, res.Timestamp.Equal(now))
	require.Equal(t, "100", res.Amount)
	require.Equal(t, map[string]string{"EUR": "85.00000", "JPY": "15000.00000"}, res.Result)
	session.AssertExpectations(t)
}

func TestHandler_Convert_Errors(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
		wantKind string
	}{
		{domain.ErrCurrenciesNotSet, http.StatusConflict, "CurrenciesNotSet"},
		{domain.ErrAmountNotSet, http.StatusConflict, "AmountNotSet"},
		{fmt.Errorf("%w: USD", domain.ErrInvalidBaseRate), http.StatusConflict, "InvalidBaseRate"},
		{fmt.Errorf("%w: JPY", domain.ErrInvalidTargetRate), http.StatusConflict, "InvalidTargetRate"},
		{fmt.Errorf("%w: overflow", domain.ErrConversion), http.StatusInternalServerError, "ConversionError"},
		{errors.New("boom"), http.StatusInternalServerError, "Unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.wantKind, func(t *testing.T) {
			h, session := newTestHandler()
			session.On("Convert").Return(history.Entry{}, tc.err).Once()

			rr := httptest.NewRecorder()
			h.Convert(rr, httptest.NewRequest(http.MethodPost, "/api/v1/conversions", nil))

			require.Equal(t, tc.wantCode, rr.Code)
			require.Equal(t, tc.wantKind, decodeError(t, rr).Kind)
		})
	}
}

func TestHandler_Convert_InternalErrorIsLoggedAndHidden(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	session := new(MockSession)
	h := NewRateHandler(session, logger)
	session.On("Convert").Return(history.Entry{}, errors.New("secret detail")).Once()

	rr := httptest.NewRecorder()
	h.Convert(rr, httptest.NewRequest(http.MethodPost, "/api/v1/conversions", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "secret detail")
	require.Len(t, hook.Entries, 1)
	require.Equal(t, "Convert", hook.LastEntry().Data["handler"])
}

// --- History ---

func TestHandler_GetHistory(t *testing.T) {
	h, session := newTestHandler()
	entry := history.Entry{
		ID:      "id-1",
		Base:    "USD",
		Targets: []string{"EUR"},
		Amount:  decimal.NewFromInt(10),
		Result:  domain.ConversionResult{"EUR": decimal.RequireFromString("8.5")},
	}
	session.On("History").Return([]string{"line one"}).Once()
	session.On("HistoryEntries").Return([]history.Entry{entry}).Once()

	rr := httptest.NewRecorder()
	h.GetHistory(rr, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var res HistoryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, []string{"line one"}, res.Lines)
	require.Len(t, res.Entries, 1)
	require.Equal(t, "8.50000", res.Entries[0].Result["EUR"])
}

func TestHandler_GetHistory_Empty(t *testing.T) {
	h, session := newTestHandler()
	session.On("History").Return(nil).Once()
	session.On("HistoryEntries").Return(nil).Once()

	rr := httptest.NewRecorder()
	h.GetHistory(rr, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"lines":[],"entries":[]}`, rr.Body.String())
}

func TestHandler_GetStatistics_Empty(t *testing.T) {
	h, session := newTestHandler()
	session.On("Statistics").Return(history.Statistics{AverageAmount: decimal.Zero}).Once()

	rr := httptest.NewRecorder()
	h.GetStatistics(rr, httptest.NewRequest(http.MethodGet, "/api/v1/history/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"total_entries":0,"average_amount":"0","date_range":null}`, rr.Body.String())
}
