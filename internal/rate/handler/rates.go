package handler

import (
	"net/http"
)

type RatesResponse struct {
	Rates map[string]float64 `json:"rates"`
	Count int                `json:"count"`
}

type RefreshRatesResponse struct {
	Count int `json:"count" example:"32"`
}

type CurrenciesResponse struct {
	Codes []string `json:"codes" example:"EUR,JPY,USD"`
}

func (h *Handler) GetRates(w http.ResponseWriter, _ *http.Request) {
	rates := h.session.Rates()
	if rates == nil {
		rates = map[string]float64{}
	}
	writeJSON(w, http.StatusOK, RatesResponse{Rates: rates, Count: len(rates)})
}

// RefreshRates reloads the rate table from the rate source.
func (h *Handler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	count, err := h.session.RefreshRates(r.Context())
	if err != nil {
		h.writeDomainError(w, "RefreshRates", err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshRatesResponse{Count: count})
}

// GetCurrencies lists the currency codes of the current rate table.
func (h *Handler) GetCurrencies(w http.ResponseWriter, _ *http.Request) {
	codes := h.session.SupportedCurrencies()
	if codes == nil {
		codes = []string{}
	}
	writeJSON(w, http.StatusOK, CurrenciesResponse{Codes: codes})
}
