package handler

import (
	"net/http"
)

type SetCurrenciesRequest struct {
	Base    string   `json:"base"`
	Targets []string `json:"targets"`
}

type SetAmountRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) SetCurrencies(w http.ResponseWriter, r *http.Request) {
	var req SetCurrenciesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.session.SetCurrencyList(req.Base, req.Targets); err != nil {
		h.writeDomainError(w, "SetCurrencies", err)
		return
	}
	writeJSON(w, http.StatusOK, newStatusResponse(h.session.Status()))
}

// SetAmount accepts the amount as a string so a comma decimal separator works.
func (h *Handler) SetAmount(w http.ResponseWriter, r *http.Request) {
	var req SetAmountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.session.SetAmount(req.Amount); err != nil {
		h.writeDomainError(w, "SetAmount", err)
		return
	}
	writeJSON(w, http.StatusOK, newStatusResponse(h.session.Status()))
}
