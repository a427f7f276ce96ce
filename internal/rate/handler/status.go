package handler

import (
	"net/http"

	"fxconvert/internal/rate"
)

type StatusResponse struct {
	Base     string   `json:"base,omitempty" example:"USD"`
	Targets  []string `json:"targets" example:"EUR,JPY"`
	Amount   string   `json:"amount,omitempty" example:"100"`
	HasRates bool     `json:"has_rates"`
	IsReady  bool     `json:"is_ready"`
	State    string   `json:"state" example:"ready"`
}

func newStatusResponse(st rate.Status) StatusResponse {
	res := StatusResponse{
		Base:     st.Base,
		Targets:  st.Targets,
		HasRates: st.HasRates,
		IsReady:  st.IsReady,
		State:    string(st.State),
	}
	if res.Targets == nil {
		res.Targets = []string{}
	}
	if st.Amount.IsPositive() {
		res.Amount = st.Amount.String()
	}
	return res
}

// GetStatus returns the current base, targets, amount and readiness.
func (h *Handler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newStatusResponse(h.session.Status()))
}

// Reset clears base, targets and amount. Rates and history are kept.
func (h *Handler) Reset(w http.ResponseWriter, _ *http.Request) {
	h.session.Reset()
	writeJSON(w, http.StatusOK, newStatusResponse(h.session.Status()))
}
