package handler

import (
	"net/http"
	"time"

	"fxconvert/internal/history"
)

type ConversionResponse struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Base      string            `json:"base" example:"USD"`
	Amount    string            `json:"amount" example:"100"`
	Targets   []string          `json:"targets"`
	Result    map[string]string `json:"result"`
}

type HistoryResponse struct {
	Lines   []string             `json:"lines"`
	Entries []ConversionResponse `json:"entries"`
}

func (h *Handler) newConversionResponse(e history.Entry) ConversionResponse {
	places := h.session.DecimalPlaces()
	result := make(map[string]string, len(e.Result))
	for code, value := range e.Result {
		result[code] = value.StringFixed(places)
	}
	return ConversionResponse{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Base:      e.Base,
		Amount:    e.Amount.String(),
		Targets:   e.Targets,
		Result:    result,
	}
}

// Convert converts the configured amount and records it in the history.
func (h *Handler) Convert(w http.ResponseWriter, _ *http.Request) {
	entry, err := h.session.Convert()
	if err != nil {
		h.writeDomainError(w, "Convert", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.newConversionResponse(entry))
}

func (h *Handler) GetHistory(w http.ResponseWriter, _ *http.Request) {
	lines := h.session.History()
	entries := h.session.HistoryEntries()

	res := HistoryResponse{
		Lines:   make([]string, 0, len(lines)),
		Entries: make([]ConversionResponse, 0, len(entries)),
	}
	res.Lines = append(res.Lines, lines...)
	for _, e := range entries {
		res.Entries = append(res.Entries, h.newConversionResponse(e))
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetStatistics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Statistics())
}
