package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"fxconvert/internal/domain"
	"fxconvert/internal/history"
	"fxconvert/internal/rate"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 10

// Session is the conversion session served over HTTP.
type Session interface {
	RefreshRates(ctx context.Context) (int, error)
	Status() rate.Status
	Rates() domain.RateTable
	SupportedCurrencies() []string
	SetCurrencyList(base string, targets []string) error
	SetAmount(amount string) error
	Convert() (history.Entry, error)
	Reset()
	History() []string
	HistoryEntries() []history.Entry
	Statistics() history.Statistics
	DecimalPlaces() int32
}

type Handler struct {
	session Session
	logger  logrus.FieldLogger
}

func NewRateHandler(session Session, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{session: session, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string, kind domain.ErrorKind) {
	writeJSON(w, statusCode, errorResponse{
		Error: errorMsg,
		Kind:  string(kind),
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps an error kind to the HTTP status returned to the client.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindEmptyInput, domain.KindInvalidFormat, domain.KindDuplicateTarget,
		domain.KindBaseEqualsTarget, domain.KindTooLow, domain.KindTooHigh:
		return http.StatusBadRequest
	case domain.KindCurrencyUnavailable:
		return http.StatusUnprocessableEntity
	case domain.KindCurrenciesNotSet, domain.KindAmountNotSet,
		domain.KindInvalidBaseRate, domain.KindInvalidTargetRate:
		return http.StatusConflict
	case domain.KindRateSource, domain.KindInvalidRates:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err with the status of its kind. Server side
// failures are logged and their details hidden from the client.
func (h *Handler) writeDomainError(w http.ResponseWriter, handlerName string, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status < http.StatusInternalServerError {
		writeError(w, status, err.Error(), kind)
		return
	}

	h.logger.WithError(err).WithFields(logrus.Fields{"handler": handlerName, "kind": kind}).Error("request failed")
	msg := "ups, something went wrong this time"
	switch kind {
	case domain.KindRateSource, domain.KindInvalidRates:
		msg = err.Error()
	case domain.KindConversionError:
		msg = domain.ErrConversion.Error()
	}
	writeError(w, status, msg, kind)
}

// decodeBody decodes a size limited JSON body that must not carry unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", domain.KindInvalidFormat)
		return false
	}
	return true
}
