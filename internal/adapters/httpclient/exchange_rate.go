package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fxconvert/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	latestRatesPath = "/v1/latest"
	userAgent       = "fxconvert/1.0"
)

var ErrMissingAPIKey = errors.New("API key is not configured, set API_KEY in the environment or .env file")

type ExchangeRateClient struct {
	client *resty.Client
	apiKey string
	logger logrus.FieldLogger
}

type apiResponse struct {
	Data map[string]any `json:"data"`
}

func (c *ExchangeRateClient) GetLatestRates(ctx context.Context) (map[string]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrRateSourceUnavailable, ErrMissingAPIKey)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("apikey", c.apiKey).
		Get(latestRatesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %w", domain.ErrRateSourceUnavailable, err)
	}
	if resp.IsError() {
		return nil, statusError(resp.StatusCode(), resp.Status())
	}

	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("%w: empty response from server", domain.ErrRateSourceUnavailable)
	}

	var body apiResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", domain.ErrRateSourceUnavailable, err)
	}
	if body.Data == nil {
		return nil, fmt.Errorf("%w: invalid response format, missing data object", domain.ErrRateSourceUnavailable)
	}

	rates := make(map[string]float64, len(body.Data))
	for code, raw := range body.Data {
		value, ok := raw.(float64)
		if !ok {
			c.logger.WithFields(logrus.Fields{"currency": code, "rate": raw}).Warn("Skipping non-numeric rate")
			continue
		}
		rates[code] = value
	}

	c.logger.WithField("currencies", len(rates)).Debug("Fetched latest exchange rates")
	return rates, nil
}

func statusError(code int, status string) error {
	var reason string
	switch {
	case code == http.StatusUnauthorized:
		reason = "API key is invalid or expired"
	case code == http.StatusForbidden:
		reason = "access to the exchange rate service was denied"
	case code == http.StatusTooManyRequests:
		reason = "request limit exceeded, try again later"
	case code >= http.StatusInternalServerError:
		reason = "server error, try again later"
	default:
		reason = fmt.Sprintf("unexpected status %s", status)
	}
	return fmt.Errorf("%w: %s (HTTP %d)", domain.ErrRateSourceUnavailable, reason, code)
}

func NewExchangeRateClient(httpClient *http.Client, baseURL, apiKey string, logger logrus.FieldLogger) *ExchangeRateClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	client := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	return &ExchangeRateClient{client: client, apiKey: apiKey, logger: logger}
}
