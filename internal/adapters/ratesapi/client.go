package ratesapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"fxconvert/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const successResult = "success"

// Client reads rates from an exchangerate-api.com compatible source, which
// quotes every currency against an anchor currency given in the path.
type Client struct {
	client *resty.Client
	apiKey string
	anchor string
	logger logrus.FieldLogger
}

type ratesResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

func (c *Client) GetLatestRates(ctx context.Context) (map[string]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: API key is not configured", domain.ErrRateSourceUnavailable)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"key": c.apiKey, "anchor": c.anchor}).
		Get("/v6/{key}/latest/{anchor}")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request for currency %q: %w", domain.ErrRateSourceUnavailable, c.anchor, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: rates api status: %s", domain.ErrRateSourceUnavailable, resp.Status())
	}

	var rr ratesResponse
	if err = json.Unmarshal(resp.Body(), &rr); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response for currency %q: %w", domain.ErrRateSourceUnavailable, c.anchor, err)
	}
	if rr.Result != successResult {
		return nil, fmt.Errorf("%w: api returned non-success result: %s %s", domain.ErrRateSourceUnavailable, rr.Result, rr.ErrorType)
	}

	if rr.ConversionRates == nil {
		rr.ConversionRates = map[string]float64{}
	}
	c.logger.WithFields(logrus.Fields{"anchor": rr.BaseCode, "currencies": len(rr.ConversionRates)}).Debug("Fetched latest exchange rates")
	return rr.ConversionRates, nil
}

func NewClient(httpClient *http.Client, baseURL, apiKey, anchor string, logger logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	client := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json")
	return &Client{client: client, apiKey: apiKey, anchor: strings.ToUpper(anchor), logger: logger}
}
