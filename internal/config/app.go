package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port string `mapstructure:"port" validate:"required,numeric"`
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gt=0"`
}

const (
	ProviderFreeCurrencyAPI = "freecurrencyapi"
	ProviderExchangeRateAPI = "exchangerate-api"
)

var providerBaseURLs = map[string]string{
	ProviderFreeCurrencyAPI: "https://api.freecurrencyapi.com",
	ProviderExchangeRateAPI: "https://v6.exchangerate-api.com",
}

type RatesAPI struct {
	Provider string `mapstructure:"provider" validate:"oneof=freecurrencyapi exchangerate-api"`
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
	APIKey   string `mapstructure:"api_key" validate:"required"`
	// Anchor is the currency rates are quoted against by exchangerate-api.
	Anchor string `mapstructure:"anchor" validate:"len=3,alpha"`
}

type Converter struct {
	MinAmount     float64 `mapstructure:"min_amount" validate:"gt=0"`
	MaxAmount     float64 `mapstructure:"max_amount" validate:"gtfield=MinAmount"`
	DecimalPlaces int32   `mapstructure:"decimal_places" validate:"gte=0,lte=10"`
}

type History struct {
	MaxEntries int `mapstructure:"max_entries" validate:"gt=0"`
}

type Scheduler struct {
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" validate:"gte=0"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	RatesAPI   RatesAPI   `mapstructure:"rates_api"`
	Converter  Converter  `mapstructure:"converter"`
	History    History    `mapstructure:"history"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
	Logging    Logging    `mapstructure:"logging"`
}

var defaults = map[string]any{
	"http_server.port":               "8080",
	"http_client.timeout_seconds":    10,
	"rates_api.provider":             ProviderFreeCurrencyAPI,
	"rates_api.anchor":               "USD",
	"converter.min_amount":           0.01,
	"converter.max_amount":           999_999_999,
	"converter.decimal_places":       5,
	"history.max_entries":            1000,
	"scheduler.refresh_interval_sec": 0,
	"logging.level":                  "info",
}

var envKeys = map[string]string{
	"http_server.port":               "HTTP_PORT",
	"http_client.timeout_seconds":    "HTTP_CLIENT_TIMEOUT_SECONDS",
	"rates_api.provider":             "RATES_API_PROVIDER",
	"rates_api.base_url":             "RATES_API_BASE_URL",
	"rates_api.anchor":               "RATES_API_ANCHOR",
	"rates_api.api_key":              "API_KEY",
	"converter.min_amount":           "MIN_AMOUNT",
	"converter.max_amount":           "MAX_AMOUNT",
	"converter.decimal_places":       "DECIMAL_PLACES",
	"history.max_entries":            "MAX_HISTORY_ENTRIES",
	"scheduler.refresh_interval_sec": "RATES_REFRESH_INTERVAL_SEC",
	"logging.level":                  "LOG_LEVEL",
}

// Init loads configuration from the working directory: an optional .env
// file, an optional config.yaml and the environment, in increasing priority.
func Init() (*AppConfig, error) {
	return Load(".")
}

func Load(dir string) (*AppConfig, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envKeys {
		_ = v.BindEnv(key, env)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if cfg.RatesAPI.BaseURL == "" {
		cfg.RatesAPI.BaseURL = providerBaseURLs[cfg.RatesAPI.Provider]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values and names the environment variable to
// fix for every failing field.
func (c *AppConfig) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
	})

	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := strings.TrimPrefix(fe.Namespace(), "AppConfig.")
		problems = append(problems, fmt.Sprintf("%s (%s) failed %q check", key, envKeys[key], fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}
