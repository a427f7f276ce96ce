package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envKeys {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func TestLoad_DefaultsWithAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	require.Equal(t, "secret", cfg.RatesAPI.APIKey)
	require.Equal(t, "https://api.freecurrencyapi.com", cfg.RatesAPI.BaseURL)
	require.Equal(t, ProviderFreeCurrencyAPI, cfg.RatesAPI.Provider)
	require.Equal(t, "USD", cfg.RatesAPI.Anchor)
	require.Equal(t, "8080", cfg.HTTPServer.Port)
	require.Equal(t, 10, cfg.HTTPClient.TimeoutSeconds)
	require.InDelta(t, 0.01, cfg.Converter.MinAmount, 1e-12)
	require.InDelta(t, 999_999_999, cfg.Converter.MaxAmount, 1e-6)
	require.Equal(t, int32(5), cfg.Converter.DecimalPlaces)
	require.Equal(t, 1000, cfg.History.MaxEntries)
	require.Equal(t, 0, cfg.Scheduler.RefreshIntervalSec)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")
	t.Setenv("MIN_AMOUNT", "1")
	t.Setenv("MAX_AMOUNT", "500")
	t.Setenv("DECIMAL_PLACES", "2")
	t.Setenv("MAX_HISTORY_ENTRIES", "3")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RATES_REFRESH_INTERVAL_SEC", "60")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	require.InDelta(t, 1.0, cfg.Converter.MinAmount, 1e-12)
	require.InDelta(t, 500.0, cfg.Converter.MaxAmount, 1e-12)
	require.Equal(t, int32(2), cfg.Converter.DecimalPlaces)
	require.Equal(t, 3, cfg.History.MaxEntries)
	require.Equal(t, "9090", cfg.HTTPServer.Port)
	require.Equal(t, 60, cfg.Scheduler.RefreshIntervalSec)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ConfigFileAndDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"http_server:\n  port: \"7000\"\nhistory:\n  max_entries: 50\n",
	), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("API_KEY=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("API_KEY") })

	cfg, err := Load(dir)

	require.NoError(t, err)
	require.Equal(t, "7000", cfg.HTTPServer.Port)
	require.Equal(t, 50, cfg.History.MaxEntries)
	require.Equal(t, "from-dotenv", cfg.RatesAPI.APIKey)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := Load(t.TempDir())

	require.Error(t, err)
	require.Contains(t, err.Error(), "rates_api.api_key (API_KEY)")
}

func TestLoad_InvalidLimits(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")
	t.Setenv("MIN_AMOUNT", "10")
	t.Setenv("MAX_AMOUNT", "5")
	t.Setenv("MAX_HISTORY_ENTRIES", "0")

	_, err := Load(t.TempDir())

	require.Error(t, err)
	require.Contains(t, err.Error(), "converter.max_amount (MAX_AMOUNT)")
	require.Contains(t, err.Error(), "history.max_entries (MAX_HISTORY_ENTRIES)")
}

func TestLoad_ProviderDefaultsBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")
	t.Setenv("RATES_API_PROVIDER", ProviderExchangeRateAPI)
	t.Setenv("RATES_API_ANCHOR", "EUR")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	require.Equal(t, "https://v6.exchangerate-api.com", cfg.RatesAPI.BaseURL)
	require.Equal(t, "EUR", cfg.RatesAPI.Anchor)
}

func TestLoad_UnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")
	t.Setenv("RATES_API_PROVIDER", "fixer")

	_, err := Load(t.TempDir())

	require.Error(t, err)
	require.Contains(t, err.Error(), "rates_api.provider (RATES_API_PROVIDER)")
}

func TestLoad_BrokenConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("http_server: [\n"), 0o600))

	_, err := Load(dir)

	require.Error(t, err)
	require.Contains(t, err.Error(), "error reading config file")
}
