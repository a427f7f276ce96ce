package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fxconvert/internal/adapters"
	"fxconvert/internal/adapters/httpclient"
	"fxconvert/internal/adapters/ratesapi"
	"fxconvert/internal/api"
	"fxconvert/internal/cli"
	"fxconvert/internal/config"
	httpserver "fxconvert/internal/platform/http"
	"fxconvert/internal/rate"
	"fxconvert/internal/rate/handler"
	"fxconvert/internal/session"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeServe       Mode = "serve"
)

const startupTimeout = 10 * time.Second

// ParseMode picks the run mode from command line arguments (without the program name).
func ParseMode(args []string) (Mode, error) {
	if len(args) == 0 {
		return ModeInteractive, nil
	}
	switch Mode(args[0]) {
	case ModeServe:
		return ModeServe, nil
	case ModeInteractive:
		return ModeInteractive, nil
	default:
		return "", fmt.Errorf("unknown command %q, usage: fxconvert [serve|interactive]", args[0])
	}
}

// Run wires the application components and runs the selected mode until it
// finishes or the process receives an interrupt.
func Run(args []string) error {
	mode, err := ParseMode(args)
	if err != nil {
		return err
	}

	appCfg, err := config.Init()
	if err != nil {
		return err
	}

	// Logger. The menu owns stdout in interactive mode.
	if mode == ModeInteractive {
		logrus.SetOutput(os.Stderr)
	} else {
		logrus.SetOutput(os.Stdout)
	}
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prompts := term.IsTerminal(int(os.Stdin.Fd()))
	return run(ctx, mode, appCfg, os.Stdin, os.Stdout, prompts)
}

func run(ctx context.Context, mode Mode, appCfg *config.AppConfig, in io.Reader, out io.Writer, prompts bool) error {
	logger := logrus.StandardLogger()

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	rateClient := newRateClient(appCfg.RatesAPI, &http.Client{Timeout: httpTimeout}, logger)

	sess := session.NewSession(rateClient, limitsFrom(appCfg.Converter), appCfg.History.MaxEntries, logger)

	// Bounded context for the initial rate load
	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	count, err := sess.RefreshRates(startupCtx)
	if err != nil {
		logrus.WithError(err).Error("Failed to load exchange rates")
		return fmt.Errorf("could not load exchange rates, check API_KEY, RATES_API_BASE_URL and your network connection: %w", err)
	}
	logrus.Infof("✅ Exchange rates loaded (%d currencies)", count)

	if appCfg.Scheduler.RefreshIntervalSec > 0 {
		scheduler := rate.NewScheduler(sess, logger, time.Duration(appCfg.Scheduler.RefreshIntervalSec)*time.Second)
		defer func() {
			if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
				logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
			}
		}()
		if startErr := scheduler.Start(ctx); startErr != nil {
			logrus.WithError(startErr).Error("Failed to start scheduler")
			return startErr
		}
		logrus.Info("✅ Scheduler activation successful")
	}

	switch mode {
	case ModeServe:
		router := api.NewRouter(handler.NewRateHandler(sess, logger))
		logrus.Info("Starting http server")
		if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router, nil); serverErr != nil {
			logrus.Errorf("HTTP server error: %v", serverErr)
			return serverErr
		}
		return nil
	default:
		menuErr := cli.NewMenu(sess, in, out, prompts).Run(ctx)
		if menuErr != nil && !errors.Is(menuErr, context.Canceled) {
			return menuErr
		}
		return nil
	}
}

func newRateClient(cfg config.RatesAPI, httpClient *http.Client, logger logrus.FieldLogger) adapters.RateClient {
	if cfg.Provider == config.ProviderExchangeRateAPI {
		return ratesapi.NewClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Anchor, logger)
	}
	return httpclient.NewExchangeRateClient(httpClient, cfg.BaseURL, cfg.APIKey, logger)
}

func limitsFrom(cfg config.Converter) rate.Limits {
	return rate.Limits{
		MinAmount:     decimal.NewFromFloat(cfg.MinAmount),
		MaxAmount:     decimal.NewFromFloat(cfg.MaxAmount),
		DecimalPlaces: cfg.DecimalPlaces,
	}
}
