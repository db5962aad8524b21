package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nadlan/propstat/internal/api"
	"github.com/nadlan/propstat/internal/config"
	"github.com/nadlan/propstat/internal/database"
	"github.com/nadlan/propstat/internal/domain"
	"github.com/nadlan/propstat/internal/export"
	"github.com/nadlan/propstat/internal/rates"
	"github.com/nadlan/propstat/internal/repository"
	"github.com/nadlan/propstat/internal/tax"
	"github.com/nadlan/propstat/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	app := &cli.App{
		Name:  "propstat",
		Usage: "real-estate portfolio valuation and tax-estimation service",
		Commands: []*cli.Command{
			serveCommand(),
			refreshRatesCommand(),
			exportTaxCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// backend bundles the data repository and settings store of the selected
// variant, plus its teardown.
type backend struct {
	repo     repository.Repository
	settings rates.SettingsRepository
	close    func()
}

// openBackend selects the repository variant from configuration. The
// calculation packages never see which variant is active.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	switch cfg.DataBackend {
	case config.BackendDemo:
		return &backend{
			repo:     repository.NewDemo(time.Now()),
			settings: rates.NewMemorySettingsRepository(),
			close:    func() {},
		}, nil

	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		migrations, err := fs.Sub(migrationsFS, "migrations")
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("opening migrations: %w", err)
		}
		if err := database.Migrate(ctx, pool, migrations); err != nil {
			pool.Close()
			return nil, err
		}
		return &backend{
			repo:     repository.NewPostgres(pool),
			settings: rates.NewPgSettingsRepository(pool),
			close:    pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q", cfg.DataBackend)
	}
}

func openRates(ctx context.Context, cfg config.Config, b *backend) (*rates.Store, *rates.Fetcher) {
	store := rates.NewStore(b.settings)
	store.Load(ctx)
	return store, rates.NewFetcher(store, cfg.PrimaryRatesURL, cfg.FallbackRatesURL)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the API server and background rate refresh",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := config.Load()

			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.close()

			store, fetcher := openRates(ctx, cfg, b)

			rateWorker := worker.NewRateWorker(fetcher, b.settings, cfg.RatesAPIKey, cfg.RateWorkerInterval)
			go rateWorker.Run(ctx)

			if cfg.AdminAPIKey == "" {
				slog.Warn("ADMIN_API_KEY not set, rate mutation endpoints are unprotected")
			}

			handler := api.NewHandler(b.repo, store, fetcher, cfg.RatesAPIKey, cfg.LeaseAlertDays)
			srv := api.NewServer(cfg.HTTPPort, handler, cfg.AdminAPIKey)

			go func() {
				log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Printf("HTTP server error: %v", err)
					stop()
				}
			}()

			<-ctx.Done()
			log.Println("Shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("HTTP server shutdown error: %v", err)
			}
			return nil
		},
	}
}

func refreshRatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh-rates",
		Usage: "fetch live exchange rates once and persist them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "primary provider API key",
				EnvVars: []string{"CURRENCYFREAKS_API_KEY"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()

			b, err := openBackend(c.Context, cfg)
			if err != nil {
				return err
			}
			defer b.close()

			store, fetcher := openRates(c.Context, cfg, b)
			if err := fetcher.FetchLiveRates(c.Context, c.String("api-key")); err != nil {
				return err
			}

			for currency, rate := range store.Rates() {
				fmt.Printf("%s = %.4f %s\n", currency, rate, domain.BaseCurrency)
			}
			return nil
		},
	}
}

func exportTaxCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-tax",
		Usage: "write the tax report to an XLSX file or Google Sheets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "currency",
				Usage: "display currency for the report",
				Value: string(domain.BaseCurrency),
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "output path for the XLSX workbook",
			},
			&cli.BoolFlag{
				Name:  "sheets",
				Usage: "write to the configured Google Sheets spreadsheet instead",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()

			display := domain.CurrencyCode(c.String("currency"))
			if !domain.ValidCurrency(display) {
				return fmt.Errorf("unknown currency %q", display)
			}

			b, err := openBackend(c.Context, cfg)
			if err != nil {
				return err
			}
			defer b.close()

			store, _ := openRates(c.Context, cfg, b)
			conv := rates.NewConverter(store)

			var writer export.ReportWriter
			if c.Bool("sheets") {
				if cfg.SheetsSpreadsheetID == "" || cfg.SheetsCredentials == "" {
					return fmt.Errorf("SHEETS_SPREADSHEET_ID and SHEETS_CREDENTIALS_JSON are required for sheets export")
				}
				writer, err = export.NewSheetsWriter(c.Context, cfg.SheetsSpreadsheetID, cfg.SheetsCredentials)
				if err != nil {
					return err
				}
			} else {
				path := c.String("out")
				if path == "" {
					path = cfg.ExportPath
				}
				writer = export.NewExcelWriter(path, conv)
			}

			svc := export.NewService(b.repo, tax.NewEstimator(conv), writer)
			return svc.Export(c.Context, display)
		},
	}
}
