package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/basketfi/valuation/internal/api"
	"github.com/basketfi/valuation/internal/basket"
	"github.com/basketfi/valuation/internal/config"
	"github.com/basketfi/valuation/internal/database"
	"github.com/basketfi/valuation/internal/export"
	"github.com/basketfi/valuation/internal/history"
	"github.com/basketfi/valuation/internal/oracle"
	"github.com/basketfi/valuation/internal/valuation"
	"github.com/basketfi/valuation/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	app := &cli.App{
		Name:  "valuationd",
		Usage: "basket reserve valuation service",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "baskets",
				Usage:   "basket names the workers sweep",
				Value:   cli.NewStringSlice("reserve"),
				EnvVars: []string{"BASKETS"},
			},
			&cli.BoolFlag{
				Name:  "decimals-registry",
				Usage: "resolve token decimals from the token_decimals table instead of basket records",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			revalueCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// deps bundles the shared service graph behind every command.
type deps struct {
	pool    *pgxpool.Pool
	store   *basket.PgStore
	valuer  *valuation.Service
	history *history.Service
	cfg     config.Config
}

func setup(ctx context.Context, c *cli.Context) (*deps, error) {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	store := basket.NewPgStore(pool)
	hermes := oracle.NewHermesClient(cfg.HermesURL, cfg.HermesDelay, cfg.HermesRetryMax)

	var lookup valuation.DecimalsLookup
	if c.Bool("decimals-registry") {
		lookup = valuation.NewRegistryLookup(pool)
	}

	valuer := valuation.NewService(store, hermes, lookup)
	historySvc := history.NewService(valuer, history.NewPgRepository(pool))

	return &deps{
		pool:    pool,
		store:   store,
		valuer:  valuer,
		history: historySvc,
		cfg:     cfg,
	}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and background workers",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := setup(ctx, c)
			if err != nil {
				return err
			}
			defer d.pool.Close()

			baskets := c.StringSlice("baskets")

			valueWorker := worker.NewValueWorker(d.history, baskets, d.cfg.ValueWorkerInterval)
			go valueWorker.Run(ctx)

			if d.cfg.SpreadsheetID != "" {
				exporter, err := sheetsExporter(ctx, d)
				if err != nil {
					return err
				}
				reportWorker := worker.NewReportWorker(exporter, baskets, d.cfg.ReportInterval)
				go reportWorker.Run(ctx)
			}

			if d.cfg.AdminAPIKey == "" {
				slog.Warn("ADMIN_API_KEY not set, revalue endpoint is unprotected")
			}

			handler := api.NewHandler(d.store, d.valuer, d.history)
			srv := api.NewServer(d.cfg.HTTPPort, handler, d.cfg.AdminAPIKey)

			go func() {
				log.Printf("HTTP server listening on :%s", d.cfg.HTTPPort)
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

			log.Println("Shutdown complete")
			return nil
		},
	}
}

func revalueCommand() *cli.Command {
	return &cli.Command{
		Name:  "revalue",
		Usage: "value every configured basket once and record the observations",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := setup(ctx, c)
			if err != nil {
				return err
			}
			defer d.pool.Close()

			now := time.Now().UTC()
			for _, name := range c.StringSlice("baskets") {
				aum, err := d.history.Capture(ctx, name, now)
				if err != nil {
					return fmt.Errorf("revaluing %s: %w", name, err)
				}
				fmt.Printf("%s\t%s\n", name, aum)
			}
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write valuation history reports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "directory for .xlsx reports",
				Value: "reports",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := setup(ctx, c)
			if err != nil {
				return err
			}
			defer d.pool.Close()

			writers := []export.ReportWriter{export.NewXLSXWriter(c.String("dir"))}
			if d.cfg.SpreadsheetID != "" {
				sheets, err := newSheetsWriter(ctx, d.cfg)
				if err != nil {
					return err
				}
				writers = append(writers, sheets)
			}

			svc := export.NewService(history.NewPgRepository(d.pool), writers...)
			for _, name := range c.StringSlice("baskets") {
				if err := svc.ExportHistory(ctx, name); err != nil {
					return err
				}
				log.Printf("exported %s", name)
			}
			return nil
		},
	}
}

func sheetsExporter(ctx context.Context, d *deps) (*export.Service, error) {
	sheets, err := newSheetsWriter(ctx, d.cfg)
	if err != nil {
		return nil, err
	}
	return export.NewService(history.NewPgRepository(d.pool), sheets), nil
}

func newSheetsWriter(ctx context.Context, cfg config.Config) (*export.SheetsWriter, error) {
	creds, err := os.ReadFile(cfg.GoogleCredsFile)
	if err != nil {
		return nil, fmt.Errorf("reading google credentials: %w", err)
	}
	return export.NewSheetsWriter(ctx, cfg.SpreadsheetID, string(creds))
}
