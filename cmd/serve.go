package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/vertrag/internal/api"
	"github.com/darmiel/vertrag/internal/audit"
	"github.com/darmiel/vertrag/internal/metrics"
	"github.com/darmiel/vertrag/internal/service"
	"github.com/darmiel/vertrag/internal/store"
	"github.com/darmiel/vertrag/internal/tasks"
)

const catalogReloadTask = "catalog-reload"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the provider connector",
	Long: `Serves the catalog and the negotiation, transfer and admin API.
Without a configuration file the built-in demo catalog is served.`,
	Example: `  vertrag serve --addr :8080
  vertrag serve --config provider.yaml --catalog catalog.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := f.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		log.Info().Msg("Loading catalog...")
		manager, err := f.LoadCatalog(cfg)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		assets, _ := manager.Current().Assets(cmd.Context())
		log.Info().Msgf("Serving %d assets under %d policies", len(assets), len(manager.Current().Policies()))

		auditor, err := audit.New(cfg.Audit)
		if err != nil {
			return fmt.Errorf("initializing auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close auditor")
			}
		}()

		var (
			reg *prometheus.Registry
			m   *metrics.Metrics
		)
		if cfg.Metrics.Enabled {
			reg = prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m = metrics.New(reg)
		}

		svc := service.New(cfg.Participant.ID, manager, store.NewInMemoryRegistry(), auditor, m)

		var gatherer prometheus.Gatherer
		if reg != nil {
			gatherer = reg
		}
		ctx, stopTasks := context.WithCancel(context.Background())
		defer stopTasks()

		tm := tasks.NewManager(ctx)
		tm.Register(catalogReloadTask, cfg.Catalog.ReloadInterval, func(ctx context.Context, logger zerolog.Logger) error {
			res, err := svc.ReloadCatalog(ctx)
			if err != nil {
				return err
			}
			logger.Info().Int("assets", res.Assets).Int("policies", res.Policies).Msg("catalog reloaded")
			return nil
		})
		if cfg.Catalog.ReloadInterval > 0 {
			log.Info().Msgf("Reloading catalog every %s", cfg.Catalog.ReloadInterval)
		}

		srv := api.NewServer(svc, gatherer, api.WithTasks(tm))

		server := &http.Server{
			Addr:              addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			log.Info().Str("participant", cfg.Participant.ID).Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("server crashed: %w", err)
			}
			return nil
		case <-quit:
		}
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		stopTasks()
		tm.Wait()

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	f.bindConfigFlags(serveCmd.Flags())
}
