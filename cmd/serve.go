package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prospectar/leadscan/internal/discovery"
	"github.com/prospectar/leadscan/internal/export"
	"github.com/prospectar/leadscan/internal/pipeline"
	"github.com/prospectar/leadscan/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  "Serves the lead pipeline over HTTP: lead CRUD and analysis, discovery jobs, stats, and CRM export. Discovery and export routes answer 503 when their credentials are not configured.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p := pipeline.New(cfg, st)

		// Optional components degrade to 503 routes when unconfigured.
		var runner *discovery.Runner
		if search, err := initSearch(); err == nil {
			runner = discovery.NewRunner(search, st)
		} else {
			zap.L().Warn("discovery disabled", zap.Error(err))
		}
		var exporter *export.Exporter
		if e, err := initExporter(st); err == nil {
			exporter = e
		} else {
			zap.L().Warn("CRM export disabled", zap.Error(err))
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.New(st, p, runner, exporter).Routes(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
