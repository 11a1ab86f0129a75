package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/routes"
	"github.com/FACorreiaa/go-tripboard/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `Connect to Postgres, apply pending migrations and serve the site and
its JSON API until SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	otelShutdown, err := server.InitObservability(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	app, err := routes.Build(srv.GetDBPool(), cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	srv.SetRouter(server.SetupRouter(app, cfg, logger))

	if pprofSrv := server.StartPprofServer(cfg.PprofAddr, logger); pprofSrv != nil {
		defer pprofSrv.Close()
	}

	httpServer := srv.HTTPServer()
	done := make(chan struct{})
	go server.GracefulShutdown(httpServer, logger, done)

	logger.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	logger.Info("Graceful shutdown complete")
	return nil
}
