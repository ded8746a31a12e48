package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ehr-analysis-service/internal/api/handlers"
	"ehr-analysis-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(flags *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the loaded records over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer rt.close()

			addr := rt.settings.Listen
			if cmd.Flags().Changed("listen") {
				addr = listen
			}

			app := newHTTPApp(rt)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Infow("HTTP server listening", "addr", addr)
				errCh <- app.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				rt.logger.Infow("Shutting down HTTP server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return app.ShutdownWithContext(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	return cmd
}

func newHTTPApp(rt *runtime) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ehr-analysis",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	batch := services.NewBatchQueryService(rt.queries, rt.logger, rt.settings.Workers)
	export := services.NewExportService(rt.store, rt.store.Labs(), rt.logger)

	handlers.RegisterQueryRoutes(app, handlers.NewQueryHandler(rt.queries, batch, rt.logger))
	handlers.RegisterExportRoutes(app, handlers.NewExportHandler(export, rt.store, rt.store.Labs(), rt.logger))
	return app
}
