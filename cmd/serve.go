package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/interviewiz/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := openRuntime(ctx, cfg, runtimeOptions{RequireLLM: true, Logger: logger})
		if err != nil {
			return err
		}
		defer rt.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}
		origin, _ := cmd.Flags().GetString("cors-origin")

		logger.Info("starting server",
			slog.String("addr", addr),
			slog.String("backend", cfg.Store.Backend),
			slog.String("model", rt.provider.ModelID()),
		)
		return server.New(rt.engine, server.Options{
			Addr:            addr,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			AllowedOrigin:   origin,
			Extractor:       rt.extractor,
			Logger:          logger,
		}).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().String("cors-origin", "*", "Value of Access-Control-Allow-Origin")
}
