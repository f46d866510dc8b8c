package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joss/openoutreach/internal/config"
	"github.com/joss/openoutreach/internal/logging"
	"github.com/joss/openoutreach/internal/server"
)

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the outreach HTTP API",
		Run: func(cmd *cobra.Command, args []string) {
			log := logging.New("main")
			ctx := context.Background()

			svc, auditStore, err := buildService(ctx)
			if err != nil {
				exitOnError(err)
			}
			defer auditStore.Close()

			if port == 0 {
				port = config.Get().Port
			}
			srv := server.New(port, server.NewHandler(svc, auditStore))

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil {
					exitOnError(err)
				}
			case sig := <-stop:
				log.Info("shutting_down", map[string]interface{}{"signal": sig.String()})
				shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Error("shutdown_failed", nil, err)
				}
			}
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default from OUTREACH_PORT)")
	return cmd
}
