package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agusx1211/notebake/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve bakes of the vault over HTTP",
	Long: `serve exposes the vault over HTTP:

  GET  /health
  GET  /api/bake?input=NOTE[&format=json]
  POST /api/bake   {"input": "NOTE", "output": "PATH"}
  GET  /api/count?input=NOTE

Set NOTEBAKE_API_KEY to require "Authorization: Bearer <key>" on /api.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(verbose, cmd.ErrOrStderr())
		cfg, err := loadConfig(cmd, log)
		if err != nil {
			return err
		}
		b, err := openBaker(cfg, log)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr: serveAddr,
			Handler: server.New(b, log, server.Config{
				APIKey:   os.Getenv("NOTEBAKE_API_KEY"),
				Settings: cfg.Settings,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Warn("serving vault", "addr", serveAddr, "root", b.Root())
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8377", "Listen address")
}
