package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marcmoiagese/HeritagePress/core"
)

var listenFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Arrenca l'API HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenFlag, "listen", "", "Adreça d'escolta (per defecte LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	addr := app.Settings.ListenAddr
	if listenFlag != "" {
		addr = listenFlag
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		core.Infof("Servidor escoltant a %s (motor %s)", addr, app.DB.Engine())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		core.Infof("Aturant el servidor")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
