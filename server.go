package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"quicknotes/config"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// runServer serves handler until ctx ends, then drains open requests.
func runServer(ctx context.Context, cfg config.HTTPConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		log.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		log.WithField("addr", cfg.Addr).Info("listen and serve")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})

	return eg.Wait()
}
