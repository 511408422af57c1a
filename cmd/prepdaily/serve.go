package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"prepdaily/handler"
	"prepdaily/middleware"
	"prepdaily/repository"
	"prepdaily/router"
	"prepdaily/services"
	"prepdaily/utils"
)

func newServeCmd() *cobra.Command {
	var skipIndexes bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, skipIndexes)
		},
	}
	cmd.Flags().BoolVar(&skipIndexes, "skip-indexes", false, "do not create indexes on startup")
	return cmd
}

func serve(ctx context.Context, skipIndexes bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if !skipIndexes {
		if err := repository.SetupIndexes(ctx, a.db, a.collections()); err != nil {
			return err
		}
	}

	blacklist, err := services.NewTokenBlacklist(ctx, a.cfg.RedisURL)
	if err != nil {
		return err
	}
	defer blacklist.Close()

	if os.Getenv("GO_ENV") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.InitValidator()

	engine := router.New(router.Deps{
		Tasks:     a.tasks,
		Daily:     a.daily,
		Questions: a.questions,
		Auth: middleware.AuthConfig{
			SecretKey: []byte(a.cfg.Auth.JWTSecretKey),
			Issuer:    a.cfg.Auth.JWTIssuer,
			Blacklist: blacklist,
		},
		Revoker: blacklist,
		HealthChecks: map[string]handler.Pinger{
			"mongo": handler.PingFunc(func(ctx context.Context) error { return a.client.Ping(ctx, nil) }),
			"redis": blacklist,
		},
		Logger: a.log,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info("server shutdown complete")
	return nil
}
