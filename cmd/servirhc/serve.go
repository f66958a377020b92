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

	authhandler "github.com/jwalitptl/servir-hc/internal/handler/auth"
	backuphandler "github.com/jwalitptl/servir-hc/internal/handler/backup"
	"github.com/jwalitptl/servir-hc/internal/handler/health"
	patienthandler "github.com/jwalitptl/servir-hc/internal/handler/patient"
	promhandler "github.com/jwalitptl/servir-hc/internal/handler/prometheus"
	"github.com/jwalitptl/servir-hc/internal/middleware"
	"github.com/jwalitptl/servir-hc/internal/router"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	// Restore logs its own outcome; a failure leaves the process logged out.
	_, _ = a.auth.Restore(ctx)

	gin.SetMode(gin.ReleaseMode)

	limiter := middleware.NewRateLimiter(a.cfg.RateLimit)
	r := router.NewRouter(
		a.session,
		health.NewHandler(a.db),
		authhandler.NewHandler(a.auth, limiter.RateLimit()),
		patienthandler.NewHandler(a.clinical, a.document),
		backuphandler.NewHandler(a.backup, a.cfg.App.Name),
		promhandler.New(a.registry, a.metrics),
		a.log,
		router.RouterConfig{
			MaxBodyBytes:   a.cfg.Server.MaxBodyBytes,
			AllowedOrigins: a.cfg.Server.AllowedOrigins,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      r.Engine(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			a.log.Error(err, "failed to start server")
			return err
		}
		return nil
	case <-quit:
	}
	a.log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error(err, "server forced to shutdown")
		return err
	}

	a.log.Info("server exited properly")
	return nil
}
