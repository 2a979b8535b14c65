package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/innometrics/innometrics-backend/internal/api/http/innometrics"
	"github.com/innometrics/innometrics-backend/internal/config"
	"github.com/innometrics/innometrics-backend/internal/logger"
)

// Options controls the innometrics-server process and configuration.
type Options struct {
	// ConfigPath specifies the settings YAML file; empty looks in the installation root.
	ConfigPath string
	// Root is the installation root; empty falls back to INNOMETRICS_PATH, then the working directory.
	Root string
	// ListenAddress overrides the HTTP address from settings.
	ListenAddress string
	// HealthAddress overrides the gRPC health address from settings.
	HealthAddress string
}

const readHeaderTimeout = 10 * time.Second

// Run serves the API and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, opts *Options) error {
	root, err := resolveRoot(opts.Root)
	if err != nil {
		return err
	}

	settings, err := config.LoadServer(root, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.ListenAddress != "" {
		settings.ListenAddress = opts.ListenAddress
	}

	if opts.HealthAddress != "" {
		settings.HealthAddress = opts.HealthAddress
	}

	level, ok := logger.ParseLogLevel(settings.LogLevel)
	if !ok {
		logger.Warnf(ctx, "Unknown log level %q, using %s", settings.LogLevel, level)
	}

	logger.SetLevel(level)

	closeLog, err := logger.AttachFile(settings.LogFile)
	if err != nil {
		return fmt.Errorf("attach log file: %w", err)
	}

	defer func() {
		_ = closeLog()
	}()

	// Named after the file is attached so request logs reach it.
	ctx = logger.WithName(ctx, "innometrics-server")

	if err = api.WriteDocumentation(settings.DocumentationFile); err != nil {
		return err
	}

	app, err := newApplication(ctx, settings)
	if err != nil {
		return fmt.Errorf("initialise application: %w", err)
	}

	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to close storage", "error", closeErr)
		}
	}()

	lc := net.ListenConfig{}

	httpListener, err := lc.Listen(ctx, "tcp", settings.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.ListenAddress, err)
	}

	healthListener, err := lc.Listen(ctx, "tcp", settings.HealthAddress)
	if err != nil {
		_ = httpListener.Close()

		return fmt.Errorf("listen on %s: %w", settings.HealthAddress, err)
	}

	logger.InfoKV(ctx, "Innometrics server listening",
		"listen_address", httpListener.Addr().String(),
		"health_address", healthListener.Addr().String(),
		"root", root,
		"database", settings.Database,
	)

	return serve(ctx, settings, app, httpListener, healthListener)
}

// serve runs both servers until ctx is canceled, then shuts them down gracefully.
func serve(
	ctx context.Context,
	settings *config.Server,
	app *application,
	httpListener, healthListener net.Listener,
) error {
	gin.SetMode(gin.ReleaseMode)

	//nolint:exhaustruct // Remaining server options keep their defaults.
	httpServer := &http.Server{
		Handler:           app.api.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		if err := grpcServer.Serve(healthListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		app.watchHealth(groupCtx, healthServer)

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down servers")

		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settings.ShutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()

		if err != nil {
			return fmt.Errorf("shutdown HTTP: %w", err)
		}

		return nil
	})

	err := group.Wait()

	logger.Info(ctx, "Servers stopped")

	return err
}

// resolveRoot picks the installation root the same way the bootstrap exports it.
func resolveRoot(root string) (string, error) {
	if root != "" {
		return root, nil
	}

	if root = os.Getenv(config.DefaultRootVariable); root != "" {
		return root, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve installation root: %w", err)
	}

	return wd, nil
}
