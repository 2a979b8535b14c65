package server

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/innometrics/innometrics-backend/internal/api/http/innometrics"
	"github.com/innometrics/innometrics-backend/internal/auth"
	"github.com/innometrics/innometrics-backend/internal/config"
	"github.com/innometrics/innometrics-backend/internal/logger"
	"github.com/innometrics/innometrics-backend/internal/repository/storage"
	accountsvc "github.com/innometrics/innometrics-backend/internal/service/account"
	activitysvc "github.com/innometrics/innometrics-backend/internal/service/activity"
)

// HealthService is the service name reported by the health server.
const HealthService = "innometrics"

// healthInterval is how often storage is pinged to refresh the health status.
const healthInterval = 10 * time.Second

// application holds the components served by one Run.
type application struct {
	store *storage.Store
	api   *api.Server
}

// newApplication opens storage and wires the services behind the HTTP API.
func newApplication(ctx context.Context, cfg *config.Server) (*application, error) {
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens(cfg.SecretKey, cfg.TokenTTL)
	if err != nil {
		_ = store.Close()

		return nil, fmt.Errorf("create token issuer: %w", err)
	}

	metrics, err := api.NewMetrics()
	if err != nil {
		_ = store.Close()

		return nil, err
	}

	server := api.NewServer(
		accountsvc.NewService(store, auth.NewPasswords(bcrypt.DefaultCost), tokens),
		activitysvc.NewService(store),
		api.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			TokenTTL:       cfg.TokenTTL,
			Metrics:        metrics,
		},
	)

	return &application{
		store: store,
		api:   server,
	}, nil
}

// Close releases storage.
func (a *application) Close() error {
	return a.store.Close()
}

// watchHealth keeps the health status in line with storage reachability.
func (a *application) watchHealth(ctx context.Context, server *health.Server) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	serving := true

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := a.store.Ping(ctx)
		if (err == nil) == serving {
			continue
		}

		serving = err == nil
		status := healthpb.HealthCheckResponse_SERVING

		if !serving {
			status = healthpb.HealthCheckResponse_NOT_SERVING

			logger.ErrorKV(ctx, "Storage is unreachable", "error", err)
		}

		server.SetServingStatus("", status)
		server.SetServingStatus(HealthService, status)
	}
}
