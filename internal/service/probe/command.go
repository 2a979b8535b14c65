package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/innometrics/innometrics-backend/internal/logger"
)

// Options are inputs accepted by Run.
type Options struct {
	// Address is the health service address.
	Address string
	// Service is the checked service name; empty checks the server as a whole.
	Service string
	// Timeout bounds the health call.
	Timeout time.Duration
}

// ErrNotServing is returned when the server answers with any status but SERVING.
var ErrNotServing = errors.New("server is not serving")

// Run performs a single health check.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "probe")

	client, err := Dial(ctx, opts.Address, WithCallTimeout(opts.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	status, err := client.Check(ctx, opts.Service)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Health status received", "address", opts.Address, "status", status.String())

	if status != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%s: %w", status, ErrNotServing)
	}

	return nil
}
