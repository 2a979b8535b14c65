package integration

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/innometrics/innometrics-backend/internal/config"
	"github.com/innometrics/innometrics-backend/internal/service/server"
)

// reservePort returns address on a free TCP port and closes it.
func reservePort(t *testing.T) string {
	t.Helper()

	lc := net.ListenConfig{}

	l, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startServer runs innometrics-server from a temporary installation root and
// waits until the HTTP API answers. The returned stop function waits for shutdown.
func startServer(t *testing.T) (root, httpAddr, healthAddr string, stop func()) {
	t.Helper()

	root = t.TempDir()
	httpAddr = reservePort(t)
	healthAddr = reservePort(t)

	require.NoError(t, config.SaveServer(filepath.Join(root, config.DefaultServerFilename), &config.Server{
		SecretKey:     "integration-secret",
		ListenAddress: httpAddr,
		HealthAddress: healthAddr,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{Root: root})
	}()

	client := &http.Client{Timeout: time.Second}

	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + httpAddr + "/metrics")
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	return root, httpAddr, healthAddr, func() {
		cancel()
		require.NoError(t, <-done)
	}
}
