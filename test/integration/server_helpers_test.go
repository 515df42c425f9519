//go:build integration

// Package integration provides end-to-end tests for the carbonfootprint
// binary and its Kafka publisher.
//
// Run with: go test -tags=integration ./test/integration/... -v
package integration

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// server is a running carbonfootprint serve process.
type server struct {
	httpURL  string
	grpcAddr string
}

// freePort reserves an ephemeral port and releases it for the child process.
func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())
	return port
}

// buildBinary compiles cmd/carbonfootprint into a temp dir.
func buildBinary(t *testing.T) string {
	t.Helper()
	rootDir, err := filepath.Abs("../..")
	require.NoError(t, err)

	binPath := filepath.Join(t.TempDir(), "carbonfootprint")
	build := exec.Command("go", "build", "-o", binPath, "./cmd/carbonfootprint")
	build.Dir = rootDir
	out, err := build.CombinedOutput()
	require.NoError(t, err, "build failed: %s", out)
	return binPath
}

// startServer runs serve in test mode with extra environment settings and
// waits until /healthz answers.
func startServer(t *testing.T, env ...string) *server {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	binPath := buildBinary(t)
	httpPort, grpcPort := freePort(t), freePort(t)
	s := &server{
		httpURL:  fmt.Sprintf("http://127.0.0.1:%d", httpPort),
		grpcAddr: fmt.Sprintf("127.0.0.1:%d", grpcPort),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, binPath, "serve")
	cmd.Env = append(os.Environ(),
		"CARBONFOOTPRINT_TEST_MODE=true",
		"CARBONFOOTPRINT_LOG_FORMAT=json",
		fmt.Sprintf("CARBONFOOTPRINT_HTTP_ADDR=127.0.0.1:%d", httpPort),
		"CARBONFOOTPRINT_GRPC_ADDR="+s.grpcAddr,
	)
	cmd.Env = append(cmd.Env, env...)
	cmd.Stderr = os.Stderr
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		cancel()
		_ = cmd.Wait()
	})

	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(s.httpURL + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return s
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not become healthy at %s", s.httpURL)
	return nil
}
