package main

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/volley-scoreboard/internal/config"
	"github.com/DoyleJ11/volley-scoreboard/internal/engine"
)

func testConfig(t *testing.T, addr string) config.Config {
	t.Helper()
	return config.Config{
		Addr:    addr,
		DataDir: filepath.Join(t.TempDir(), "data"),
		Rules:   engine.DefaultRules(),
	}
}

// runAsync starts run and returns a channel with its result.
func runAsync(ctx context.Context, t *testing.T, cfg config.Config) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zaptest.NewLogger(t)) }()
	return done
}

func TestRun_ReturnsWhenAddressIsTaken(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := runAsync(context.Background(), t, testConfig(t, ln.Addr().String()))

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the listener failed")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, t, testConfig(t, "127.0.0.1:0"))

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
