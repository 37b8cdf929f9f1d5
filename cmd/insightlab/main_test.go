package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/insightlab/insightlab/pkg/gateway/config"
	"github.com/insightlab/insightlab/pkg/gateway/handlers"
)

func TestRunMain_ReturnsNonZeroWhenConfigLoadFails(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	exitCode := runMain(context.Background(), &stderr, appDeps{
		loadConfig: func() (config.Config, error) {
			return config.Config{}, errors.New("boom")
		},
		openStore: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (gatewayStore, error) {
			t.Fatal("openStore should not be called when config load fails")
			return nil, nil
		},
		newEnhancer: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (handlers.PromptEnhancer, error) {
			t.Fatal("newEnhancer should not be called when config load fails")
			return nil, nil
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {},
		signalStop:   func(c chan<- os.Signal) {},
	})

	if exitCode != 1 {
		t.Fatalf("exitCode=%d, want 1", exitCode)
	}
	if stderr.String() == "" {
		t.Fatal("expected stderr output for startup error")
	}
}

func TestRunMain_ReturnsNonZeroWhenStoreOpenFails(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	exitCode := runMain(context.Background(), &stderr, appDeps{
		loadConfig: func() (config.Config, error) {
			return config.Config{DatabaseURL: "postgres://localhost/insightlab"}, nil
		},
		openStore: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (gatewayStore, error) {
			return nil, errors.New("connection refused")
		},
		newEnhancer: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (handlers.PromptEnhancer, error) {
			t.Fatal("newEnhancer should not be called when store open fails")
			return nil, nil
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {},
		signalStop:   func(c chan<- os.Signal) {},
	})

	if exitCode != 1 {
		t.Fatalf("exitCode=%d, want 1", exitCode)
	}
}

func TestBuildHTTPServer_UsesConfiguredAddress(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Addr:              "127.0.0.1:9999",
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       3 * time.Second,
	}

	srv := buildHTTPServer(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	if srv.Addr != cfg.Addr {
		t.Fatalf("Addr=%q, want %q", srv.Addr, cfg.Addr)
	}
	if srv.ReadHeaderTimeout != cfg.ReadHeaderTimeout {
		t.Fatalf("ReadHeaderTimeout=%v, want %v", srv.ReadHeaderTimeout, cfg.ReadHeaderTimeout)
	}
	if srv.ReadTimeout != cfg.ReadTimeout {
		t.Fatalf("ReadTimeout=%v, want %v", srv.ReadTimeout, cfg.ReadTimeout)
	}
}
