// Command insightlab runs the interview research gateway: project CRUD,
// prompt enhancement, session provisioning, and transcript storage over
// one HTTP listener.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/insightlab/insightlab/pkg/agent"
	"github.com/insightlab/insightlab/pkg/gateway/config"
	"github.com/insightlab/insightlab/pkg/gateway/handlers"
	"github.com/insightlab/insightlab/pkg/gateway/metrics"
	gatewayserver "github.com/insightlab/insightlab/pkg/gateway/server"
	"github.com/insightlab/insightlab/pkg/prompt"
	"github.com/insightlab/insightlab/pkg/store"
)

// gatewayStore is what run needs from the storage layer.
type gatewayStore interface {
	gatewayserver.Storage
	Close()
}

type appDeps struct {
	loadConfig   func() (config.Config, error)
	openStore    func(ctx context.Context, cfg config.Config, logger *slog.Logger) (gatewayStore, error)
	newEnhancer  func(ctx context.Context, cfg config.Config, logger *slog.Logger) (handlers.PromptEnhancer, error)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)
}

func defaultAppDeps() appDeps {
	return appDeps{
		loadConfig: config.LoadFromEnv,
		openStore: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (gatewayStore, error) {
			if err := store.Migrate(cfg.DatabaseURL); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			return store.New(ctx, cfg.DatabaseURL, logger)
		},
		newEnhancer: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (handlers.PromptEnhancer, error) {
			return prompt.NewEnhancer(ctx, prompt.EnhancerConfig{
				APIKey: cfg.GeminiAPIKey,
				Model:  cfg.PromptModel,
				Logger: logger,
			})
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
	}
}

func run(ctx context.Context, logger *slog.Logger, deps appDeps) error {
	if deps.loadConfig == nil || deps.openStore == nil || deps.newEnhancer == nil {
		return errors.New("missing dependency")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := deps.openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var enhancer handlers.PromptEnhancer
	if cfg.GeminiAPIKey != "" {
		enhancer, err = deps.newEnhancer(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("prompt enhancer: %w", err)
		}
	} else {
		logger.Warn("prompt enhancement disabled, no model API key configured")
	}

	provisioner := &agent.Provisioner{
		BaseURL:           cfg.AgentBaseURL,
		APIKey:            cfg.AgentAPIKey,
		PlaceholderPrefix: cfg.PlaceholderPrefix,
		Logger:            logger,
	}
	if cfg.AgentAPIKey == "" {
		logger.Warn("voice vendor key not configured, sessions will be simulated")
	}

	gw := gatewayserver.New(cfg, logger, gatewayserver.Deps{
		Store:       st,
		Enhancer:    enhancer,
		Provisioner: provisioner,
		Metrics:     metrics.New("insightlab"),
	})
	httpSrv := buildHTTPServer(cfg, gw.Handler())

	logger.Info("starting gateway", "addr", cfg.Addr, "auth_mode", cfg.AuthMode)

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("gateway stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer, deps appDeps) int {
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(stderr, "insightlab: load .env: %v\n", err)
			return 1
		}
	}

	if err := run(ctx, logger, deps); err != nil {
		fmt.Fprintf(stderr, "insightlab: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultAppDeps()))
}
