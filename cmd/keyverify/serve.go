package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/yourorg/keyverify/internal/api"
	"github.com/yourorg/keyverify/internal/console"
	"github.com/yourorg/keyverify/internal/registry"
)

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(*envFile); err == nil {
				if err := godotenv.Load(*envFile); err != nil {
					return oops.In("main").Wrapf(err, "load env file %s", *envFile)
				}
			}

			cfg := api.LoadConfig()
			if cfg.Version == "" {
				cfg.Version = BuildVersion
			}
			return run(cmd.Context(), cfg)
		},
	}
}

func run(ctx context.Context, cfg api.Config) error {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	seed, err := seedKeys(cfg)
	if err != nil {
		return err
	}

	store := registry.NewStore(seed, registry.WithLogger(logger))
	metrics := api.NewMetrics(store)
	pdf := console.PDFRenderer{ChromiumPath: cfg.PDFChromiumPath, Timeout: cfg.PDFTimeout}
	handler := api.NewHandler(store, cfg, metrics, pdf, logger)

	srv := &http.Server{
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return oops.In("main").Wrapf(err, "listen on %s", cfg.Addr())
	}

	logger.InfoContext(ctx, "key verification service started",
		slog.String("addr", ln.Addr().String()),
		slog.String("verifyEndpoint", "/verificar?chave=YOUR_KEY"),
		slog.Int("validKeys", store.Keys().Len()),
		slog.String("version", cfg.Version),
	)
	store.RecordStartup(cfg.Host)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return oops.In("main").Wrapf(err, "serve http")
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, draining connections", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.In("main").Wrapf(err, "shutdown http server")
	}
	logger.Info("server stopped")
	return nil
}

func seedKeys(cfg api.Config) ([]string, error) {
	if cfg.SeedKeysFile != "" {
		return registry.LoadSeedFile(cfg.SeedKeysFile)
	}
	if keys := registry.ParseSeedList(cfg.SeedKeys); len(keys) > 0 {
		return keys, nil
	}
	return registry.DefaultSeedKeys, nil
}

func newLogger(cfg api.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(slogctx.NewHandler(h, nil))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
