// Command sporelyd runs the lab operations HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"sporely/internal/adapters/httpapi"
	"sporely/internal/blob"
	"sporely/internal/config"
	"sporely/internal/core"
	"sporely/internal/draft"
	"sporely/internal/logging"
	"sporely/internal/prefs"
	"sporely/internal/statekv"
	"sporely/internal/verify"
)

func main() {
	root := &cli.Command{
		Name:  "sporelyd",
		Usage: "Mushroom cultivation lab operations server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to YAML config file"},
			&cli.StringFlag{Name: "addr", Usage: "override HTTP listen address"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("config"), c.String("addr"))
		},
	}
	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServer(ctx context.Context, configPath, addrOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addrOverride != "" {
		cfg.Server.Addr = addrOverride
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	engine := core.NewDefaultRulesEngine()
	store, err := core.OpenPersistentStore(core.StorageDriver(cfg.Storage.Driver), cfg.Storage.SQLitePath, cfg.Storage.PostgresDSN, engine)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusRecorder(registry)
	if err != nil {
		return err
	}
	svc := core.NewService(store, logger, metrics)

	kv, codes, err := openStateStores(cfg)
	if err != nil {
		return fmt.Errorf("open state storage: %w", err)
	}
	stack := draft.NewStack(kv, logger)
	stack.Restore(ctx)
	if depth := stack.Depth(); depth > 0 {
		logger.Info("restored draft stack", zap.Int("depth", depth))
	}

	sender := verify.NewSender(codes, logger)
	sender.SetTTL(cfg.Verify.CodeTTL)
	registerProviders(sender, cfg, logger)

	blobs, err := blob.Open(ctx, blob.Config{
		Driver: blob.Driver(cfg.Blob.Driver),
		FSRoot: cfg.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:    cfg.Blob.S3Bucket,
			Region:    cfg.Blob.S3Region,
			Endpoint:  cfg.Blob.S3Endpoint,
			PathStyle: cfg.Blob.S3PathStyle,
		},
	})
	if err != nil {
		return fmt.Errorf("open blob storage: %w", err)
	}

	mux := httpapi.NewMux(httpapi.Deps{
		Service: svc,
		Stack:   stack,
		Blobs:   blobs,
		Verify:  verify.NewHandler(sender),
		Prefs:   prefs.NewStore(kv),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage_driver", cfg.Storage.Driver),
			zap.String("blob_driver", cfg.Blob.Driver))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStateStores selects the draft-stack KV and the verification code store.
// The memory storage driver keeps both in-process; every other driver uses
// sqlite sidecar files next to the main database so drafts and codes survive
// a restart regardless of the primary backend.
func openStateStores(cfg *config.Config) (statekv.KV, verify.CodeStore, error) {
	if cfg.Storage.Driver == "memory" {
		return statekv.NewMemory(), verify.NewMemoryStore(), nil
	}
	base := cfg.Storage.SQLitePath
	kv, err := statekv.NewSQLite(base + ".state")
	if err != nil {
		return nil, nil, err
	}
	codes, err := verify.NewSQLiteStore(base + ".codes")
	if err != nil {
		return nil, nil, err
	}
	return kv, codes, nil
}

// registerProviders wires delivery per channel: the configured webhook gateway
// first with log delivery as fallback, or log delivery alone when no gateway
// is configured.
func registerProviders(sender *verify.Sender, cfg *config.Config, logger *zap.Logger) {
	email := []verify.Provider{}
	if cfg.Verify.EmailWebhookURL != "" {
		email = append(email, verify.WebhookProvider{
			Channel: verify.ChannelEmail,
			URL:     cfg.Verify.EmailWebhookURL,
			Sender:  cfg.Verify.EmailFrom,
		})
	}
	email = append(email, verify.LogProvider{Channel: verify.ChannelEmail, Log: logger})
	sender.RegisterProviders(verify.ChannelEmail, email...)

	sms := []verify.Provider{}
	if cfg.Verify.SMSWebhookURL != "" {
		sms = append(sms, verify.WebhookProvider{
			Channel: verify.ChannelSMS,
			URL:     cfg.Verify.SMSWebhookURL,
			Sender:  cfg.Verify.SMSSender,
		})
	}
	sms = append(sms, verify.LogProvider{Channel: verify.ChannelSMS, Log: logger})
	sender.RegisterProviders(verify.ChannelSMS, sms...)
}
