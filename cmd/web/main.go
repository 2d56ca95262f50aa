package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alc/leasing-form/internal/config"
	"github.com/alc/leasing-form/internal/forms"
	"github.com/alc/leasing-form/internal/leasing"
	"github.com/alc/leasing-form/internal/middleware"
	"github.com/alc/leasing-form/internal/observability"
	"github.com/alc/leasing-form/internal/server"
	"github.com/alc/leasing-form/internal/vehicles"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = observability.WithLogger(ctx, logger)

	repo, closeRepo, err := openVehicles(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to open vehicle storage", zap.Error(err))
	}
	defer closeQuietly(logger, "vehicle storage", closeRepo)

	store, ready, closeStore, err := openFormStore(ctx, cfg.Forms)
	if err != nil {
		logger.Fatal("failed to open form store", zap.Error(err))
	}
	defer closeQuietly(logger, "form store", closeStore)

	calcOpts := []leasing.CalculatorOption{
		leasing.WithCurrency(cfg.Pricing.Currency),
		leasing.WithFallbackBase(cfg.Pricing.FallbackBase),
	}
	if cfg.Pricing.ComboDiscount {
		calcOpts = append(calcOpts, leasing.WithRules(leasing.NineMonthFullCoverDiscount()))
		logger.Info("combo discount enabled")
	}

	if cfg.Admin.Token == "" {
		logger.Warn("admin token not set; admin sign-in is disabled")
	}
	var signingKey []byte
	if cfg.Session.SigningKey != "" {
		signingKey = []byte(cfg.Session.SigningKey)
	} else {
		logger.Warn("session signing key not set; sessions will not survive a restart")
	}

	srv, err := server.New(server.Config{
		Address:      cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Logger:       logger,
		Vehicles:     repo,
		Forms:        store,
		Calculator:   leasing.NewCalculator(calcOpts...),
		Messenger: leasing.Messenger{
			BaseURL:         cfg.Contact.MessagingBaseURL,
			FallbackContact: cfg.Contact.FallbackNumber,
		},
		Session: middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			SigningKey: signingKey,
			Secure:     cfg.Session.Secure,
		},
		AdminBasePath: cfg.Admin.BasePath,
		Authenticator: middleware.StaticTokenAuthenticator{Token: cfg.Admin.Token},
		Ready:         ready,
	})
	if err != nil {
		logger.Fatal("failed to build http server", zap.Error(err))
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("environment", cfg.Server.Environment),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("forms", cfg.Forms.Store),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

func openVehicles(ctx context.Context, cfg config.StorageConfig) (vehicles.Repository, io.Closer, error) {
	seed, err := vehicles.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		return nil, nil, err
	}
	logger := observability.FromContext(ctx)

	switch cfg.Driver {
	case "sqlite":
		repo, err := vehicles.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		n, err := repo.Seed(ctx, seed)
		if err != nil {
			_ = repo.Close()
			return nil, nil, err
		}
		logger.Info("sqlite vehicle storage ready", zap.String("path", cfg.SQLitePath), zap.Int("seeded", n))
		return repo, repo, nil
	default:
		logger.Info("in-memory vehicle storage ready", zap.Int("vehicles", len(seed)))
		return vehicles.NewStaticRepository(seed), nil, nil
	}
}

func openFormStore(ctx context.Context, cfg config.FormsConfig) (forms.Store, func() error, io.Closer, error) {
	switch cfg.Store {
	case "redis":
		client := forms.NewRedisClient(forms.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := forms.NewRedisStore(client, cfg.TTL, cfg.Redis.Prefix)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close()
			return nil, nil, nil, err
		}
		ready := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return store.Ping(ctx)
		}
		return store, ready, store, nil
	default:
		return forms.NewMemoryStore(cfg.TTL), nil, nil, nil
	}
}

func closeQuietly(logger *zap.Logger, name string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("close error", zap.String("resource", name), zap.Error(err))
	}
}
