package main

import (
	"context"
	"fmt"
	"time"

	"api_fiado/api"
	"api_fiado/internal/config"
	"api_fiado/internal/kv"
	"api_fiado/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Stored blobs and API responses carry amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading configuration: %v", err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(fmt.Errorf("error creating logger: %v", err))
	}
	defer logger.Sync()

	substrate, opts, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	salesStorage := sales.NewKVStorage(kv.WithPrefix(substrate, cfg.StoreKeyPrefix), logger)
	salesService := sales.NewService(salesStorage, logger, opts...)

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.InitRoutes(r, salesService, logger, cfg.CORSOrigins)

	logger.Info("ledger service starting", zap.String("addr", cfg.HTTPAddr), zap.String("backend", cfg.StoreBackend))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("error trying to start server", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore builds the substrate selected by STORE_BACKEND. The returned
// options carry the cross-process write lock when the backend is shared.
func openStore(ctx context.Context, cfg config.Config) (kv.Substrate, []sales.Option, func(), error) {
	noop := func() {}
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return kv.NewMemory(), nil, noop, nil
	case config.BackendRedis:
		r, err := kv.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, noop, err
		}
		locker := r.Locker(cfg.StoreKeyPrefix+"lock:ledger", 10*time.Second)
		return r, []sales.Option{sales.WithWriteLocker(locker)}, func() { _ = r.Close() }, nil
	case config.BackendPostgres:
		p, err := kv.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, noop, err
		}
		return p, nil, p.Close, nil
	default:
		f, err := kv.NewFile(cfg.StorePath)
		if err != nil {
			return nil, nil, noop, err
		}
		return f, nil, noop, nil
	}
}
