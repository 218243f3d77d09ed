package main

import (
	"fmt"

	"cart_service/api"
	"cart_service/internal/config"
	"cart_service/internal/logsink"
	"cart_service/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading configuration: %v", err))
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sink, err := newSink(cfg)
	if err != nil {
		panic(fmt.Errorf("error creating log sink: %v", err))
	}
	defer sink.Close()

	storage, err := newStorage(cfg, logger)
	if err != nil {
		panic(fmt.Errorf("error creating storage: %v", err))
	}

	salesService := sales.NewService(storage, sink)

	r := gin.Default()
	api.InitRoutes(r, salesService, logger)

	logger.Info("starting server", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}
}

func newSink(cfg *config.Config) (*logsink.Logger, error) {
	var sink *logsink.Logger
	var err error
	if cfg.Log.File == "" {
		sink = logsink.New()
	} else if sink, err = logsink.NewFile(cfg.Log.File); err != nil {
		return nil, err
	}
	sink.SetMinLevel(logsink.ParseLevel(cfg.Log.Level))
	return sink, nil
}

func newStorage(cfg *config.Config, logger *zap.Logger) (sales.Storage, error) {
	if cfg.Database.URL == "" {
		logger.Warn("no database configured, using in-memory storage")
		return sales.NewLocalStorage(), nil
	}
	storage, err := sales.NewPostgresStorage(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected and migrated")
	return storage, nil
}
