package main

import (
	"fmt"
	"os"

	"github.com/phoenix-shipper/booking-docs/internal/auth"
	"github.com/phoenix-shipper/booking-docs/internal/cache"
	"github.com/phoenix-shipper/booking-docs/internal/codes"
	"github.com/phoenix-shipper/booking-docs/internal/config"
	"github.com/phoenix-shipper/booking-docs/internal/db"
	"github.com/phoenix-shipper/booking-docs/internal/excel"
	httphandler "github.com/phoenix-shipper/booking-docs/internal/http"
	"github.com/phoenix-shipper/booking-docs/internal/http/middleware"
	"github.com/phoenix-shipper/booking-docs/internal/logger"
	"github.com/phoenix-shipper/booking-docs/internal/pdf"
	"github.com/phoenix-shipper/booking-docs/internal/repository"
	"github.com/phoenix-shipper/booking-docs/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires the service and blocks until the HTTP server stops. Resources
// opened here are released on return.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}
	documentRepo := repository.NewDocumentRepository(database)

	var documentCache cache.DocumentCache = cache.NopCache{}
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, document cache disabled")
		} else {
			defer redisCache.Close()
			documentCache = redisCache
		}
	}

	codeGenerator := codes.NewGenerator(log, codes.WithQRSize(cfg.Documents.QRSize))
	pdfGenerator, err := pdf.NewGenerator(codeGenerator, pdf.Options{
		CompanyName:     cfg.Documents.CompanyName,
		TrackingBaseURL: cfg.Documents.TrackingBaseURL,
		Logger:          log,
	})
	if err != nil {
		return fmt.Errorf("failed to init pdf generator: %w", err)
	}

	documentService := service.NewDocumentService(
		pdfGenerator,
		excel.NewGenerator(),
		documentRepo,
		documentCache,
		nil,
		log,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(documentService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting booking documents service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return err
	}
	return nil
}
