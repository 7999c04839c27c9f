package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()
	logging.Configure(cfg.Log.Level)
	defer logging.Sync()

	logger := logging.NewLoggerV2("shipping-tax-service")

	logging.Infof("Starting shipping-tax-service on port %d", cfg.Server.Port)

	checks := make(map[string]handlers.ReadinessCheck)

	var rates repository.TaxRateSource
	switch cfg.TaxRates.Source {
	case config.TaxRatesSourceStatic:
		logger.Info("Using built-in tax table")
		rates = repository.NewDutchTaxRateRepository()
	default:
		db, err := initDatabase(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
		}
		defer db.Close()

		checks["database"] = db.PingContext
		rates = repository.NewPostgresTaxRateRepository(db, logger)
	}

	var invalidator service.RateInvalidator
	if cfg.Features.EnableRateCaching {
		rateCache := repository.NewRedisTaxRateCache(cfg.Redis)
		defer rateCache.Close()

		checks["redis"] = rateCache.Ping
		cached := repository.NewCachedTaxRateSource(rates, rateCache)
		rates = cached
		invalidator = cached
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	cartClient := clients.NewHTTPCartClient(cfg.CartService, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	allocator := service.NewShippingTaxAllocator(rates)
	shippingTaxService := service.NewShippingTaxService(
		allocator,
		cartClient,
		invalidator,
		eventPublisher,
		m,
		cfg,
	)

	h := handlers.NewHandlers(shippingTaxService, checks, cfg)

	srv := server.New(h, cfg, registry)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                cfg.Server.Port,
			"tax_rates_source":    cfg.TaxRates.Source,
			"enable_rate_caching": cfg.Features.EnableRateCaching,
			"enable_tax_events":   cfg.Features.EnableTaxEvents,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	// Tax table changes only matter while rates are cached.
	var eventConsumer *events.KafkaConsumer
	if cfg.Features.EnableRateCaching {
		eventConsumer = events.NewKafkaConsumer(cfg.Kafka, shippingTaxService, logger)
		go func() {
			if err := eventConsumer.Start(context.Background()); err != nil {
				logger.Error("Event consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if eventConsumer != nil {
		eventConsumer.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logging.Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})

	return db, nil
}
