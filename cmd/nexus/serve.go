package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Archer110/nexus/internal/breaker"
	"github.com/Archer110/nexus/internal/cache"
	"github.com/Archer110/nexus/internal/config"
	"github.com/Archer110/nexus/internal/events"
	h "github.com/Archer110/nexus/internal/http"
	mongorepo "github.com/Archer110/nexus/internal/repository/mongo"
	"github.com/Archer110/nexus/internal/repository/postgres"
	"github.com/Archer110/nexus/internal/service"
	"github.com/Archer110/nexus/internal/telemetry"
	"github.com/sirupsen/logrus"
)

const cartCleanerGroup = "nexus-cart-cleaner"

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	log.WithField("version", version).Info("nexus starting...")

	shutdownTracing, err := telemetry.InitTracerProvider(ctx, serviceName, version, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			log.WithError(err).Warn("failed to flush traces")
		}
	}()

	db, err := openPostgres(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	mdb, err := openMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer disconnect(mdb, log)

	catalogRepo := mongorepo.NewCatalogRepository(mdb)
	cartRepo := mongorepo.NewCartRepository(mdb)
	if err := catalogRepo.CreateIndexes(ctx); err != nil {
		return err
	}
	if err := cartRepo.CreateIndexes(ctx, cfg.CartTTL); err != nil {
		return err
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	inventoryRepo := postgres.NewInventoryRepository(db)
	orderRepo := postgres.NewOrderRepository(db)

	products := service.NewGuardedCatalog(catalogRepo, breaker.DefaultSettings("catalog"), log)
	catalogService := service.NewCatalogService(catalogRepo, inventoryRepo, cfg.ProductsPerPage, log)
	cartService := service.NewCartService(cartRepo, cache.NewRedisCache(redisClient, cfg.CartCacheTTL), products, cfg.Currency, log)
	checkoutService := service.NewCheckoutService(cartService, products, orderRepo, cfg.Currency, log)
	orderService := service.NewOrderService(orderRepo, products, log)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	if cfg.KafkaEnabled() {
		writer := events.NewWriter(cfg.OrderEventsTopic, cfg.KafkaBrokers...)
		defer writer.Close()
		reader := events.NewReader(cfg.OrderEventsTopic, cartCleanerGroup, cfg.KafkaBrokers...)
		defer reader.Close()

		publisher := events.NewOutboxPublisher(postgres.NewOutboxRepository(db), writer, time.Second, log)
		cleaner := events.NewCartCleaner(reader, cartService, log)

		wg.Add(2)
		go func() {
			defer wg.Done()
			publisher.Run(bgCtx)
		}()
		go func() {
			defer wg.Done()
			cleaner.Run(bgCtx)
		}()
		log.WithField("brokers", cfg.KafkaBrokers).Info("order events enabled")
	} else {
		log.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	router := h.NewRouter(h.RouterConfig{
		ServiceName:    serviceName,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodySize:    cfg.MaxRequestBodySize,
		SessionTTL:     cfg.CartTTL,
		SecureCookies:  cfg.SecureCookies,
		AdminUser:      cfg.AdminUser,
		AdminPassword:  cfg.AdminPassword,
		AdminPerPage:   cfg.AdminPerPage,
	}, h.Services{
		Catalog:  catalogService,
		Carts:    cartService,
		Checkout: checkoutService,
		Orders:   orderService,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			bgCancel()
			wg.Wait()
			return err
		}
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	bgCancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("background workers stopped cleanly")
	case <-shutdownCtx.Done():
		log.Warn("background workers did not stop before the shutdown timeout")
	}

	log.Info("server exited")
	return nil
}
