package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zawawiya-store/internal/cache"
	"zawawiya-store/internal/client"
	"zawawiya-store/internal/clock"
	"zawawiya-store/internal/config"
	"zawawiya-store/internal/event"
	"zawawiya-store/internal/handler"
	"zawawiya-store/internal/logger"
	"zawawiya-store/internal/repository"
	"zawawiya-store/internal/server"
	"zawawiya-store/internal/service"
	"zawawiya-store/internal/token"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment.Name, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := client.InitDBClient(&cfg.DB, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	clk := clock.Real{}

	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	cartRepo := repository.NewCartRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	if cfg.DB.Seed {
		if err := shippingRepo.Seed(ctx); err != nil {
			log.Fatal("seed shipping services", zap.Error(err))
		}
		if err := productRepo.Seed(ctx); err != nil {
			log.Fatal("seed catalog", zap.Error(err))
		}
		log.Info("seed data loaded")
	}

	var regionCache cache.Store = cache.NewMemory(clk)
	if cfg.Redis.Addr != "" {
		rdb, err := client.InitRedisClient(&cfg.Redis, log)
		if err != nil {
			log.Fatal("redis init failed", zap.Error(err))
		}
		defer rdb.Close()
		regionCache = cache.NewRedis(rdb, "zawawiya:")
	}

	var publisher event.Publisher = event.Noop{}
	var producer *event.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = event.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Buffer, log)
		producer.Start(context.Background())
		publisher = producer
		log.Info("event publishing enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	issuer := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL, clk)
	gateway := client.NewMidtransClient(&cfg.Midtrans)

	expiryService := service.NewExpiryService(db, clk, log, publisher, orderRepo, paymentRepo)
	checkoutService := service.NewCheckoutService(
		db, clk, log, publisher,
		orderRepo, paymentRepo, shipmentRepo, shippingRepo, cartRepo, addressRepo,
	)
	orderService := service.NewOrderService(
		db, clk, log, publisher, expiryService,
		orderRepo, paymentRepo, cartRepo, productRepo, reviewRepo,
	)
	paymentService := service.NewPaymentService(
		db, clk, log, publisher, gateway, expiryService,
		orderRepo, paymentRepo, userRepo, webhookEventRepo,
	)
	adminOrderService := service.NewAdminOrderService(
		db, clk, log, publisher,
		orderRepo, paymentRepo, shipmentRepo, productRepo,
	)
	returnService := service.NewReturnService(db, log, publisher, orderRepo, returnRepo)
	reviewService := service.NewReviewService(db, orderRepo, userRepo, reviewRepo)
	cartService := service.NewCartService(db, clk, cartRepo, productRepo)
	catalogService := service.NewCatalogService(db, log, productRepo, cartRepo)
	addressService := service.NewAddressService(db, addressRepo)
	shippingService := service.NewShippingService(db, shippingRepo)
	authService := service.NewAuthService(
		db, log, issuer,
		service.NewOTPStore(clk, cfg.OTP.TTL),
		service.NewLogMailer(log),
		userRepo, cartRepo,
	)
	regionService := service.NewRegionService(client.NewRegionClient(&cfg.Region), regionCache, cfg.Region.CacheTTL, log)
	reportService := service.NewReportService(orderRepo)

	srv := server.NewServer(server.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Catalog: handler.NewCatalogHandler(catalogService, shippingService),
		Cart:    handler.NewCartHandler(cartService),
		Address: handler.NewAddressHandler(addressService),
		Order:   handler.NewOrderHandler(checkoutService, orderService, paymentService),
		Payment: handler.NewPaymentHandler(paymentService),
		Return:  handler.NewReturnHandler(returnService),
		Review:  handler.NewReviewHandler(reviewService),
		Region:  handler.NewRegionHandler(regionService),
		Admin:   handler.NewAdminHandler(adminOrderService, returnService, reportService),
	}, issuer, log, server.Options{AuthRateLimit: cfg.HTTP.AuthRateLimit})

	if cfg.Expiry.SweepInterval > 0 {
		go expiryService.RunSweeper(ctx, cfg.Expiry.SweepInterval)
		log.Info("payment expiry sweeper started", zap.Duration("interval", cfg.Expiry.SweepInterval))
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	// requests are drained, so nothing publishes after this point
	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("shutdown complete")
}
