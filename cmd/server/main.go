package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealership-service/config"
	"dealership-service/internal/api"
	"dealership-service/internal/broker"
	"dealership-service/internal/cartstore"
	"dealership-service/internal/catalog"
	"dealership-service/internal/service"
	"dealership-service/internal/store"
	"dealership-service/internal/util"
	"dealership-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting dealership service")

	tp, err := util.InitTracer("dealership-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	cat, err := loadCatalog(db)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Println("Catalog loaded")

	cartTTL := time.Duration(cfg.Business.CartTTLMinutes) * time.Minute
	carts, err := cartstore.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cartTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer carts.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicBookings)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	cartService := service.NewCartService(carts, cat)
	bookingService := service.NewBookingService(db, cat, cartService, eventPublisher)
	gateway := service.NewHTTPGateway(cfg.Payment.GatewayURL)
	paymentService := service.NewPaymentService(gateway, bookingService, eventPublisher, cfg.Payment.Currency)
	trackingService := service.NewTrackingService(db)
	paymentProcessor := service.NewPaymentEventProcessor(db, bookingService)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	paymentConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicBookings, cfg.Kafka.ConsumerGroup)
	paymentWorker := worker.NewPaymentWorker(paymentConsumer, paymentProcessor)
	go func() {
		if err := paymentWorker.Start(workerCtx); err != nil {
			log.Printf("Payment worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(cat, cartService, bookingService, paymentService, trackingService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	paymentWorker.Stop()

	log.Println("Server exited")
}

// loadCatalog reads the read-only catalog collections from Postgres into
// memory once at startup.
func loadCatalog(db *store.Store) (*catalog.Catalog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cars, err := db.LoadCars(ctx)
	if err != nil {
		return nil, err
	}
	parts, err := db.LoadParts(ctx)
	if err != nil {
		return nil, err
	}
	serviceTypes, err := db.LoadServiceTypes(ctx)
	if err != nil {
		return nil, err
	}
	serviceCenters, err := db.LoadServiceCenters(ctx)
	if err != nil {
		return nil, err
	}
	coupons, err := db.LoadCoupons(ctx)
	if err != nil {
		return nil, err
	}
	vins, err := db.LoadVinRegistry(ctx)
	if err != nil {
		return nil, err
	}

	return catalog.New(cars, parts, serviceTypes, serviceCenters, coupons, vins), nil
}
