package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arkandha/go-cart-payments/internal/cart"
	"github.com/arkandha/go-cart-payments/internal/catalog"
	"github.com/arkandha/go-cart-payments/internal/config"
	"github.com/arkandha/go-cart-payments/internal/httpx"
	kafkax "github.com/arkandha/go-cart-payments/internal/kafka"
	"github.com/arkandha/go-cart-payments/internal/payments"
	"github.com/arkandha/go-cart-payments/internal/postgres"
	"github.com/arkandha/go-cart-payments/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pInit := kafkax.NewProducer(cfg.KafkaBrokers, payments.TopicPaymentInitiated, 1024)
	pInit.Start(ctx)
	pSettle := kafkax.NewProducer(cfg.KafkaBrokers, payments.TopicPaymentSettled, 1024)
	pSettle.Start(ctx)

	// Repos & services
	cartRepo := &cart.Repo{DB: db}
	catalogRepo := &catalog.Repo{DB: db}
	orderRepo := &payments.Repo{DB: db}

	initiator := &payments.Initiator{
		Carts:         cartRepo,
		Orders:        orderRepo,
		Gateway:       payments.NewGatewayClient(cfg.GatewayURL, cfg.GatewayClientID, cfg.GatewayClientSecret, cfg.GatewayTimeout),
		Producer:      pInit,
		Service:       cfg.ServiceName,
		Currency:      cfg.Currency,
		CustomerEmail: cfg.CustomerEmail,
		CustomerPhone: cfg.CustomerPhone,
	}
	reconciler := &payments.Reconciler{
		Secret:   []byte(cfg.WebhookSecret),
		Orders:   orderRepo,
		Redis:    rdb,
		Producer: pSettle,
		Service:  cfg.ServiceName,
	}

	// HTTP
	router := httpx.NewRouter()
	(&httpx.CartHandler{Store: cartRepo, Redis: rdb}).Register(router)
	(&httpx.CatalogHandler{Store: catalogRepo}).Register(router)
	(&httpx.PaymentHandler{Initiator: initiator, Reconciler: reconciler}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pInit.Close()
	pSettle.Close()
	cancel()
	pInit.WaitClosed()
	pSettle.WaitClosed()
}
