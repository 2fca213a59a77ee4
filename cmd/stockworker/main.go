package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arkandha/go-cart-payments/internal/catalog"
	"github.com/arkandha/go-cart-payments/internal/config"
	kafkax "github.com/arkandha/go-cart-payments/internal/kafka"
	"github.com/arkandha/go-cart-payments/internal/payments"
	"github.com/arkandha/go-cart-payments/internal/postgres"
	"github.com/arkandha/go-cart-payments/internal/redisx"
	"github.com/arkandha/go-cart-payments/internal/stock"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &stock.Service{
		Catalog: &catalog.Repo{DB: db},
		Redis:   rdb,
		Name:    cfg.ServiceName + "-stock",
	}

	group := getenv("STOCK_GROUP", "stock-worker")
	workers := mustAtoi(os.Getenv("STOCK_WORKERS"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, payments.TopicPaymentSettled, workers)

	go func() {
		log.Printf("stock consumer started: group=%s topic=%s workers=%d", group, payments.TopicPaymentSettled, workers)
		if err := cons.Start(ctx, svc.HandlePaymentSettled); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
