package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-textile-inventory/internal/alerts"
	"github.com/ariefcatur/go-textile-inventory/internal/config"
	"github.com/ariefcatur/go-textile-inventory/internal/events"
	kafkax "github.com/ariefcatur/go-textile-inventory/internal/kafka"
	"github.com/ariefcatur/go-textile-inventory/internal/postgres"
	"github.com/ariefcatur/go-textile-inventory/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer for stock.low notifications
	prod := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicStockLow, 1024)
	prod.Start(ctx)

	svc := &alerts.Service{
		Store:       postgres.NewStore(db),
		Redis:       rdb,
		Producer:    prod,
		ServiceName: cfg.ServiceName + "-alerts",
	}

	group := getenv("ALERTS_GROUP", "stock-alerts")
	workers := mustAtoi(os.Getenv("ALERTS_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicOrderCreated, workers)

	go func() {
		log.Printf("alerts consumer started: group=%s topic=%s workers=%d", group, events.TopicOrderCreated, workers)
		if err := cons.Start(ctx, svc.HandleOrderCreated); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	prod.Close()
	prod.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
