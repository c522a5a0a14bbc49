package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-textile-inventory/internal/analytics"
	"github.com/ariefcatur/go-textile-inventory/internal/auth"
	"github.com/ariefcatur/go-textile-inventory/internal/config"
	"github.com/ariefcatur/go-textile-inventory/internal/events"
	"github.com/ariefcatur/go-textile-inventory/internal/httpx"
	"github.com/ariefcatur/go-textile-inventory/internal/inventory"
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
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024)
	prod.Start(ctx)

	// Services
	store := postgres.NewStore(db)
	svc := inventory.NewService(store)
	engine := analytics.NewEngine(store)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, cfg.ServiceName)
	authSvc := auth.NewService(store, tokens)

	if err := authSvc.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	// Router & handlers
	router := httpx.NewRouter()
	gate := &httpx.AuthGate{Svc: authSvc}
	(&httpx.AuthHandler{Svc: authSvc, Users: store}).Register(router)
	(&httpx.ProductsHandler{Svc: svc, Cache: rdb}).Register(router, gate)
	(&httpx.OrdersHandler{Svc: svc, Producer: prod, Cache: rdb, Service: cfg.ServiceName}).Register(router, gate)
	(&httpx.AnalyticsHandler{Engine: engine, Cache: rdb}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // stop accepting -> flush & close writer
	prod.WaitClosed()
}
