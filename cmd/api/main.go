package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/auth"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/cartstore"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/catalog"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/config"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/events"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/gateway"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/httpx"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/repository"
	"github.com/cancoskuner690-cmd/gulum-mobilya/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{Service: "storefront-api"}).Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		Level:   os.Getenv("LOG_LEVEL"),
	})

	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := repository.New(creds)
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	log.Info("database ready", "host", cfg.DBHost, "db", cfg.DBName)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	carts := cartstore.New(redisClient)
	products := catalog.NewService(repo, redisClient, log)
	provider := gateway.NewStripeProvider(cfg.StripeAPIKey)
	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.ServiceName, log)
	defer publisher.Close()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.ServiceName)

	router := httpx.NewRouter(httpx.RouterDeps{
		Products: httpx.NewProductHandler(products, repo),
		Carts:    httpx.NewCartHandler(carts, products),
		Orders:   httpx.NewOrderHandler(repo, carts, products, publisher, log),
		Checkout: httpx.NewCheckoutHandler(repo, repo, provider, publisher, cfg.OriginURL, log),
		Webhook:  httpx.NewWebhookHandler(repo, repo, publisher, cfg.StripeWebhookSecret, log),
		Auth:     httpx.NewAuthHandler(repo, tokens),
		Contact:  httpx.NewContactHandler(repo),
		Tokens:   tokens,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}
