package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-engine/internal/auth"
	"github.com/segyhp/loan-engine/internal/cache"
	"github.com/segyhp/loan-engine/internal/config"
	"github.com/segyhp/loan-engine/internal/db"
	"github.com/segyhp/loan-engine/internal/handler"
	"github.com/segyhp/loan-engine/internal/logger"
	"github.com/segyhp/loan-engine/internal/repository"
	"github.com/segyhp/loan-engine/internal/service"
	"github.com/segyhp/loan-engine/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slogger := logger.New(cfg.Server.Env)

	conn, err := db.Connect(cfg)
	if err != nil {
		slogger.Error("connecting to database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.RunMigrations(context.Background(), conn); err != nil {
		slogger.Error("running migrations", "error", err)
		os.Exit(1)
	}

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	store := repository.NewStore(conn)
	listCache := cache.New(redisClient, cfg.GetCacheTTL())
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.GetTokenTTL())

	loanService := service.NewLoanService(store, listCache, slogger)
	paymentService := service.NewPaymentService(store, listCache, slogger)

	loanHandler := handler.NewLoanHandler(loanService, paymentService, cfg)
	authHandler := handler.NewAuthHandler(store, tokens)
	healthHandler := handler.NewHealthHandler(conn, redisClient)
	authMiddleware := auth.NewMiddleware(tokens)

	router := setupRoutes(loanHandler, authHandler, healthHandler, authMiddleware, slogger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	go func() {
		slogger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slogger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	slogger.Info("server exited")
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	loanHandler *handler.LoanHandler,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *auth.Middleware,
	slogger *slog.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.JSONMiddleware)
	router.Use(response.LoggingMiddleware(slogger))

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/loans", loanHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/loans", loanHandler.ListLoans).Methods("GET")
	api.HandleFunc("/loans/{loanId}/installments", loanHandler.ListInstallments).Methods("GET")
	api.HandleFunc("/loans/{loanId}/pay", loanHandler.PayInstallments).Methods("POST")

	return router
}
