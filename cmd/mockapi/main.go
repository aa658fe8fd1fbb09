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

	"spendsync/internal/log"
	"spendsync/internal/mockapi"
	"spendsync/internal/notify"
)

func main() {
	_ = godotenv.Load()

	logger := log.Setup(getEnv("SPENDSYNC_LOG_LEVEL", "info"), getEnv("SPENDSYNC_LOG_FORMAT", "text"))

	port := getEnv("PORT", "8080")
	secret := getEnv("MOCKAPI_JWT_SECRET", "dev-secret-do-not-use-in-prod")

	// The change feed is optional. Without AMQP the server just skips
	// announcements.
	var publisher mockapi.Publisher
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		client, err := notify.NewClient(amqpURL,
			getEnv("AMQP_EXCHANGE", "spendsync"),
			getEnv("AMQP_QUEUE", "resource_changes"))
		if err != nil {
			logger.Error("Failed to connect change feed", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("Change feed connected", "url", amqpURL)
	}

	server, err := mockapi.NewServer([]byte(secret), publisher)
	if err != nil {
		logger.Error("Failed to build server", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:           ":" + port,
		Handler:        server.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting mock API server", "port", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
