package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"yamdb/internal/config"
	"yamdb/internal/database"
	"yamdb/internal/router"
	"yamdb/internal/services"
	"yamdb/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Notifier ---
	notifier, closeNotifier, err := newNotifier(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer closeNotifier()

	// --- Fiber App ---
	app := router.New(router.Options{
		DB:       db,
		Notifier: notifier,
		Auth: services.AuthConfig{
			JWTSecret:       cfg.JWTSecret,
			TokenTTL:        cfg.TokenTTL,
			RotateCodeOnUse: cfg.RotateConfirmationCode,
		},
		AuthRateLimit: cfg.AuthRateLimit,
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("Server gracefully stopped")
}

// newNotifier returns the broker-backed notifier when RABBITMQ_URL is set and
// the log notifier otherwise. The returned func releases the connection.
func newNotifier(cfg config.Config) (services.Notifier, func(), error) {
	if cfg.RabbitMQURL == "" {
		log.Println("RABBITMQ_URL is empty; confirmation codes will be logged")
		return services.NewLogNotifier(), func() {}, nil
	}

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.ConfirmationQueue})
	if err != nil {
		return nil, nil, err
	}

	// Deliveries are round-robined between consumers, so this one must stay
	// off whenever a mail worker reads the same queue.
	if cfg.ConsumeConfirmations {
		go func() {
			log.Println("Starting RabbitMQ consumer for confirmation codes...")
			if consumerErr := mqClient.ConsumeConfirmationCodes(logConfirmation); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	return mqClient, func() {
		if err := mqClient.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}, nil
}

// logConfirmation stands in for mail delivery in development setups.
func logConfirmation(m rabbitmq.ConfirmationMessage) error {
	log.Printf("Confirmation code for %s <%s>: %s (issued %s)", m.Username, m.Email, m.Code, m.IssuedAt)
	return nil
}
