package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/database"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/middleware"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/routes"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/settlement"
)

func main() {
	// Load .env if present without overwriting already-set variables, so
	// DB_HOST, JWT_SECRET etc are available when running locally.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	for _, envVar := range []string{"DB_HOST", "DB_USER", "DB_NAME", "JWT_SECRET"} {
		if os.Getenv(envVar) == "" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if strings.ToLower(os.Getenv("ENV")) == "development" {
		log.Println("Running in development mode - performing auto-migration")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	} else {
		log.Println("Running in production mode - skipping auto-migration")
	}

	// MOCK_PAY defaults to true: the gateway variant is fixed here, once,
	// for the life of the process.
	mockPay := os.Getenv("MOCK_PAY") != "false"
	engine := settlement.NewEngine(db, settlement.SelectGateway(mockPay))
	if mockPay {
		log.Println("Payment gateway: mock (settles synchronously)")
	} else {
		log.Println("Payment gateway: external (not configured, prepay answers 501)")
	}

	router := routes.InitRouter(db, engine)

	handler := middleware.RequestLogMiddleware(
		middleware.MaxBodyMiddleware(
			middleware.RecoveryMiddleware(router),
		),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
