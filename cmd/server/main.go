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

	"bokeeb.kz/site-backend/internal/api"
	"bokeeb.kz/site-backend/internal/auth"
	"bokeeb.kz/site-backend/internal/config"
	"bokeeb.kz/site-backend/internal/core"
	"bokeeb.kz/site-backend/internal/ratelimit"
	"bokeeb.kz/site-backend/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	if err := seedAdminUser(dbStore); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	// Initialize services
	siteService := core.NewSiteService(dbStore)
	chatProxy := core.NewChatProxy(
		config.AppConfig.AIGatewayURL,
		config.AppConfig.AIGatewayKey,
		config.AppConfig.AIModel,
	)
	limiter := ratelimit.NewLimiter(
		config.AppConfig.ChatRateLimit,
		time.Duration(config.AppConfig.ChatRateWindowSeconds)*time.Second,
	)

	// Initialize API handlers and router
	chatHandler := api.NewChatHandler(chatProxy, siteService, limiter)
	siteHandler := api.NewSiteHandler(siteService, dbStore)
	router := api.NewRouter(chatHandler, siteHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No write timeout: completion streams are long-lived and the
		// relay must not be cut off mid-answer.
		IdleTimeout: 120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections, including open streams, time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}

// seedAdminUser creates the back-office account from ADMIN_EMAIL and
// ADMIN_PASSWORD when the table is empty. There is no self-serve signup.
func seedAdminUser(dbStore *store.SQLiteStore) error {
	count, err := dbStore.CountAdminUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := config.AppConfig.AdminEmail
	password := config.AppConfig.AdminPassword
	if email == "" || password == "" {
		log.Println("No admin users and no ADMIN_EMAIL/ADMIN_PASSWORD set; back-office login disabled")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := dbStore.CreateAdminUser(email, hash); err != nil {
		return err
	}
	log.Printf("Seeded admin user %s", email)
	return nil
}
