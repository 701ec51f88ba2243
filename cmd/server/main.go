package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/debatify/backend/internal/router"
	"github.com/debatify/backend/pkg/config"
	"github.com/debatify/backend/pkg/firebase"
	"github.com/debatify/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Social login stays disabled unless credentials are configured.
	var firebaseAuth *firebaseauth.Client
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		firebaseAuth = app.AuthClient
	} else {
		log.Println("Firebase credentials not configured, social login disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	dispatcher, err := router.SetupRouter(e, db, cfg, firebaseAuth)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	dispatcher.Flush()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
