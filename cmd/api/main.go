package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/ecomstore/storefront-api/internal/auth"
	"github.com/ecomstore/storefront-api/internal/config"
	"github.com/ecomstore/storefront-api/internal/database"
	"github.com/ecomstore/storefront-api/internal/handlers"
	"github.com/ecomstore/storefront-api/internal/routes"
	"github.com/ecomstore/storefront-api/internal/store"
)

func main() {
	// --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Database Connection ---
	// The server must not come up against a database it cannot reach.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	// The unique indexes back the one-cart-per-user and unique-email
	// invariants; creating them is part of startup.
	if err := store.EnsureUserIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create user indexes: %v", err)
	}
	if err := store.EnsureCartIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create shopcart indexes: %v", err)
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		Users:    store.NewMongoUserStore(db),
		Products: store.NewMongoProductStore(db),
		Carts:    store.NewMongoCartStore(db),
		Tokens:   auth.NewTokenCodec(cfg.JWTSecret),
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	log.Printf("Starting Storefront API server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
