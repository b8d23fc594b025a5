package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	"github.com/sw0nx/WIND-BOT/docs"
	"github.com/sw0nx/WIND-BOT/internal/database"
	"github.com/sw0nx/WIND-BOT/internal/handlers"
	mW "github.com/sw0nx/WIND-BOT/internal/middleware"
	"github.com/sw0nx/WIND-BOT/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Vending Economy API
// @version 1.0
// @description Transactional economy core for the vending bot: balances, stock codes, top-up pins, purchases
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")
	viper.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	docs.SwaggerInfo.Title = "Vending Economy API"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	events := services.NewEventPublisher(redisClient)
	ledgerService := services.NewLedgerService(db)
	inventoryService := services.NewInventoryService(db)
	redemptionService := services.NewRedemptionService(db, ledgerService, events)
	purchaseService := services.NewPurchaseService(db, ledgerService, inventoryService, events)

	economyHandler := handlers.NewEconomyHandler(ledgerService, inventoryService, purchaseService, redemptionService)
	adminHandler := handlers.NewAdminHandler(ledgerService, inventoryService, redemptionService)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/balance", economyHandler.GetBalance)
			r.Get("/catalog", economyHandler.ListCatalog)
			r.Post("/purchase", economyHandler.Purchase)
			r.Post("/pins/redeem", economyHandler.RedeemPin)
			r.Get("/ledger", economyHandler.ListLedger)
			r.Get("/orders", economyHandler.ListOrders)

			r.Group(func(r chi.Router) {
				r.Use(mW.AdminOnly)

				r.Post("/admin/products", adminHandler.CreateProduct)
				r.Put("/admin/products/{productID}/enabled", adminHandler.SetProductEnabled)
				r.Post("/admin/products/{productID}/stock", adminHandler.AddStock)
				r.Post("/admin/pins", adminHandler.CreatePin)
				r.Post("/admin/accounts/{userID}/adjust", adminHandler.AdjustBalance)
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
