package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "shopmart/docs"
	"shopmart/internal/caching"
	"shopmart/internal/handlers"
	"shopmart/internal/jobs"
	"shopmart/internal/middleware"
	"shopmart/internal/repositories"
	"shopmart/internal/services"
	"shopmart/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Auth configuration
	authConfig := middleware.AuthConfig{
		Secret:  os.Getenv("JWT_SECRET"),
		JWKSURL: os.Getenv("AUTH_JWKS_URL"),
	}
	if authConfig.Secret == "" && authConfig.JWKSURL == "" {
		log.Fatal("JWT_SECRET or AUTH_JWKS_URL environment variable is required")
	}
	keyFunc, err := middleware.NewKeyfunc(authConfig)
	if err != nil {
		log.Fatalf("Failed to initialize token verification: %v", err)
	}

	// Razorpay configuration
	razorpayKey := os.Getenv("RAZORPAY_KEY_ID")
	razorpaySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if razorpayKey == "" || razorpaySecret == "" {
		log.Printf("WARNING: Razorpay credentials not configured; payment intents will fail")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration (payment receipt archive)
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	receiptArchive, err := services.NewMinioReceiptArchive(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize receipt archive: %v", err)
	}

	// Invoice office configuration
	officeID := os.Getenv("INVOICE_OFFICE_STATE_CODE")
	if officeID == "" {
		officeID = "09"
	}

	// Shipping configuration
	shippingRate := 49.0
	if rateStr := os.Getenv("SHIPPING_FLAT_RATE"); rateStr != "" {
		if rate, err := strconv.ParseFloat(rateStr, 64); err == nil {
			shippingRate = rate
		}
	}
	freeShippingAbove := 499.0
	if thresholdStr := os.Getenv("SHIPPING_FREE_THRESHOLD"); thresholdStr != "" {
		if threshold, err := strconv.ParseFloat(thresholdStr, 64); err == nil {
			freeShippingAbove = threshold
		}
	}

	// Create repositories
	sequenceRepo := repositories.NewSequenceRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	addressRepo := repositories.NewAddressRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	attemptRepo := repositories.NewPaymentAttemptRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	identifierSvc := services.NewIdentifierService(sequenceRepo)
	quoter := services.FlatRateQuoter{Rate: shippingRate, FreeThreshold: freeShippingAbove}
	orderSvc := services.NewOrderService(orderRepo, addressRepo, productRepo, identifierSvc, quoter, cacheSvc, officeID)
	razorpaySvc := services.NewRazorpayService(razorpayKey, razorpaySecret)
	paymentSvc := services.NewPaymentService(razorpaySvc, orderRepo, attemptRepo, receiptArchive)

	// Create handlers
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	paymentHandlers := handlers.NewPaymentHandlers(paymentSvc)

	// Background reconciliation sweeper
	sweeper, err := jobs.NewReconciliationSweeper(attemptRepo)
	if err != nil {
		log.Fatalf("Failed to initialize reconciliation sweeper: %v", err)
	}
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start reconciliation sweeper: %v", err)
	}
	defer func() {
		if err := sweeper.Stop(); err != nil {
			log.Printf("Failed to stop reconciliation sweeper: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/detailed", func(c echo.Context) error {
		return handlers.HealthCheckDetailed(c, pool)
	})

	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API routes
	v1 := e.Group("/v1")

	// Gateway callback carries its own signature; no bearer token.
	v1.POST("/payments/callback", paymentHandlers.Callback)

	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(keyFunc))

	protected.POST("/orders", orderHandlers.CreateOrder)
	protected.GET("/orders", orderHandlers.ListOrders)
	protected.GET("/orders/:id", orderHandlers.GetOrder)

	protected.POST("/payments/intent", paymentHandlers.CreateIntent)
	protected.POST("/payments/:order_id/abandon", paymentHandlers.Abandon)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Shopmart server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
