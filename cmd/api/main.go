// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kinfolk-app/kinfolk-backend/internal/activity"
	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
	"github.com/kinfolk-app/kinfolk-backend/internal/channels"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/database"
	"github.com/kinfolk-app/kinfolk-backend/internal/config"
	"github.com/kinfolk-app/kinfolk-backend/internal/notifications"
	"github.com/kinfolk-app/kinfolk-backend/internal/stories"
	"github.com/kinfolk-app/kinfolk-backend/internal/subscriptions"
	"github.com/kinfolk-app/kinfolk-backend/internal/uploads"
	"github.com/kinfolk-app/kinfolk-backend/internal/users"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Kinfolk API")
	log.Println("========================================")

	// 1. Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found (%v), using environment variables", err)
	}

	// 2. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed: ", err)
	}
	log.Printf("✅ Configuration loaded (environment: %s)", cfg.Environment)

	// 3. Set up storage. Mock mode runs everything in memory for demos
	// and local frontend work.
	var (
		db           *sqlx.DB
		authRepo     auth.Repository
		channelRepo  channels.Repository
		storyRepo    stories.Repository
		subRepo      subscriptions.Repository
		err          error
	)

	if cfg.UseMockStore {
		log.Println("⚠️  MOCK STORE ENABLED: all data is in-memory and volatile")
		authRepo = auth.NewMemoryRepository()
		channelRepo = channels.NewMemoryRepository()
		storyRepo = stories.NewMemoryRepository()
		subRepo = subscriptions.NewMemoryRepository()
	} else {
		db, err = database.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("❌ Failed to connect to PostgreSQL: ", err)
		}
		defer db.Close()
		log.Println("✅ Connected to PostgreSQL")

		if err := runMigrations(db); err != nil {
			log.Fatal("❌ Failed to run migrations: ", err)
		}
		log.Println("✅ Database migrations completed")

		authRepo = auth.NewPostgresRepository(db)
		channelRepo = channels.NewPostgresRepository(db)
		storyRepo = stories.NewPostgresRepository(db)
		subRepo = subscriptions.NewPostgresRepository(db)
	}

	// 4. Connect to Redis (optional, enables the logout denylist)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without it", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis")
		}
	}

	// 5. Upload storage
	uploadService, err := uploads.NewService(uploads.Config{
		UseS3:          cfg.UseS3,
		S3Bucket:       cfg.S3Bucket,
		AWSRegion:      cfg.AWSRegion,
		LocalUploadDir: cfg.LocalUploadDir,
		BaseURL:        cfg.BaseURL,
	})
	if err != nil {
		log.Fatal("❌ Failed to initialize upload storage: ", err)
	}
	if cfg.UseS3 {
		log.Println("✅ Using S3 for uploads")
	} else {
		log.Printf("✅ Using local storage for uploads (%s)", cfg.LocalUploadDir)
	}

	// 6. Email provider
	var emailProvider notifications.EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		emailProvider = notifications.NewSendGridProvider(cfg.SendGridAPIKey, cfg.EmailFrom)
		log.Println("✅ Using SendGrid for emails")
	default:
		emailProvider = notifications.NewMockProvider()
		log.Println("⚠️  Using mock email provider (development mode)")
	}
	notifier := notifications.NewService(emailProvider, authRepo, channelRepo)

	// 7. Activity hub feeds the live websocket clients
	hub := activity.NewHub()
	go hub.Run()

	// 8. Wire up the domain services
	channelService := channels.NewService(channelRepo)
	authService := auth.NewService(authRepo, channelService, redisClient, &auth.Config{
		JWTSecret:   cfg.JWTSecret,
		TokenExpiry: cfg.TokenExpiry,
		BCryptCost:  cfg.BCryptCost,
	})
	storyService := stories.NewService(storyRepo, channelRepo, hub)
	subscriptionService := subscriptions.NewService(subRepo, channelRepo, notifier)
	userService := users.NewService(authRepo, channelRepo, subRepo)

	// 9. Routes
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth.RegisterRoutes(router, auth.NewHandlers(authService), authService)
	channels.RegisterRoutes(router, channels.NewHandlers(channelService), authService)
	stories.RegisterRoutes(router, stories.NewHandlers(storyService, uploadService), authService)
	subscriptions.RegisterRoutes(router, subscriptions.NewHandlers(subscriptionService), authService)
	users.RegisterRoutes(router, users.NewHandlers(userService, uploadService), authService)
	activity.RegisterRoutes(router, activity.NewHandlers(hub))
	log.Println("✅ Routes registered")

	// 10. Activity simulator keeps the feed lively in demo environments
	var simulator *activity.Simulator
	if cfg.SimulatorEnabled {
		simulator = activity.NewSimulator(hub, activity.NewFeedSource(storyRepo),
			cfg.SimulatorMinInterval, cfg.SimulatorMaxInterval)
		simulator.Start(context.Background())
	}

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server: ", err)
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️  Shutdown signal received...")

	if simulator != nil {
		simulator.Stop()
	}
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations creates the schema on startup. Idempotent.
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(30) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(50) NOT NULL,
			avatar TEXT,
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			bio VARCHAR(200),
			location VARCHAR(100),
			website VARCHAR(100),
			theme_id VARCHAR(50),
			joined_date VARCHAR(50) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS channels (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			name VARCHAR(100) NOT NULL,
			description VARCHAR(500),
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			is_private BOOLEAN NOT NULL DEFAULT FALSE,
			subscriber_count INTEGER NOT NULL DEFAULT 0,
			story_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_channels_user_id ON channels(user_id)`,

		`CREATE TABLE IF NOT EXISTS stories (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			channel_id BIGINT NOT NULL REFERENCES channels(id),
			parent_id BIGINT,
			content VARCHAR(500) NOT NULL,
			likes_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stories_channel_id ON stories(channel_id)`,
		`CREATE INDEX IF NOT EXISTS idx_stories_parent_id ON stories(parent_id)`,

		`CREATE TABLE IF NOT EXISTS story_media (
			id VARCHAR(36) PRIMARY KEY,
			story_id BIGINT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
			type VARCHAR(10) NOT NULL,
			url TEXT NOT NULL,
			thumbnail TEXT,
			position INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS likes (
			user_id BIGINT NOT NULL REFERENCES users(id),
			story_id BIGINT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, story_id)
		)`,

		`CREATE TABLE IF NOT EXISTS subscriptions (
			id BIGSERIAL PRIMARY KEY,
			subscriber_id BIGINT NOT NULL REFERENCES users(id),
			channel_id BIGINT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
			status VARCHAR(10) NOT NULL DEFAULT 'pending',
			request_message VARCHAR(200),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			approved_at TIMESTAMPTZ,
			UNIQUE (subscriber_id, channel_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_channel_id ON subscriptions(channel_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
