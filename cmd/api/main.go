package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/hsu-emily/punchie-pass/internal/adapters/blob"
	"github.com/hsu-emily/punchie-pass/internal/adapters/cache"
	adapterHTTP "github.com/hsu-emily/punchie-pass/internal/adapters/handler/http"
	"github.com/hsu-emily/punchie-pass/internal/adapters/llm"
	"github.com/hsu-emily/punchie-pass/internal/adapters/qr"
	"github.com/hsu-emily/punchie-pass/internal/adapters/repository"
	"github.com/hsu-emily/punchie-pass/internal/core/cards"
	"github.com/hsu-emily/punchie-pass/internal/core/domain"
	"github.com/hsu-emily/punchie-pass/internal/core/services"
	"github.com/hsu-emily/punchie-pass/internal/core/workers"
	"github.com/hsu-emily/punchie-pass/internal/render"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is required")
	}

	serverPort := getEnv("PORT", "8080")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		os.Getenv("DB_NAME"),
	)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	redisClient, err := cache.NewRedisClient(
		fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379")),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		redisClient = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Blob store: minio when configured, in-memory otherwise. The in-memory
	// store's objects are served by the router under /static.
	var blobStore services.BlobStore
	var staticBlobs *blob.MemoryStore
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		minioStore, err := blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  endpoint,
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "punchie-cards"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
			PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		})
		if err != nil {
			log.Fatalf("Critical: Failed to initialize object storage: %v", err)
		}
		blobStore = minioStore
	} else {
		log.Println("MINIO_ENDPOINT not set, using in-memory blob store (dev only)")
		staticBlobs = blob.NewMemoryStore(getEnv("PUBLIC_BASE_URL", "http://localhost:"+serverPort) + "/static")
		blobStore = staticBlobs
	}

	llmModels := strings.Split(getEnv("LLM_MODELS", "gpt-4o-mini,gpt-4o"), ",")
	llmClient, err := llm.NewClient(llm.Config{
		BaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		APIKey:  os.Getenv("LLM_API_KEY"),
		Models:  llmModels,
	}, nil)
	if err != nil {
		log.Fatalf("Critical: Failed to initialize completion client: %v", err)
	}

	rasterizer, err := render.NewRasterizer(render.NewHTTPAssetFetcher(nil))
	if err != nil {
		log.Fatalf("Critical: Failed to initialize rasterizer: %v", err)
	}

	// Without a configured artwork base URL every card falls back to its
	// themed gradient placeholder.
	var artResolver cards.ArtworkResolver
	if base := os.Getenv("ARTWORK_BASE_URL"); base != "" {
		assets := strings.FieldsFunc(os.Getenv("ARTWORK_ASSETS"), func(r rune) bool { return r == ',' })
		artResolver = cards.NewStaticArtwork(base, assets...)
	}

	var habitRepo domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	if redisClient != nil {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, redisClient)
	}
	journalRepo := repository.NewPostgresJournalRepository(db)
	reflectionRepo := repository.NewPostgresReflectionRepository(db)
	userRepo := repository.NewPostgresUserRepository(db)

	cardService := services.NewCardService(habitRepo, rasterizer, blobStore, qr.NewClient(os.Getenv("QR_BASE_URL"), nil), artResolver)

	shareWorker := workers.NewShareWorker(cardService)
	shareWorker.Start(ctx)

	habitService := services.NewHabitService(habitRepo, shareWorker)
	reflectionService := services.NewReflectionService(journalRepo, reflectionRepo, habitRepo, llmClient)
	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(jwtSecret, getEnv("JWT_ISSUER", "punchie-pass"), 24*time.Hour, userRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(authService, tokenService),
		HabitHandler:   adapterHTTP.NewHabitHandler(habitService),
		CardHandler:    adapterHTTP.NewCardHandler(cardService),
		JournalHandler: adapterHTTP.NewJournalHandler(reflectionService),
		TokenService:   tokenService,
		DB:             db,
		Redis:          redisClient,
		StaticBlobs:    staticBlobs,
		StartTime:      startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Punchie Pass running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
