package main

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/fadilmartias/klarus-hr/internal/config"
	"github.com/fadilmartias/klarus-hr/internal/domain/fiber/handler"
	"github.com/fadilmartias/klarus-hr/internal/logger"
	"github.com/fadilmartias/klarus-hr/internal/middleware"
	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/fadilmartias/klarus-hr/internal/repository"
	"github.com/fadilmartias/klarus-hr/internal/service"
	"github.com/fadilmartias/klarus-hr/internal/usecase"
	"github.com/fadilmartias/klarus-hr/internal/util"
	"github.com/fadilmartias/klarus-hr/internal/worker"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// bodyLimit leaves room for a bulk upload of several 5MB CVs.
const bodyLimit = 50 * 1024 * 1024

func main() {
	ctx := context.Background()
	loadErr := godotenv.Load()

	appConfig := config.LoadAppConfig()
	if err := logger.Initialize(appConfig.IsProduction()); err != nil {
		panic(err)
	}
	defer logger.Cleanup()
	if loadErr != nil {
		logger.Infow("Could not load .env file, using process environment")
	}

	authConfig := config.LoadAuthConfig()
	if authConfig.TokenEncryptionKey != "" {
		if err := model.InitTokenEncryption(authConfig.TokenEncryptionKey); err != nil {
			logger.Fatalf("invalid TOKEN_ENCRYPTION_KEY: %v", err)
		}
	} else {
		logger.Warnw("TOKEN_ENCRYPTION_KEY not set, LinkedIn tokens are stored unencrypted")
	}

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return util.ErrorResponse(c, util.ErrorResponseFormat{Code: code, Message: message}, err)
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "authorization, x-client-info, apikey, content-type, idempotency-key",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(100, 1*time.Minute))

	storageConfig := config.LoadStorageConfig()
	app.Static("/storage", storageConfig.Root)

	db := ConnectDB()
	rdb := ConnectRedis()

	jobRepo := repository.NewJobRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	tokenRepo := repository.NewLinkedInTokenRepository(db)
	postRepo := repository.NewPublishedPostRepository(db)
	themeRepo := repository.NewThemeRepository(db)

	llm := service.NewOpenAIService(config.LoadOpenAIConfig())
	gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig())
	if err != nil {
		logger.Fatalf("could not create Gemini client: %v", err)
	}
	linkedInConfig := config.LoadLinkedInConfig()
	linkedIn := service.NewLinkedInService(linkedInConfig)
	oauth := service.NewLinkedInOAuthService(linkedInConfig)
	states := service.NewRedisStateStore(rdb)
	storage := service.NewLocalStorageService(storageConfig)

	contentUC := usecase.NewContentUsecase(llm, jobRepo, themeRepo)
	linkedInUC := usecase.NewLinkedInUsecase(tokenRepo, postRepo, jobRepo, states, oauth, linkedIn, contentUC)
	jobUC := usecase.NewJobUsecase(jobRepo, candidateRepo, gemini)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, jobRepo, storage, llm, gemini, util.ExtractCVText)
	themeUC := usecase.NewThemeUsecase(themeRepo, contentUC)

	redisURL := config.LoadRedisConfig().URL
	queue, err := worker.NewQueue(redisURL)
	if err != nil {
		logger.Fatalf("could not create task queue: %v", err)
	}
	defer queue.Close()
	linkedInUC.SetQueue(queue)
	themeUC.SetQueue(queue)

	stopWorker, err := worker.Start(redisURL, linkedInUC, themeUC)
	if err != nil {
		logger.Fatalf("could not start worker: %v", err)
	}
	defer stopWorker()

	auth := middleware.RequireAuth(authConfig.JWTSecret)
	webhook := middleware.RequireWebhookSecret(authConfig.WebhookSecret)

	handler.NewLinkedInHandler(linkedInUC, appConfig.FrontendURL).RegisterRoutes(app, auth)
	handler.NewContentHandler(contentUC).RegisterRoutes(app, auth)
	handler.NewJobHandler(jobUC).RegisterRoutes(app, auth)
	handler.NewCandidateHandler(candidateUC).RegisterRoutes(app, auth, webhook)
	handler.NewThemeHandler(themeUC).RegisterRoutes(app, auth)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			logger.Debugw("Runtime stats", "goroutines", runtime.NumGoroutine())
		}
	}()

	logger.Infow("Server running", "port", appConfig.Port, "env", appConfig.Env)
	if err := app.Listen(appConfig.Port); err != nil {
		logger.Errorw("Server stopped", logger.FieldError, err)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		logger.Fatalf("Could not get database instance: %v", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	for _, ext := range []string{`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`, `CREATE EXTENSION IF NOT EXISTS vector`} {
		if err := db.Exec(ext).Error; err != nil {
			logger.Fatalf("could not enable extension: %v", err)
		}
	}

	err = db.AutoMigrate(
		&model.Job{},
		&model.Candidate{},
		&model.LinkedInToken{},
		&model.PublishedPost{},
		&model.Theme{},
		&model.SamplePost{},
	)
	if err != nil {
		logger.Fatalf("migration failed: %v", err)
	}
	return db
}

func ConnectRedis() *redis.Client {
	opt, err := redis.ParseURL(config.LoadRedisConfig().URL)
	if err != nil {
		logger.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatalf("could not connect to redis: %v", err)
	}
	return rdb
}
