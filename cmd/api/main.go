package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackeval-go-api/internal/config"
	"github.com/noah-isme/hackeval-go-api/internal/database"
	"github.com/noah-isme/hackeval-go-api/internal/extract"
	"github.com/noah-isme/hackeval-go-api/internal/handler"
	"github.com/noah-isme/hackeval-go-api/internal/middleware"
	"github.com/noah-isme/hackeval-go-api/internal/models"
	"github.com/noah-isme/hackeval-go-api/internal/queue"
	"github.com/noah-isme/hackeval-go-api/internal/repository"
	"github.com/noah-isme/hackeval-go-api/internal/router"
	"github.com/noah-isme/hackeval-go-api/internal/service"
	"github.com/noah-isme/hackeval-go-api/pkg/ai"
	cloud "github.com/noah-isme/hackeval-go-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Hackathon{},
		&models.Student{},
		&models.Submission{},
		&models.Evaluation{},
		&models.HackathonRollup{},
		&models.HackathonParticipant{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, aggregation and result caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	analyzer, err := ai.NewOpenAIAnalyzer(ai.OpenAIConfig{
		APIKey:             cfg.OpenAIAPIKey,
		ChatModel:          cfg.ChatModel,
		TranscriptionModel: cfg.TranscriptionModel,
		Logger:             logger,
	})
	if err != nil {
		log.Fatalf("failed to create analyzer: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	hackathonRepo := repository.NewHackathonRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	rollupRepo := repository.NewRollupRepository(db)

	aggregationService := service.NewAggregationService(redisClient, logger)
	extractor := extract.NewFileExtractor(logger)

	pipeline := service.NewSubmissionPipeline(
		hackathonRepo,
		submissionRepo,
		evaluationRepo,
		rollupRepo,
		extractor,
		analyzer,
		aggregationService,
		logger,
	)

	handleJob := func(ctx context.Context, job queue.Job) {
		_ = pipeline.Run(ctx, job)
	}

	var jobQueue queue.Queue
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Drain()

		jobQueue, err = queue.NewNATS(conn, queue.DefaultSubject, handleJob, logger)
		if err != nil {
			log.Fatalf("failed to subscribe to nats: %v", err)
		}
	} else {
		logger.Info().Msg("no nats url configured, running pipeline jobs in process")
		jobQueue = queue.NewInProcess(handleJob, logger)
	}

	submissionService := service.NewSubmissionService(
		hackathonRepo,
		studentRepo,
		submissionRepo,
		uploader,
		jobQueue,
		validate,
		cfg.StagingDir,
		cfg.MaxUploadMB,
		logger,
	)
	hackathonService := service.NewHackathonService(
		hackathonRepo,
		rollupRepo,
		aggregationService,
		redisClient,
		cfg.ResultsCacheTTL,
		logger,
	)

	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	hackathonHandler := handler.NewHackathonHandler(hackathonService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler: submissionHandler,
		HackathonHandler:  hackathonHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, jobQueue)
}

func waitForShutdown(app *fiber.App, jobQueue queue.Queue) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	// Let in-flight pipeline runs finish before the process exits.
	jobQueue.Close()

	log.Println("server stopped")
}
