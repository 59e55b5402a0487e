package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/api"
	"github.com/sahilchouksey/quiz-brain/config"
	"github.com/sahilchouksey/quiz-brain/database"
	"github.com/sahilchouksey/quiz-brain/handlers"
	job_handlers "github.com/sahilchouksey/quiz-brain/handlers/jobs"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/router"
	"github.com/sahilchouksey/quiz-brain/services/cron"
	"github.com/sahilchouksey/quiz-brain/services/digitalocean"
	"github.com/sahilchouksey/quiz-brain/services/pipeline"
	"github.com/sahilchouksey/quiz-brain/utils/cache"
	"github.com/sahilchouksey/quiz-brain/utils/middleware"
)

// ShutdownTimeout bounds how long running jobs get to stop
const ShutdownTimeout = 30 * time.Second

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		log.Warnf("App: no .env file loaded: %v", err)
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := BuildComponents(ctx, getEnv)
	if err != nil {
		return err
	}

	// Job state lives in Redis so every instance can report progress
	redisCache, err := cache.NewRedisCache(getEnv.REDIS_URL)
	if err != nil {
		return fmt.Errorf("redis is required for job tracking: %w", err)
	}
	defer redisCache.Close()

	// Initialize GORM database connection
	store, err := database.StartGORM(getEnv)
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		print("If not running, run the following command:\n")
		print("  make docker-up   (for Docker setup)\n")
		print("  make db-up       (for local PostgreSQL)\n")
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Spaces is optional: without it artifacts are not archived and
	// spaces_key submissions are rejected
	var (
		spaces    *digitalocean.SpacesClient
		archive   pipeline.Archive
		objects   job_handlers.ObjectStore
		cronStore cron.ObjectStore
	)
	if spacesCfg, err := digitalocean.SpacesConfigFromEnv(getEnv); err == nil {
		spaces, err = digitalocean.NewSpacesClient(spacesCfg)
		if err != nil {
			return err
		}
		archive, objects, cronStore = spaces, spaces, spaces
	} else {
		log.Warnf("App: Spaces disabled: %v", err)
	}

	tracker := pipeline.NewTracker(redisCache)
	runner := pipeline.NewRunner(components.Pipeline, tracker, store, archive)

	if err := os.MkdirAll(getEnv.UPLOAD_DIR, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronCfg := cron.DefaultConfig(getEnv.UPLOAD_DIR)
		cronCfg.ArtifactRetention = getEnv.ARTIFACT_RETENTION
		cronManager = cron.NewCronManager(cronCfg, tracker, cronStore, store)
		cronManager.SetRecorder(store)
		if err := cronManager.Start(); err != nil {
			log.Warnf("App: failed to start cron jobs: %v", err)
			cronManager = nil
		}
	}

	// Init API
	maxUpload := int64(getEnv.MAX_UPLOAD_MB) * 1024 * 1024
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), int(maxUpload)+1024*1024)
	app := server.GetEngine()

	security := middleware.SecurityConfig{
		AllowedOrigins:    getEnv.ALLOWED_ORIGINS,
		RateLimitRequests: getEnv.SUBMIT_RATE_LIMIT,
		RateLimitWindow:   getEnv.SUBMIT_RATE_WINDOW,
	}
	middleware.SetupSecurity(app, security)

	checks := map[string]handlers.HealthCheck{
		"database": store.HealthCheck,
		"redis":    redisCache.Ping,
		"ocr":      components.OCR.HealthCheck,
	}
	healthHandler := handlers.NewHealthHandler(checks, runner)
	jobHandler := job_handlers.NewJobHandler(runner, tracker, store, objects, job_handlers.Config{
		UploadDir:            getEnv.UPLOAD_DIR,
		MaxUploadSize:        maxUpload,
		DefaultQuestionType:  model.ParseQuestionType(getEnv.QUESTION_TYPE),
		DefaultAnswerOptions: getEnv.ANSWER_OPTIONS,
	})

	// Setup Routes
	router.SetupRoutes(app, jobHandler, healthHandler, security)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run()
	}()

	select {
	case err := <-serverErr:
		shutdown(runner, cronManager)
		return err
	case <-ctx.Done():
		log.Info("App: shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Errorf("App: server shutdown: %v", err)
	}
	shutdown(runner, cronManager)
	return nil
}

func shutdown(runner *pipeline.Runner, cronManager *cron.CronManager) {
	if cronManager != nil {
		cronManager.Stop()
	}
	if err := runner.Shutdown(ShutdownTimeout); err != nil {
		log.Warnf("App: %v", err)
	}
}
