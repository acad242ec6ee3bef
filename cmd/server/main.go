package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/codebuildervaibhav/dreamwhisper/internal/cleanup"
	"github.com/codebuildervaibhav/dreamwhisper/internal/config"
	"github.com/codebuildervaibhav/dreamwhisper/internal/gateway"
	"github.com/codebuildervaibhav/dreamwhisper/internal/handlers"
	"github.com/codebuildervaibhav/dreamwhisper/internal/queue"
	"github.com/codebuildervaibhav/dreamwhisper/internal/storage"
	"github.com/codebuildervaibhav/dreamwhisper/internal/transcription"
)

func main() {
	envFile := ".env"
	if os.Getenv("ENV_FILE") != "" {
		envFile = os.Getenv("ENV_FILE")
	}
	configFile := "config/config.yaml"
	if os.Getenv("CONFIG_FILE") != "" {
		configFile = os.Getenv("CONFIG_FILE")
	}

	// Values in .env win over the inherited environment
	config.LoadEnv(true, envFile)

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logBuffer := handlers.NewLogBuffer()
	log.SetOutput(io.MultiWriter(os.Stdout, logBuffer))

	if err := cleanup.EnsureDirs(cfg.Storage.TempDir, cfg.Storage.TranscriptsDir); err != nil {
		log.Fatalf("Failed to create storage directories: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Println("Initializing components...")

	transcriber, err := gateway.NewOpenAIClient(cfg.OpenAI)
	if err != nil {
		log.Fatalf("Failed to initialize transcription client: %v", err)
	}

	db, err := storage.NewMetadataDB(cfg.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Mirror is optional; transcripts are always kept locally
	mirror, err := storage.NewMirror(ctx, cfg.Mirror)
	if err != nil {
		log.Printf("WARNING: %s mirror not available: %v", cfg.Mirror.Backend, err)
		log.Println("Transcripts will only be saved locally")
		mirror = nil
	} else if mirror != nil {
		log.Printf("%s mirror enabled", mirror.Name())
	}

	pipeline := transcription.NewPipeline(transcriber, storage.NewLocalStorage(), transcription.Options{
		TempDir:        cfg.Storage.TempDir,
		TranscriptsDir: cfg.Storage.TranscriptsDir,
		DB:             db,
		Mirror:         mirror,
	})

	workerPool := queue.NewWorkerPool(cfg.Workers.Count, cfg.Workers.QueueSize, pipeline)
	workerPool.Start()

	cleanupScheduler := cleanup.NewScheduler(
		cfg.Storage.TempDir,
		cfg.Cleanup.IntervalMinutes,
		cfg.Cleanup.MaxAgeHours,
	)
	if err := cleanupScheduler.Start(); err != nil {
		log.Fatalf("Failed to start cleanup scheduler: %v", err)
	}

	app := handlers.NewApp(handlers.Deps{
		Pool:      workerPool,
		DB:        db,
		Logs:      logBuffer,
		MaxSizeMB: cfg.Limits.MaxFileSizeMB,
	})

	addr := cfg.Addr()
	log.Printf("%s starting on %s", handlers.AppName, addr)
	log.Println("Endpoints:")
	log.Println("   POST /api/transcribe            - Upload audio file (field: audio)")
	log.Println("   POST /api/transcribe/gdrive     - Transcribe a Google Drive link")
	log.Println("   GET  /ws/transcribe             - WebSocket audio streaming")
	log.Println("   GET  /api/artifacts             - List indexed artifacts")
	log.Println("   GET  /api/transcripts/:id/text  - Get transcript text")
	log.Println("   GET  /logs                      - View server logs")
	log.Println("   GET  /health                    - Health check")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down gracefully...")
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Server stopped with error: %v", err)
	}

	cleanupScheduler.Stop()
	workerPool.Stop()
	log.Println("Server stopped")
}
