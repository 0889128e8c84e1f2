package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"slidemark/internal/asr"
	"slidemark/internal/handlers"
	"slidemark/internal/ingestion"
	"slidemark/internal/models"
	"slidemark/internal/storage"
	"slidemark/internal/version"
	"slidemark/internal/worker"
	"slidemark/internal/youtube"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// .envファイルを読み込み（存在しない場合はスキップ）
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/slidemark.db"
	}

	modelName := os.Getenv("MODEL_NAME")
	if modelName == "" {
		modelName = asr.DefaultModel
	}

	asrConfig := asr.DefaultConfig(modelName)
	if modelsRoot := os.Getenv("MODELS_ROOT"); modelsRoot != "" {
		asrConfig.ModelsRoot = modelsRoot
	}
	if modelDir := os.Getenv("MODEL_DIR"); modelDir != "" {
		asrConfig.ModelDir = modelDir
	}

	// データベース接続
	db, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	sourceRepo := storage.NewSourceRepository(db)
	jobRepo := storage.NewJobRepository(db)
	detectionRepo := storage.NewDetectionRepository(db)

	ingester := ingestion.NewAudioIngester(sourceRepo, jobRepo, detectionRepo, asrConfig, dataDir)
	ytClient := youtube.NewClient()

	// ワーカーの起動
	w := worker.NewWorker(jobRepo)
	w.RegisterHandler(models.JobTypeDetect, func(ctx context.Context, job *models.ProcessingJob) error {
		return ingester.ProcessDetection(ctx, job, func(progress int, step string) {
			if err := jobRepo.UpdateProgressWithStep(ctx, job.ID, progress, step); err != nil {
				log.Printf("Failed to update job progress: %v", err)
			}
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.Start(ctx)
	defer w.Stop()

	// Echoインスタンスの作成
	e := echo.New()

	// ミドルウェアの設定
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// ハンドラーの作成
	audioHandler := handlers.NewAudioHandler(ingester, sourceRepo, detectionRepo, ytClient, dataDir)
	sourceHandler := handlers.NewSourceHandler(sourceRepo, jobRepo)
	jobHandler := handlers.NewJobHandler(jobRepo)

	// ルートの登録
	e.POST("/api/ingest/audio", audioHandler.Upload)
	e.POST("/api/ingest/youtube", audioHandler.IngestYouTube)
	e.GET("/api/sources", sourceHandler.List)
	e.GET("/api/sources/:id", sourceHandler.Get)
	e.DELETE("/api/sources/:id", sourceHandler.Delete)
	e.GET("/api/sources/:id/markers", audioHandler.Markers)
	e.GET("/api/sources/:id/transcript", audioHandler.Transcript)
	e.GET("/api/sources/:id/waveform", audioHandler.Waveform)
	e.GET("/api/jobs", jobHandler.List)
	e.GET("/api/jobs/stats", jobHandler.Stats)
	e.GET("/api/jobs/:id", jobHandler.Get)
	e.DELETE("/api/jobs/:id", jobHandler.Delete)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	})

	// サーバー起動
	log.Printf("Starting slidemark v%s on port %s (model: %s)", version.Version, port, modelName)
	if err := e.Start(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatal(err)
	}
}
