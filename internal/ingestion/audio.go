package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"slidemark/internal/asr"
	"slidemark/internal/marker"
	"slidemark/internal/models"
	"slidemark/internal/storage"

	"github.com/google/uuid"
)

// AudioIngester handles audio file intake and marker detection
type AudioIngester struct {
	sourceRepo    *storage.SourceRepository
	jobRepo       *storage.JobRepository
	detectionRepo *storage.DetectionRepository
	asrConfig     *asr.Config
	dataDir       string
}

// NewAudioIngester creates a new AudioIngester
func NewAudioIngester(
	sourceRepo *storage.SourceRepository,
	jobRepo *storage.JobRepository,
	detectionRepo *storage.DetectionRepository,
	asrConfig *asr.Config,
	dataDir string,
) *AudioIngester {
	return &AudioIngester{
		sourceRepo:    sourceRepo,
		jobRepo:       jobRepo,
		detectionRepo: detectionRepo,
		asrConfig:     asrConfig,
		dataDir:       dataDir,
	}
}

// AudioFile represents an uploaded audio file
type AudioFile struct {
	Filename string
	Reader   io.Reader
}

// IngestOptions contains options for audio ingestion
type IngestOptions struct {
	Title      string      // optional title for the source
	SourceType string      // models.SourceTypeAudio or models.SourceTypeYouTube
	URL        string      // original URL for downloaded sources
	Files      []AudioFile // audio files to process
	Priority   int         // job priority (0-9, lower is higher priority)
}

// IngestResult contains the result of audio ingestion
type IngestResult struct {
	SourceID string
	JobID    string
}

// Ingest saves the files, creates a source record, and queues a detection job
func (i *AudioIngester) Ingest(ctx context.Context, opts IngestOptions) (*IngestResult, error) {
	if len(opts.Files) == 0 {
		return nil, fmt.Errorf("no audio files provided")
	}
	if opts.SourceType == "" {
		opts.SourceType = models.SourceTypeAudio
	}

	sourceID := uuid.New().String()

	sourceDir := filepath.Join(i.dataDir, "sources", "audio", sourceID)
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create source directory: %w", err)
	}

	var filePaths []string
	for _, file := range opts.Files {
		if !asr.IsSupportedFormat(file.Filename) {
			return nil, fmt.Errorf("unsupported audio format: %s", file.Filename)
		}

		destPath := filepath.Join(sourceDir, filepath.Base(file.Filename))
		dest, err := os.Create(destPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create file: %w", err)
		}

		_, err = io.Copy(dest, file.Reader)
		dest.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to save file: %w", err)
		}

		filePaths = append(filePaths, destPath)
	}

	// 音声長はメタ情報として保存（取得できない場合はスキップ）
	var totalDuration float64
	for _, path := range filePaths {
		if d, err := asr.GetAudioDuration(path); err == nil {
			totalDuration += d
		}
	}

	metadata, _ := json.Marshal(models.SourceMetadata{
		Files:    filePaths,
		Title:    opts.Title,
		URL:      opts.URL,
		Duration: totalDuration,
	})

	source := &models.Source{
		ID:       sourceID,
		Type:     opts.SourceType,
		FilePath: sourceDir,
		Metadata: string(metadata),
	}
	if err := i.sourceRepo.Create(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	job := &models.ProcessingJob{
		SourceID: sourceID,
		Type:     models.JobTypeDetect,
		Priority: opts.Priority,
	}
	if err := i.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return &IngestResult{
		SourceID: sourceID,
		JobID:    job.ID,
	}, nil
}

// ProcessDetection transcribes the source's audio files and scans them for
// slide-transition markers. This is called by the worker.
func (i *AudioIngester) ProcessDetection(ctx context.Context, job *models.ProcessingJob, onProgress asr.ProgressCallback) error {
	if job.SourceID == "" {
		return fmt.Errorf("job has no source ID")
	}

	reportProgress := func(progress int, step string) {
		if onProgress != nil {
			onProgress(progress, step)
		}
	}

	reportProgress(5, "preparing")

	source, err := i.sourceRepo.GetByID(ctx, job.SourceID)
	if err != nil {
		return fmt.Errorf("failed to get source: %w", err)
	}
	if source == nil {
		return fmt.Errorf("source not found: %s", job.SourceID)
	}

	if err := i.sourceRepo.UpdateStatus(ctx, source.ID, models.SourceStatusProcessing); err != nil {
		return fmt.Errorf("failed to update source status: %w", err)
	}

	var metadata models.SourceMetadata
	if source.Metadata != "" {
		if err := json.Unmarshal([]byte(source.Metadata), &metadata); err != nil {
			return fmt.Errorf("failed to parse metadata: %w", err)
		}
	}
	if len(metadata.Files) == 0 {
		return fmt.Errorf("source %s has no audio files", source.ID)
	}

	reportProgress(10, "initializing")

	provider, err := asr.NewProvider(i.asrConfig)
	if err != nil {
		return fmt.Errorf("failed to create recognizer: %w", err)
	}
	defer provider.Close()

	// Re-detection replaces earlier results for the source
	if err := i.detectionRepo.DeleteBySourceID(ctx, source.ID); err != nil {
		return fmt.Errorf("failed to clear previous detections: %w", err)
	}

	fileCount := len(metadata.Files)
	for idx, filePath := range metadata.Files {
		// Transcription takes the 10-90% progress range, split evenly per file
		fileProgressStart := 10 + (80 * idx / fileCount)
		fileProgressEnd := 10 + (80 * (idx + 1) / fileCount)

		result, err := provider.Transcribe(filePath, func(progress int, step string) {
			fileProgress := fileProgressStart + progress*(fileProgressEnd-fileProgressStart)/100
			reportProgress(fileProgress, step)
		})
		if err != nil {
			return fmt.Errorf("failed to transcribe %s: %w", filePath, err)
		}

		transitions := marker.Detect(result.Segments)

		transcript, _ := json.Marshal(result)
		detection := &models.Detection{
			SourceID:    source.ID,
			FilePath:    filePath,
			Model:       i.asrConfig.Model,
			Transitions: transitions,
			Transcript:  string(transcript),
		}
		if err := i.detectionRepo.Create(ctx, detection); err != nil {
			return fmt.Errorf("failed to save detection: %w", err)
		}
	}

	if err := i.sourceRepo.UpdateStatus(ctx, source.ID, models.SourceStatusCompleted); err != nil {
		return fmt.Errorf("failed to update source status: %w", err)
	}

	reportProgress(100, "")

	return nil
}
