package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"slidemark/internal/asr"
	"slidemark/internal/ingestion"
	"slidemark/internal/models"
	"slidemark/internal/storage"
	"slidemark/internal/youtube"

	"github.com/labstack/echo/v4"
)

// AudioHandler handles audio-related HTTP requests
type AudioHandler struct {
	ingester      *ingestion.AudioIngester
	sourceRepo    *storage.SourceRepository
	detectionRepo *storage.DetectionRepository
	yt            *youtube.Client
	dataDir       string
}

// NewAudioHandler creates a new AudioHandler
func NewAudioHandler(
	ingester *ingestion.AudioIngester,
	sourceRepo *storage.SourceRepository,
	detectionRepo *storage.DetectionRepository,
	yt *youtube.Client,
	dataDir string,
) *AudioHandler {
	return &AudioHandler{
		ingester:      ingester,
		sourceRepo:    sourceRepo,
		detectionRepo: detectionRepo,
		yt:            yt,
		dataDir:       dataDir,
	}
}

// Upload handles audio file upload
// POST /api/ingest/audio
func (h *AudioHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	title := c.FormValue("title")

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to parse form"})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no files uploaded"})
	}

	var audioFiles []ingestion.AudioFile
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open file"})
		}
		defer f.Close()

		audioFiles = append(audioFiles, ingestion.AudioFile{
			Filename: fh.Filename,
			Reader:   f,
		})
	}

	result, err := h.ingester.Ingest(ctx, ingestion.IngestOptions{
		Title:    title,
		Files:    audioFiles,
		Priority: models.JobPriorityNormal,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"source_id": result.SourceID,
		"job_id":    result.JobID,
		"message":   "Marker detection started",
	})
}

// youtubeIngestRequest is the body of POST /api/ingest/youtube
type youtubeIngestRequest struct {
	URL      string `json:"url"`
	Language string `json:"language"`
	Title    string `json:"title"`
}

// IngestYouTube downloads a video's audio track and queues marker detection
// POST /api/ingest/youtube
func (h *AudioHandler) IngestYouTube(c echo.Context) error {
	ctx := c.Request().Context()

	var req youtubeIngestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url is required"})
	}

	video, err := h.yt.GetVideo(req.URL)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to get video: " + err.Error()})
	}

	downloadDir := filepath.Join(h.dataDir, "downloads")
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	audioPath, err := h.yt.DownloadAudio(ctx, req.URL, &youtube.DownloadAudioOptions{
		Language:   req.Language,
		OutputPath: filepath.Join(downloadDir, video.ID+".m4a"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to download audio: " + err.Error()})
	}
	defer os.Remove(audioPath)

	f, err := os.Open(audioPath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer f.Close()

	title := req.Title
	if title == "" {
		title = video.Title
	}

	result, err := h.ingester.Ingest(ctx, ingestion.IngestOptions{
		Title:      title,
		SourceType: models.SourceTypeYouTube,
		URL:        req.URL,
		Files: []ingestion.AudioFile{
			{Filename: filepath.Base(audioPath), Reader: f},
		},
		Priority: models.JobPriorityNormal,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"source_id": result.SourceID,
		"job_id":    result.JobID,
		"message":   "Marker detection started",
	})
}

// Markers returns the detected slide transitions for a source
// GET /api/sources/:id/markers
func (h *AudioHandler) Markers(c echo.Context) error {
	ctx := c.Request().Context()
	sourceID := c.Param("id")

	source, err := h.sourceRepo.GetByID(ctx, sourceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if source == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "source not found"})
	}

	detections, err := h.detectionRepo.ListBySourceID(ctx, sourceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if len(detections) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no detection available yet", "status": source.Status})
	}

	type fileMarkers struct {
		FilePath    string    `json:"file_path"`
		Model       string    `json:"model"`
		Transitions []float64 `json:"transitions"`
	}

	files := make([]fileMarkers, len(detections))
	for i, d := range detections {
		files[i] = fileMarkers{
			FilePath:    d.FilePath,
			Model:       d.Model,
			Transitions: d.Transitions,
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"source_id": sourceID,
		"files":     files,
	})
}

// Transcript returns the stored transcription result for a source file
// GET /api/sources/:id/transcript?format=json|text
func (h *AudioHandler) Transcript(c echo.Context) error {
	ctx := c.Request().Context()
	sourceID := c.Param("id")

	detections, err := h.detectionRepo.ListBySourceID(ctx, sourceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var results []asr.Result
	for _, d := range detections {
		if d.Transcript == "" {
			continue
		}
		var result asr.Result
		if err := json.Unmarshal([]byte(d.Transcript), &result); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to parse transcript"})
		}
		results = append(results, result)
	}

	if len(results) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "transcript not found"})
	}

	if c.QueryParam("format") == "text" {
		var sb strings.Builder
		for _, r := range results {
			sb.WriteString(r.FormatAsText())
			sb.WriteString("\n")
		}
		return c.String(http.StatusOK, sb.String())
	}

	return c.JSON(http.StatusOK, results)
}

// WaveformResponse represents the waveform data response
type WaveformResponse struct {
	Peaks    []float64 `json:"peaks"`    // Peak amplitude values (0-1)
	Duration float64   `json:"duration"` // Total duration in seconds
}

// Waveform returns waveform peak data for lining markers up against the audio
// GET /api/sources/:id/waveform?peaks_per_sec=10
func (h *AudioHandler) Waveform(c echo.Context) error {
	ctx := c.Request().Context()
	sourceID := c.Param("id")

	peaksPerSec := 10.0
	if pps := c.QueryParam("peaks_per_sec"); pps != "" {
		if v, err := strconv.ParseFloat(pps, 64); err == nil && v > 0 && v <= 100 {
			peaksPerSec = v
		}
	}

	source, err := h.sourceRepo.GetByID(ctx, sourceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if source == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "source not found"})
	}

	var metadata models.SourceMetadata
	if source.Metadata != "" {
		if err := json.Unmarshal([]byte(source.Metadata), &metadata); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to parse metadata"})
		}
	}
	if len(metadata.Files) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no audio files"})
	}

	// Convert the first file to WAV on demand
	audioPath := metadata.Files[0]
	wavPath := audioPath
	if ext := filepath.Ext(audioPath); ext != ".wav" {
		wavPath = audioPath[:len(audioPath)-len(ext)] + "_converted.wav"
		if _, err := os.Stat(wavPath); os.IsNotExist(err) {
			if err := asr.ConvertToWav(audioPath, wavPath); err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to convert audio"})
			}
		}
	}

	peaks, duration, err := asr.ComputeWaveformPeaks(wavPath, peaksPerSec)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to compute waveform: " + err.Error()})
	}

	return c.JSON(http.StatusOK, WaveformResponse{
		Peaks:    peaks,
		Duration: duration,
	})
}
