package asr

import (
	"os"
	"path/filepath"
)

// Model variant names accepted by Config.Model. Whisper variants map to
// a sherpa-onnx-whisper-<name> model directory; ReazonSpeech maps to the
// zipformer transducer release.
const (
	ModelTiny         = "tiny"
	ModelBase         = "base"
	ModelSmall        = "small"
	ModelMedium       = "medium"
	ModelReazonSpeech = "reazonspeech"

	// DefaultModel is used when no variant is requested
	DefaultModel = ModelSmall
)

const reazonSpeechModelDir = "sherpa-onnx-zipformer-ja-reazonspeech-2024-08-01"

// Config selects and configures a transcription provider
type Config struct {
	Model      string  // model variant name (see constants above)
	ModelDir   string  // explicit model directory; derived from Model when empty
	ModelsRoot string  // base directory holding model directories (default "models")
	Language   string  // language hint, e.g. "ja"
	NumThreads int     // number of threads for inference
	SampleRate int     // audio sample rate (typically 16000)
	SegmentGap float64 // pause length in seconds that starts a new segment
}

// DefaultConfig returns the default configuration for Japanese narration
func DefaultConfig(model string) *Config {
	if model == "" {
		model = DefaultModel
	}
	return &Config{
		Model:      model,
		ModelsRoot: "models",
		Language:   "ja",
		NumThreads: 4,
		SampleRate: 16000,
		SegmentGap: DefaultSegmentGap,
	}
}

// ResolveModelDir returns the directory holding the configured model files
func (c *Config) ResolveModelDir() string {
	if c.ModelDir != "" {
		return c.ModelDir
	}
	root := c.ModelsRoot
	if root == "" {
		root = "models"
	}
	if c.Model == ModelReazonSpeech {
		return filepath.Join(root, reazonSpeechModelDir)
	}
	return filepath.Join(root, "sherpa-onnx-whisper-"+c.Model)
}

// findModelFile searches for a model file in the given directory
// Returns the first matching file path or empty string if not found
func findModelFile(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
