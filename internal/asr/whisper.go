package asr

import (
	"fmt"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

// whisperChunkSec is the chunk size fed to the model.
// Whisper supports up to 30 seconds natively.
const whisperChunkSec = 30

// WhisperRecognizer wraps a sherpa-onnx Whisper model
type WhisperRecognizer struct {
	recognizer *sherpa.OfflineRecognizer
	config     *Config
}

// NewWhisperRecognizer creates a new Whisper recognizer for the configured
// model variant. Quantized (int8) model files are preferred when present.
func NewWhisperRecognizer(config *Config) (*WhisperRecognizer, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	modelDir := config.ResolveModelDir()

	encoderPath := findModelFile(modelDir, []string{
		"encoder.int8.onnx",
		"encoder.onnx",
		config.Model + "-encoder.int8.onnx",
		config.Model + "-encoder.onnx",
	})
	decoderPath := findModelFile(modelDir, []string{
		"decoder.int8.onnx",
		"decoder.onnx",
		config.Model + "-decoder.int8.onnx",
		config.Model + "-decoder.onnx",
	})
	tokensPath := findModelFile(modelDir, []string{
		"tokens.txt",
		config.Model + "-tokens.txt",
	})

	if encoderPath == "" {
		return nil, fmt.Errorf("encoder model not found in %s", modelDir)
	}
	if decoderPath == "" {
		return nil, fmt.Errorf("decoder model not found in %s", modelDir)
	}
	if tokensPath == "" {
		return nil, fmt.Errorf("tokens file not found in %s", modelDir)
	}

	sherpaConfig := sherpa.OfflineRecognizerConfig{
		FeatConfig: sherpa.FeatureConfig{
			SampleRate: config.SampleRate,
			FeatureDim: 80,
		},
		ModelConfig: sherpa.OfflineModelConfig{
			Whisper: sherpa.OfflineWhisperModelConfig{
				Encoder:  encoderPath,
				Decoder:  decoderPath,
				Language: config.Language,
				Task:     "transcribe",
			},
			Tokens:     tokensPath,
			NumThreads: config.NumThreads,
			Debug:      0,
		},
	}

	recognizer := sherpa.NewOfflineRecognizer(&sherpaConfig)
	if recognizer == nil {
		return nil, fmt.Errorf("failed to create Whisper recognizer")
	}

	return &WhisperRecognizer{
		recognizer: recognizer,
		config:     config,
	}, nil
}

// Close releases the recognizer resources
func (r *WhisperRecognizer) Close() {
	if r.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(r.recognizer)
		r.recognizer = nil
	}
}

// Transcribe transcribes an audio file using Whisper
func (r *WhisperRecognizer) Transcribe(inputPath string, onProgress ProgressCallback) (*Result, error) {
	return transcribeChunked(r.recognizer, r.config, inputPath, whisperChunkSec, onProgress)
}
