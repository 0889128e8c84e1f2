package asr

import (
	"fmt"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

// reazonChunkSec is the chunk size for the zipformer transducer
const reazonChunkSec = 20

// ReazonSpeechRecognizer wraps the ReazonSpeech zipformer transducer.
// Unlike Whisper it reports per-token timestamps directly.
type ReazonSpeechRecognizer struct {
	recognizer *sherpa.OfflineRecognizer
	config     *Config
}

// NewReazonSpeechRecognizer creates a new ReazonSpeech recognizer
func NewReazonSpeechRecognizer(config *Config) (*ReazonSpeechRecognizer, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	modelDir := config.ResolveModelDir()

	encoderPath := findModelFile(modelDir, []string{
		"encoder-epoch-99-avg-1.int8.onnx",
		"encoder.int8.onnx",
		"encoder-epoch-99-avg-1.onnx",
		"encoder.onnx",
	})
	decoderPath := findModelFile(modelDir, []string{
		"decoder-epoch-99-avg-1.onnx",
		"decoder.onnx",
	})
	joinerPath := findModelFile(modelDir, []string{
		"joiner-epoch-99-avg-1.int8.onnx",
		"joiner.int8.onnx",
		"joiner-epoch-99-avg-1.onnx",
		"joiner.onnx",
	})
	tokensPath := findModelFile(modelDir, []string{"tokens.txt"})

	if encoderPath == "" {
		return nil, fmt.Errorf("encoder model not found in %s", modelDir)
	}
	if decoderPath == "" {
		return nil, fmt.Errorf("decoder model not found in %s", modelDir)
	}
	if joinerPath == "" {
		return nil, fmt.Errorf("joiner model not found in %s", modelDir)
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
			Transducer: sherpa.OfflineTransducerModelConfig{
				Encoder: encoderPath,
				Decoder: decoderPath,
				Joiner:  joinerPath,
			},
			Tokens:     tokensPath,
			NumThreads: config.NumThreads,
			Debug:      0,
		},
	}

	recognizer := sherpa.NewOfflineRecognizer(&sherpaConfig)
	if recognizer == nil {
		return nil, fmt.Errorf("failed to create ReazonSpeech recognizer")
	}

	return &ReazonSpeechRecognizer{
		recognizer: recognizer,
		config:     config,
	}, nil
}

// Close releases the recognizer resources
func (r *ReazonSpeechRecognizer) Close() {
	if r.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(r.recognizer)
		r.recognizer = nil
	}
}

// Transcribe transcribes an audio file using ReazonSpeech
func (r *ReazonSpeechRecognizer) Transcribe(inputPath string, onProgress ProgressCallback) (*Result, error) {
	return transcribeChunked(r.recognizer, r.config, inputPath, reazonChunkSec, onProgress)
}
