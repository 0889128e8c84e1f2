package asr

import "fmt"

// ProgressCallback is called to report progress during transcription
type ProgressCallback func(progress int, step string)

// Provider transcribes an audio file into timestamped segments.
// Implementations wrap a specific sherpa-onnx model family.
type Provider interface {
	Transcribe(audioPath string, onProgress ProgressCallback) (*Result, error)
	Close()
}

// NewProvider creates the recognizer selected by the configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Model == ModelReazonSpeech {
		return NewReazonSpeechRecognizer(config)
	}
	return NewWhisperRecognizer(config)
}
