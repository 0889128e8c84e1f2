package asr

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

func TestIsSupportedFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"lecture.mp3", true},
		{"lecture.MP3", true},
		{"lecture.m4a", true},
		{"lecture.wav", true},
		{"lecture.txt", false},
		{"lecture", false},
	}

	for _, tt := range tests {
		if got := IsSupportedFormat(tt.filename); got != tt.want {
			t.Errorf("IsSupportedFormat(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestBytesToFloat32(t *testing.T) {
	// 0x7FFF is the max positive 16-bit sample, 0x8000 the min negative
	data := []byte{0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00}
	samples := bytesToFloat32(data)

	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	if samples[0] < 0.999 || samples[0] > 1.0 {
		t.Errorf("max sample = %v, want ~1.0", samples[0])
	}
	if samples[1] != -1.0 {
		t.Errorf("min sample = %v, want -1.0", samples[1])
	}
	if samples[2] != 0 {
		t.Errorf("zero sample = %v, want 0", samples[2])
	}
}

func TestWordsFromResult_WithTimestamps(t *testing.T) {
	result := &sherpa.OfflineRecognizerResult{
		Text:       "スライド",
		Tokens:     []string{"ス", "ライ", "ド"},
		Timestamps: []float32{0.0, 0.2, 0.4},
		Durations:  []float32{0.2, 0.2, 0.2},
	}

	words := wordsFromResult(result, 30.0, 30.0)
	if len(words) != 3 {
		t.Fatalf("got %d words, want 3", len(words))
	}
	if words[0].Start != 30.0 {
		t.Errorf("first word start = %v, want 30.0", words[0].Start)
	}
	if words[2].End != 30.6 {
		t.Errorf("last word end = %v, want 30.6", words[2].End)
	}
}

func TestWordsFromResult_UniformFallback(t *testing.T) {
	// Whisper models may omit per-token timestamps entirely
	result := &sherpa.OfflineRecognizerResult{
		Text:   "次のスライド",
		Tokens: []string{"次", "の", "ス", "ライ", "ド"},
	}

	words := wordsFromResult(result, 0, 10.0)
	if len(words) != 5 {
		t.Fatalf("got %d words, want 5", len(words))
	}
	if words[0].Start != 0 {
		t.Errorf("first word start = %v, want 0", words[0].Start)
	}
	if words[4].End != 10.0 {
		t.Errorf("last word end = %v, want 10.0", words[4].End)
	}
	for i := 1; i < len(words); i++ {
		if words[i].Start != words[i-1].End {
			t.Errorf("word %d not contiguous: start %v after end %v", i, words[i].Start, words[i-1].End)
		}
	}
}

func TestResolveModelDir(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "whisper variant under models root",
			config: Config{Model: ModelSmall, ModelsRoot: "models"},
			want:   "models/sherpa-onnx-whisper-small",
		},
		{
			name:   "reazonspeech variant",
			config: Config{Model: ModelReazonSpeech, ModelsRoot: "models"},
			want:   "models/" + reazonSpeechModelDir,
		},
		{
			name:   "explicit model dir wins",
			config: Config{Model: ModelSmall, ModelDir: "/opt/whisper"},
			want:   "/opt/whisper",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.ResolveModelDir(); got != tt.want {
				t.Errorf("ResolveModelDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranscribeChunked_UndecodableInput(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	// Not audio: ffmpeg produces no PCM and exits nonzero. The recognizer
	// is never reached, so nil is safe here.
	path := filepath.Join(t.TempDir(), "broken.mp3")
	if err := os.WriteFile(path, []byte("this is not audio data"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := transcribeChunked(nil, DefaultConfig(""), path, 30, nil)
	if err == nil {
		t.Fatal("expected an error for undecodable input, got nil")
	}
}

func TestBuildResult(t *testing.T) {
	words := []Word{
		{Text: "次", Start: 0, End: 0.2},
		{Text: "の", Start: 0.2, End: 0.3},
		{Text: "ス", Start: 2.0, End: 2.2},
		{Text: "ライ", Start: 2.2, End: 2.4},
		{Text: "ド", Start: 2.4, End: 2.6},
	}

	result := buildResult(words, 0.7)
	if result.Text != "次のスライド" {
		t.Errorf("text = %q, want %q", result.Text, "次のスライド")
	}
	if len(result.Segments) != 2 {
		t.Errorf("got %d segments, want 2", len(result.Segments))
	}
	if result.Duration != 2.6 {
		t.Errorf("duration = %v, want 2.6", result.Duration)
	}
}
