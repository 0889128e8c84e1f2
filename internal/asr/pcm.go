package asr

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"strings"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

// pcmDecoder streams ffmpeg's decoded PCM output and keeps its stderr for
// error reporting
type pcmDecoder struct {
	cmd    *exec.Cmd
	reader io.Reader
	stderr bytes.Buffer
}

// startPCMDecode launches ffmpeg decoding inputPath to 16-bit mono PCM
// at the given sample rate, streamed over stdout
func startPCMDecode(inputPath string, sampleRate int) (*pcmDecoder, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: please install ffmpeg to decode audio files")
	}

	dec := &pcmDecoder{}
	dec.cmd = exec.Command("ffmpeg",
		"-i", inputPath,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", "1",
		"-loglevel", "error",
		"pipe:1",
	)
	dec.cmd.Stderr = &dec.stderr

	stdout, err := dec.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	dec.reader = bufio.NewReader(stdout)

	if err := dec.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return dec, nil
}

// wait reaps the ffmpeg process. A nonzero exit means the input could not
// be decoded, so the collected stderr is surfaced to the caller.
func (d *pcmDecoder) wait() error {
	if err := d.cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(d.stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg decode failed: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg decode failed: %w", err)
	}
	return nil
}

// bytesToFloat32 converts little-endian 16-bit PCM bytes to float32 samples
func bytesToFloat32(data []byte) []float32 {
	samples := make([]float32, len(data)/2)
	for i := 0; i < len(samples); i++ {
		sample := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(sample) / 32768.0
	}
	return samples
}

// transcribeChunked feeds the decoded audio to the recognizer in fixed-size
// chunks and collects the recognized words across the whole file
func transcribeChunked(recognizer *sherpa.OfflineRecognizer, config *Config, inputPath string, chunkSec int, onProgress ProgressCallback) (*Result, error) {
	if onProgress != nil {
		onProgress(10, "converting")
	}

	// Duration is only needed for progress reporting
	duration, _ := GetAudioDuration(inputPath)

	dec, err := startPCMDecode(inputPath, config.SampleRate)
	if err != nil {
		return nil, err
	}

	chunkBytes := config.SampleRate * chunkSec * 2

	var allWords []Word
	var processedSamples int64
	chunkNum := 0

	if onProgress != nil {
		onProgress(20, "transcribing")
	}

	for {
		buffer := make([]byte, chunkBytes)
		n, err := io.ReadFull(dec.reader, buffer)
		if n == 0 {
			break
		}

		samples := bytesToFloat32(buffer[:n])
		offset := float64(processedSamples) / float64(config.SampleRate)
		processedSamples += int64(len(samples))
		chunkNum++

		words := decodeChunk(recognizer, config.SampleRate, samples, offset)
		allWords = append(allWords, words...)

		if onProgress != nil && duration > 0 {
			progress := 20 + int(60*float64(processedSamples)/float64(config.SampleRate)/duration)
			if progress > 80 {
				progress = 80
			}
			onProgress(progress, fmt.Sprintf("chunk %d", chunkNum))
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
	}

	if err := dec.wait(); err != nil {
		return nil, err
	}

	if onProgress != nil {
		onProgress(90, "finalizing")
	}

	return buildResult(allWords, config.SegmentGap), nil
}

// decodeChunk runs the recognizer over a single chunk of samples
func decodeChunk(recognizer *sherpa.OfflineRecognizer, sampleRate int, samples []float32, offset float64) []Word {
	if len(samples) == 0 {
		return nil
	}

	stream := sherpa.NewOfflineStream(recognizer)
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(sampleRate, samples)
	recognizer.Decode(stream)

	result := stream.GetResult()
	if result == nil {
		return nil
	}

	chunkDuration := float64(len(samples)) / float64(sampleRate)
	return wordsFromResult(result, offset, chunkDuration)
}

// wordsFromResult converts recognizer tokens to timed words. Whisper models
// do not always report per-token timestamps; when absent the chunk duration
// is distributed uniformly across the tokens.
func wordsFromResult(result *sherpa.OfflineRecognizerResult, offset, chunkDuration float64) []Word {
	if result == nil || len(result.Tokens) == 0 {
		return nil
	}

	if len(result.Timestamps) == 0 {
		return distributeWords(result.Tokens, offset, chunkDuration)
	}

	words := make([]Word, 0, len(result.Tokens))
	for i, text := range result.Tokens {
		if text == "" {
			continue
		}

		var start, duration float64
		if i < len(result.Timestamps) {
			start = float64(result.Timestamps[i])
		}
		if i < len(result.Durations) {
			duration = float64(result.Durations[i])
		}

		words = append(words, Word{
			Text:  text,
			Start: offset + start,
			End:   offset + start + duration,
		})
	}

	return words
}

// distributeWords assigns uniform timestamps to tokens across the chunk
func distributeWords(tokens []string, offset, chunkDuration float64) []Word {
	var valid []string
	for _, t := range tokens {
		if t != "" {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	per := chunkDuration / float64(len(valid))

	words := make([]Word, len(valid))
	for i, t := range valid {
		start := offset + float64(i)*per
		words[i] = Word{Text: t, Start: start, End: start + per}
	}
	return words
}
