package asr

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// wavFormat holds the fields of a WAV fmt chunk needed for peak extraction
type wavFormat struct {
	numChannels   int
	sampleRate    int
	bitsPerSample int
	dataSize      int64
}

// ComputeWaveformPeaks reads a 16-bit WAV file and returns peak amplitudes
// normalized to 0-1, at the requested resolution, plus the audio duration
// in seconds. Used to line detected markers up against the audio visually.
func ComputeWaveformPeaks(wavPath string, peaksPerSec float64) ([]float64, float64, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	format, err := readWavHeader(f)
	if err != nil {
		return nil, 0, err
	}
	if format.bitsPerSample != 16 {
		return nil, 0, fmt.Errorf("only 16-bit WAV files are supported, got %d-bit", format.bitsPerSample)
	}

	frameBytes := 2 * format.numChannels
	totalFrames := int(format.dataSize) / frameBytes
	duration := float64(totalFrames) / float64(format.sampleRate)

	numPeaks := int(duration * peaksPerSec)
	if numPeaks <= 0 {
		numPeaks = 1
	}
	framesPerPeak := totalFrames / numPeaks
	if framesPerPeak <= 0 {
		framesPerPeak = 1
	}

	peaks := make([]float64, numPeaks)
	buffer := make([]byte, framesPerPeak*frameBytes)

	for i := 0; i < numPeaks; i++ {
		n, err := io.ReadFull(f, buffer)
		if n == 0 {
			break
		}

		// First channel only
		var peak float64
		for off := 0; off+1 < n; off += frameBytes {
			sample := int16(binary.LittleEndian.Uint16(buffer[off : off+2]))
			if v := math.Abs(float64(sample)); v > peak {
				peak = v
			}
		}
		peaks[i] = peak / float64(1<<15)

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
	}

	return peaks, duration, nil
}

// readWavHeader parses the RIFF header and chunk list up to the data chunk,
// leaving the reader positioned at the start of the sample data
func readWavHeader(f *os.File) (*wavFormat, error) {
	riff := make([]byte, 12)
	if _, err := io.ReadFull(f, riff); err != nil {
		return nil, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	format := &wavFormat{}
	foundFmt := false

	for {
		header := make([]byte, 8)
		if _, err := io.ReadFull(f, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("data chunk not found")
			}
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkID := string(header[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(header[4:8]))

		switch chunkID {
		case "fmt ":
			fmtData := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, fmtData); err != nil {
				return nil, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			if len(fmtData) < 16 {
				return nil, fmt.Errorf("fmt chunk too short")
			}
			format.numChannels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
			format.sampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
			format.bitsPerSample = int(binary.LittleEndian.Uint16(fmtData[14:16]))
			foundFmt = true

		case "data":
			if !foundFmt {
				return nil, fmt.Errorf("fmt chunk not found")
			}
			format.dataSize = chunkSize
			return format, nil

		default:
			// Skip LIST, INFO and other chunks
			if _, err := f.Seek(chunkSize, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("failed to skip chunk %s: %w", chunkID, err)
			}
		}

		// Chunks are padded to an even byte boundary
		if chunkSize%2 != 0 {
			if _, err := f.Seek(1, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("failed to skip chunk padding: %w", err)
			}
		}
	}
}
