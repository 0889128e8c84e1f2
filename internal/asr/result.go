package asr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Word is the smallest timed unit produced by a recognizer.
// Text may be a sub-word fragment depending on the model's tokenizer.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"` // in seconds
	End   float64 `json:"end"`   // in seconds
}

// Segment represents a contiguous span of transcribed speech
type Segment struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"` // in seconds
	EndTime   float64 `json:"end_time"`   // in seconds
	Words     []Word  `json:"words,omitempty"`
}

// Result represents the complete transcription result
type Result struct {
	Text     string    `json:"text"`               // full transcription text
	Segments []Segment `json:"segments,omitempty"` // pause-delimited segments with word timing
	Duration float64   `json:"duration"`           // audio duration covered, in seconds
}

// FormatAsText returns the transcription as plain text
func (r *Result) FormatAsText() string {
	return r.Text
}

// FormatAsJSON returns the transcription as formatted JSON
func (r *Result) FormatAsJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// buildResult assembles a Result from an ordered word sequence
func buildResult(words []Word, segmentGap float64) *Result {
	segments := GroupWords(words, segmentGap)

	var text strings.Builder
	for _, w := range words {
		text.WriteString(w.Text)
	}

	var duration float64
	if len(words) > 0 {
		duration = words[len(words)-1].End
	}

	return &Result{
		Text:     text.String(),
		Segments: segments,
		Duration: duration,
	}
}
