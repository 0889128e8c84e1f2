// Package marker scans word-level transcription output for the fixed
// slide-transition phrase 「次のスライドに進んでください」 spoken by the
// narrator, and reports when each occurrence ends.
package marker

import (
	"math"
	"strings"

	"slidemark/internal/asr"
)

const (
	// slideKeyword is the distinctive part of the transition phrase.
	// Matching on the keyword alone is intentional: the phrase-final verb
	// (「進んで」) is prone to misrecognition, while 「スライド」 rarely
	// appears outside the transition phrase in narration audio.
	slideKeyword = "スライド"

	// requestWord marks the end of the transition phrase
	requestWord = "ください"

	// lookbackWords bounds how far before the request word the keyword may
	// start. The recognizer tokenizes at sub-word granularity (e.g. "ス"
	// "ライ" "ド"), so the keyword is matched against the concatenation of
	// the preceding tokens rather than any single one. The bound keeps an
	// unrelated keyword earlier in the segment from qualifying.
	lookbackWords = 8
)

// Detect returns the timestamps, in seconds, at which the narrator finished
// saying the transition phrase. Timestamps are rounded to 2 decimal places
// and follow segment order. A segment contributes at most one timestamp:
// the first qualifying request word wins.
func Detect(segments []asr.Segment) []float64 {
	transitions := make([]float64, 0)

	for _, seg := range segments {
		if !strings.Contains(seg.Text, slideKeyword) {
			continue
		}
		if len(seg.Words) == 0 {
			continue
		}

		for i := range seg.Words {
			if !strings.Contains(seg.Words[i].Text, requestWord) {
				continue
			}

			start := i - lookbackWords
			if start < 0 {
				start = 0
			}

			var preceding strings.Builder
			for j := start; j < i; j++ {
				preceding.WriteString(seg.Words[j].Text)
			}

			if strings.Contains(preceding.String(), slideKeyword) {
				transitions = append(transitions, round2(seg.Words[i].End))
				break
			}
		}
	}

	return transitions
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
