package asr

import "strings"

// DefaultSegmentGap is the pause length in seconds that starts a new segment
const DefaultSegmentGap = 0.7

// GroupWords splits an ordered word sequence into segments at pauses longer
// than maxGap seconds. Each segment carries the concatenated text of its
// words plus the original word timing.
func GroupWords(words []Word, maxGap float64) []Segment {
	if maxGap <= 0 {
		maxGap = DefaultSegmentGap
	}

	var segments []Segment
	var current []Word

	flush := func() {
		if len(current) == 0 {
			return
		}
		segments = append(segments, newSegment(current))
		current = nil
	}

	for _, w := range words {
		if len(current) > 0 && w.Start-current[len(current)-1].End > maxGap {
			flush()
		}
		current = append(current, w)
	}
	flush()

	return segments
}

func newSegment(words []Word) Segment {
	var text strings.Builder
	for _, w := range words {
		text.WriteString(w.Text)
	}

	return Segment{
		Text:      text.String(),
		StartTime: words[0].Start,
		EndTime:   words[len(words)-1].End,
		Words:     append([]Word(nil), words...),
	}
}
