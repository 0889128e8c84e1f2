package asr

import "testing"

func TestGroupWords(t *testing.T) {
	tests := []struct {
		name      string
		words     []Word
		maxGap    float64
		wantCount int
	}{
		{
			name:      "no words",
			words:     nil,
			maxGap:    0.7,
			wantCount: 0,
		},
		{
			name: "continuous speech stays in one segment",
			words: []Word{
				{Text: "おはよう", Start: 0, End: 0.5},
				{Text: "ございます", Start: 0.5, End: 1.2},
			},
			maxGap:    0.7,
			wantCount: 1,
		},
		{
			name: "long pause starts a new segment",
			words: []Word{
				{Text: "おはよう", Start: 0, End: 0.5},
				{Text: "ございます", Start: 0.5, End: 1.2},
				{Text: "次", Start: 3.0, End: 3.2},
				{Text: "の", Start: 3.2, End: 3.3},
			},
			maxGap:    0.7,
			wantCount: 2,
		},
		{
			name: "gap exactly at threshold does not split",
			words: []Word{
				{Text: "あ", Start: 0, End: 0.5},
				{Text: "い", Start: 1.2, End: 1.5},
			},
			maxGap:    0.7,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupWords(tt.words, tt.maxGap)
			if len(got) != tt.wantCount {
				t.Errorf("got %d segments, want %d", len(got), tt.wantCount)
				for i, seg := range got {
					t.Logf("  segment %d: %.2f - %.2f %q", i, seg.StartTime, seg.EndTime, seg.Text)
				}
			}
		})
	}
}

func TestGroupWords_SegmentShape(t *testing.T) {
	words := []Word{
		{Text: "次", Start: 10.0, End: 10.2},
		{Text: "の", Start: 10.2, End: 10.3},
		{Text: "ス", Start: 10.3, End: 10.5},
		{Text: "ライ", Start: 10.5, End: 10.7},
		{Text: "ド", Start: 10.7, End: 10.9},
	}

	segments := GroupWords(words, 0.7)
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}

	seg := segments[0]
	if seg.Text != "次のスライド" {
		t.Errorf("segment text = %q, want %q", seg.Text, "次のスライド")
	}
	if seg.StartTime != 10.0 {
		t.Errorf("start time = %v, want 10.0", seg.StartTime)
	}
	if seg.EndTime != 10.9 {
		t.Errorf("end time = %v, want 10.9", seg.EndTime)
	}
	if len(seg.Words) != len(words) {
		t.Errorf("segment has %d words, want %d", len(seg.Words), len(words))
	}
}

func TestGroupWords_DefaultGap(t *testing.T) {
	words := []Word{
		{Text: "あ", Start: 0, End: 0.2},
		{Text: "い", Start: 5.0, End: 5.2},
	}

	// maxGap <= 0 falls back to DefaultSegmentGap
	segments := GroupWords(words, 0)
	if len(segments) != 2 {
		t.Errorf("got %d segments, want 2", len(segments))
	}
}
