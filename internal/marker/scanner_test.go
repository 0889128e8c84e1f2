package marker

import (
	"reflect"
	"testing"

	"slidemark/internal/asr"
)

// phraseWords builds the sub-word token sequence the recognizer typically
// produces for 「次のスライドに進んでください」, ending at endTime.
func phraseWords(endTime float64) []asr.Word {
	texts := []string{"次", "の", "ス", "ライ", "ド", "に", "進ん", "で", "ください"}
	words := make([]asr.Word, len(texts))
	step := 0.3
	start := endTime - float64(len(texts))*step
	for i, t := range texts {
		words[i] = asr.Word{
			Text:  t,
			Start: start + float64(i)*step,
			End:   start + float64(i+1)*step,
		}
	}
	words[len(words)-1].End = endTime
	return words
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		segments []asr.Segment
		want     []float64
	}{
		{
			name:     "no segments",
			segments: nil,
			want:     []float64{},
		},
		{
			name: "transition phrase with fragmented keyword",
			segments: []asr.Segment{
				{Text: "次のスライドに進んでください", Words: phraseWords(35.76)},
			},
			want: []float64{35.76},
		},
		{
			name: "segment without keyword never emits",
			segments: []asr.Segment{
				{
					Text: "それでは始めてください",
					Words: []asr.Word{
						{Text: "それでは", Start: 0, End: 0.5},
						{Text: "始めて", Start: 0.5, End: 1.0},
						{Text: "ください", Start: 1.0, End: 1.5},
					},
				},
			},
			want: []float64{},
		},
		{
			name: "keyword in text but no word tokens",
			segments: []asr.Segment{
				{Text: "次のスライドに進んでください", Words: nil},
			},
			want: []float64{},
		},
		{
			name: "keyword without request word",
			segments: []asr.Segment{
				{
					Text: "このスライドでは概要を説明します",
					Words: []asr.Word{
						{Text: "この", Start: 0, End: 0.3},
						{Text: "ス", Start: 0.3, End: 0.5},
						{Text: "ライ", Start: 0.5, End: 0.7},
						{Text: "ド", Start: 0.7, End: 0.9},
						{Text: "では", Start: 0.9, End: 1.2},
					},
				},
			},
			want: []float64{},
		},
		{
			name: "keyword outside the 8-word lookback window",
			segments: []asr.Segment{
				{
					Text: "スライドの内容はこの後ゆっくり見ていってください",
					Words: []asr.Word{
						{Text: "ス", Start: 0, End: 0.2},
						{Text: "ライ", Start: 0.2, End: 0.4},
						{Text: "ド", Start: 0.4, End: 0.6},
						{Text: "の", Start: 0.6, End: 0.8},
						{Text: "内容", Start: 0.8, End: 1.0},
						{Text: "は", Start: 1.0, End: 1.2},
						{Text: "この", Start: 1.2, End: 1.4},
						{Text: "後", Start: 1.4, End: 1.6},
						{Text: "ゆっくり", Start: 1.6, End: 1.8},
						{Text: "見", Start: 1.8, End: 2.0},
						{Text: "て", Start: 2.0, End: 2.2},
						{Text: "いって", Start: 2.2, End: 2.4},
						{Text: "ください", Start: 2.4, End: 2.6},
					},
				},
			},
			want: []float64{},
		},
		{
			name: "first qualifying request word wins",
			segments: []asr.Segment{
				{
					Text:  "次のスライドに進んでください次のスライドに進んでください",
					Words: append(phraseWords(10.0), phraseWords(20.0)...),
				},
			},
			want: []float64{10.0},
		},
		{
			name: "multiple segments keep order",
			segments: []asr.Segment{
				{Text: "次のスライドに進んでください", Words: phraseWords(35.76)},
				{
					Text: "ここからが本題です",
					Words: []asr.Word{
						{Text: "ここから", Start: 40, End: 41},
						{Text: "が", Start: 41, End: 41.5},
						{Text: "本題", Start: 41.5, End: 42},
						{Text: "です", Start: 42, End: 42.5},
					},
				},
				{Text: "次のスライドに進んでください", Words: phraseWords(99.18)},
			},
			want: []float64{35.76, 99.18},
		},
		{
			name: "end time is rounded to 2 decimals",
			segments: []asr.Segment{
				{Text: "次のスライドに進んでください", Words: phraseWords(148.4961)},
			},
			want: []float64{148.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.segments)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
			if len(got) > len(tt.segments) {
				t.Errorf("emitted %d timestamps for %d segments", len(got), len(tt.segments))
			}
		})
	}
}

func TestDetect_Idempotent(t *testing.T) {
	segments := []asr.Segment{
		{Text: "次のスライドに進んでください", Words: phraseWords(35.76)},
		{Text: "次のスライドに進んでください", Words: phraseWords(99.18)},
	}

	first := Detect(segments)
	second := Detect(segments)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs differ: %v vs %v", first, second)
	}
}

func TestDetect_NonDecreasing(t *testing.T) {
	segments := []asr.Segment{
		{Text: "次のスライドに進んでください", Words: phraseWords(35.76)},
		{Text: "次のスライドに進んでください", Words: phraseWords(99.18)},
		{Text: "次のスライドに進んでください", Words: phraseWords(148.50)},
	}

	got := Detect(segments)
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Errorf("timestamps not in non-decreasing order: %v", got)
		}
	}
}
