package youtube

import (
	"testing"

	ytdl "github.com/kkdai/youtube/v2"
)

func audioFormat(mime string, bitrate int, trackID, trackName string) ytdl.Format {
	f := ytdl.Format{
		MimeType: mime,
		Bitrate:  bitrate,
	}
	if trackID != "" {
		f.AudioTrack = &struct {
			DisplayName    string `json:"displayName"`
			ID             string `json:"id"`
			AudioIsDefault bool   `json:"audioIsDefault"`
		}{
			ID:          trackID,
			DisplayName: trackName,
		}
	}
	return f
}

func TestPickAudioTrack(t *testing.T) {
	tests := []struct {
		name     string
		formats  ytdl.FormatList
		language string
		want     int // expected bitrate of the picked format, -1 for nil
	}{
		{
			name:    "no formats",
			formats: nil,
			want:    -1,
		},
		{
			name: "video-only formats are skipped",
			formats: ytdl.FormatList{
				audioFormat("video/mp4", 500000, "", ""),
			},
			want: -1,
		},
		{
			name: "highest bitrate wins without language",
			formats: ytdl.FormatList{
				audioFormat("audio/webm", 64000, "", ""),
				audioFormat("audio/mp4", 128000, "", ""),
				audioFormat("audio/mp4", 48000, "", ""),
			},
			want: 128000,
		},
		{
			name: "language match beats higher bitrate",
			formats: ytdl.FormatList{
				audioFormat("audio/mp4", 128000, "en.4", "English"),
				audioFormat("audio/mp4", 64000, "ja.4", "日本語"),
			},
			language: "ja",
			want:     64000,
		},
		{
			name: "display name match",
			formats: ytdl.FormatList{
				audioFormat("audio/mp4", 128000, "en.4", "English"),
				audioFormat("audio/mp4", 64000, "und", "Japanese (original)"),
			},
			language: "japanese",
			want:     64000,
		},
		{
			name: "falls back to best bitrate when language not found",
			formats: ytdl.FormatList{
				audioFormat("audio/mp4", 128000, "en.4", "English"),
				audioFormat("audio/webm", 96000, "en.4", "English"),
			},
			language: "ja",
			want:     128000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pickAudioTrack(tt.formats, tt.language)
			if tt.want == -1 {
				if got != nil {
					t.Fatalf("expected nil, got bitrate %d", got.Bitrate)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected bitrate %d, got nil", tt.want)
			}
			if got.Bitrate != tt.want {
				t.Errorf("picked bitrate = %d, want %d", got.Bitrate, tt.want)
			}
		})
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"audio/mp4; codecs=\"mp4a.40.2\"": ".m4a",
		"audio/webm; codecs=\"opus\"":     ".webm",
		"audio/ogg":                       ".audio",
	}
	for mime, want := range cases {
		if got := extensionFor(mime); got != want {
			t.Errorf("extensionFor(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	got := sanitizeFilename(`発表: "スライド" 1/2?`)
	want := "発表_ _スライド_ 1_2_"
	if got != want {
		t.Errorf("sanitizeFilename = %q, want %q", got, want)
	}
}
