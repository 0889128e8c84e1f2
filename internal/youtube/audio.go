package youtube

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"
)

// DownloadAudioOptions configures DownloadAudio
type DownloadAudioOptions struct {
	// Language prefers an audio track whose language ID or display name
	// starts with / contains this value (e.g. "ja", "japanese"). Empty
	// picks the highest-bitrate track.
	Language string
	// OutputPath is the destination file. Derived from the video title
	// and track MIME type when empty.
	OutputPath string
}

// DownloadAudio fetches the audio-only stream of a video and writes it to
// disk, returning the saved path. A partially written file is removed on
// failure.
func (c *Client) DownloadAudio(ctx context.Context, videoURL string, opts *DownloadAudioOptions) (string, error) {
	if opts == nil {
		opts = &DownloadAudioOptions{}
	}

	video, err := c.inner.GetVideo(videoURL)
	if err != nil {
		return "", fmt.Errorf("failed to get video: %w", err)
	}

	track := pickAudioTrack(video.Formats, opts.Language)
	if track == nil {
		return "", fmt.Errorf("no audio-only format available for %s", video.ID)
	}

	stream, _, err := c.inner.GetStreamContext(ctx, video, track)
	if err != nil {
		return "", fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = sanitizeFilename(video.Title) + extensionFor(track.MimeType)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, stream); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("failed to download: %w", err)
	}

	return outputPath, nil
}

// pickAudioTrack returns the best audio-only format: language-matching
// tracks first when a language is given, highest bitrate wins. Returns
// nil when no audio-only format exists.
func pickAudioTrack(formats ytdl.FormatList, language string) *ytdl.Format {
	lang := strings.ToLower(language)

	var best *ytdl.Format
	bestMatches := false
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}

		matches := lang != "" && trackMatchesLanguage(f, lang)
		switch {
		case best == nil,
			matches && !bestMatches,
			matches == bestMatches && f.Bitrate > best.Bitrate:
			best = f
			bestMatches = matches
		}
	}
	return best
}

// trackMatchesLanguage reports whether the format's audio track matches a
// lowercase language query. Track IDs look like "ja.4", display names like
// "Japanese (original)".
func trackMatchesLanguage(f *ytdl.Format, lang string) bool {
	if f.AudioTrack == nil {
		return false
	}
	if strings.HasPrefix(strings.ToLower(f.AudioTrack.ID), lang) {
		return true
	}
	return strings.Contains(strings.ToLower(f.AudioTrack.DisplayName), lang)
}

func extensionFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "mp4"):
		return ".m4a"
	case strings.Contains(mimeType, "webm"):
		return ".webm"
	}
	return ".audio"
}

// sanitizeFilename はファイル名として使えない文字を置換
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
