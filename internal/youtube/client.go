// Package youtube downloads audio tracks for marker detection.
package youtube

import (
	"time"

	ytdl "github.com/kkdai/youtube/v2"
)

// Client wraps the downloader library
type Client struct {
	inner ytdl.Client
}

// NewClient creates a client with default settings
func NewClient() *Client {
	return &Client{}
}

// VideoInfo は動画のメタ情報
type VideoInfo struct {
	ID       string
	Title    string
	Author   string
	Duration time.Duration
}

// GetVideo resolves a video URL or ID to its metadata
func (c *Client) GetVideo(url string) (*VideoInfo, error) {
	v, err := c.inner.GetVideo(url)
	if err != nil {
		return nil, err
	}
	return &VideoInfo{
		ID:       v.ID,
		Title:    v.Title,
		Author:   v.Author,
		Duration: v.Duration,
	}, nil
}
