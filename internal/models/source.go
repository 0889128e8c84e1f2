package models

import "time"

// Source は取り込んだ音声ソース
type Source struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	FilePath  string    `json:"file_path,omitempty"`
	Metadata  string    `json:"metadata,omitempty"` // JSON: files, title, etc.
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ソースタイプ
const (
	SourceTypeAudio   = "audio"
	SourceTypeYouTube = "youtube"
)

// ソースステータス
const (
	SourceStatusPending    = "pending"
	SourceStatusProcessing = "processing"
	SourceStatusCompleted  = "completed"
	SourceStatusFailed     = "failed"
)

// SourceMetadata はSource.Metadataに格納するJSONの中身
type SourceMetadata struct {
	Files    []string `json:"files"`
	Title    string   `json:"title,omitempty"`
	URL      string   `json:"url,omitempty"`
	Duration float64  `json:"duration,omitempty"` // 合計音声長（秒）
}
