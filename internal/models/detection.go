package models

import "time"

// Detection は1音声ファイルに対するマーカー検出結果
type Detection struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"source_id"`
	FilePath    string    `json:"file_path"`
	Model       string    `json:"model"`
	Transitions []float64 `json:"transitions"`          // マーカー発話終了時点（秒）
	Transcript  string    `json:"transcript,omitempty"` // asr.Result JSON
	CreatedAt   time.Time `json:"created_at"`
}
