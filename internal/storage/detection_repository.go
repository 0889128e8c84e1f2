package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"slidemark/internal/models"
)

// DetectionRepository はマーカー検出結果のデータアクセス層
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository は新しいDetectionRepositoryを作成
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

const detectionColumns = `id, source_id, file_path, model, transitions, transcript, created_at`

// Create は新しい検出結果を作成
func (r *DetectionRepository) Create(ctx context.Context, detection *models.Detection) error {
	if detection.ID == "" {
		detection.ID = uuid.New().String()
	}
	detection.CreatedAt = time.Now()

	if detection.Transitions == nil {
		detection.Transitions = []float64{}
	}
	transitions, err := json.Marshal(detection.Transitions)
	if err != nil {
		return fmt.Errorf("failed to marshal transitions: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO detections (`+detectionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		detection.ID, detection.SourceID, detection.FilePath, detection.Model,
		string(transitions), nullString(detection.Transcript), detection.CreatedAt)
	return err
}

// GetByID はIDで検出結果を取得
func (r *DetectionRepository) GetByID(ctx context.Context, id string) (*models.Detection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+detectionColumns+` FROM detections WHERE id = ?`, id)
	detection, err := scanDetection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return detection, nil
}

// ListBySourceID はソースIDで検出結果一覧を取得（ファイル処理順）
func (r *DetectionRepository) ListBySourceID(ctx context.Context, sourceID string) ([]models.Detection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+detectionColumns+` FROM detections
		 WHERE source_id = ? ORDER BY created_at ASC`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []models.Detection
	for rows.Next() {
		detection, err := scanDetection(rows)
		if err != nil {
			return nil, err
		}
		detections = append(detections, *detection)
	}
	return detections, rows.Err()
}

// DeleteBySourceID はソースの検出結果を削除（再検出前のクリア用）
func (r *DetectionRepository) DeleteBySourceID(ctx context.Context, sourceID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM detections WHERE source_id = ?`, sourceID)
	return err
}

func scanDetection(row rowScanner) (*models.Detection, error) {
	var detection models.Detection
	var transitions string
	var transcript sql.NullString

	err := row.Scan(&detection.ID, &detection.SourceID, &detection.FilePath,
		&detection.Model, &transitions, &transcript, &detection.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(transitions), &detection.Transitions); err != nil {
		return nil, fmt.Errorf("failed to parse transitions: %w", err)
	}
	detection.Transcript = transcript.String
	return &detection, nil
}
