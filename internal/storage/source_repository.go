package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"slidemark/internal/models"
)

// SourceRepository はソースのデータアクセス層
type SourceRepository struct {
	db *DB
}

// NewSourceRepository は新しいSourceRepositoryを作成
func NewSourceRepository(db *DB) *SourceRepository {
	return &SourceRepository{db: db}
}

const sourceColumns = `id, type, file_path, metadata, status, created_at, updated_at`

// Create は新しいソースを作成
func (r *SourceRepository) Create(ctx context.Context, source *models.Source) error {
	if source.ID == "" {
		source.ID = uuid.New().String()
	}
	if source.Status == "" {
		source.Status = models.SourceStatusPending
	}
	now := time.Now()
	source.CreatedAt = now
	source.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sources (`+sourceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		source.ID, source.Type, nullString(source.FilePath),
		nullString(source.Metadata), source.Status,
		source.CreatedAt, source.UpdatedAt)
	return err
}

// GetByID はIDでソースを取得
func (r *SourceRepository) GetByID(ctx context.Context, id string) (*models.Source, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id)
	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return source, nil
}

// UpdateStatus はソースのステータスを更新
func (r *SourceRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sources SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	return err
}

// ListRecent は最近のソース一覧を取得
func (r *SourceRepository) ListRecent(ctx context.Context, limit int) ([]models.Source, error) {
	if limit == 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM sources ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []models.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *source)
	}
	return sources, rows.Err()
}

// Delete はソースを削除
func (r *SourceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	return err
}

func scanSource(row rowScanner) (*models.Source, error) {
	var source models.Source
	var filePath, metadata sql.NullString

	err := row.Scan(&source.ID, &source.Type, &filePath, &metadata,
		&source.Status, &source.CreatedAt, &source.UpdatedAt)
	if err != nil {
		return nil, err
	}

	source.FilePath = filePath.String
	source.Metadata = metadata.String
	return &source, nil
}
