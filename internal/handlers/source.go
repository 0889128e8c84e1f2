package handlers

import (
	"net/http"
	"os"
	"strconv"

	"slidemark/internal/models"
	"slidemark/internal/storage"

	"github.com/labstack/echo/v4"
)

// SourceHandler はソースAPIのハンドラー
type SourceHandler struct {
	sourceRepo *storage.SourceRepository
	jobRepo    *storage.JobRepository
}

// NewSourceHandler は新しいSourceHandlerを作成
func NewSourceHandler(sourceRepo *storage.SourceRepository, jobRepo *storage.JobRepository) *SourceHandler {
	return &SourceHandler{sourceRepo: sourceRepo, jobRepo: jobRepo}
}

// List はソース一覧を取得
// GET /api/sources
func (h *SourceHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	sources, err := h.sourceRepo.ListRecent(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, sources)
}

// Get はソースとそのジョブを取得
// GET /api/sources/:id
func (h *SourceHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	source, err := h.sourceRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if source == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "source not found"})
	}

	jobs, err := h.jobRepo.GetBySourceID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"source": source,
		"jobs":   jobs,
	})
}

// Delete はソースと保存ファイルを削除（ジョブ・検出結果はCASCADEで消える）
// DELETE /api/sources/:id
func (h *SourceHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	source, err := h.sourceRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if source == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "source not found"})
	}

	jobs, err := h.jobRepo.GetBySourceID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	for _, job := range jobs {
		if job.Status == models.JobStatusRunning {
			return c.JSON(http.StatusConflict, map[string]string{"error": "source has a running job"})
		}
	}

	if err := h.sourceRepo.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if source.FilePath != "" {
		if err := os.RemoveAll(source.FilePath); err != nil {
			c.Logger().Warnf("failed to remove source files: %v", err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}
