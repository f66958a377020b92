package backup

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/servir-hc/internal/handler"
	"github.com/jwalitptl/servir-hc/internal/service/backup"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
)

type Handler struct {
	svc     *backup.Service
	appName string
}

func NewHandler(svc *backup.Service, appName string) *Handler {
	return &Handler{svc: svc, appName: appName}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	backups := r.Group("/backup")
	{
		backups.GET("/export", h.Export)
		backups.POST("/import", h.Import)
	}
}

// Export downloads the current user's backup document.
func (h *Handler) Export(c *gin.Context) {
	data, err := h.svc.ExportJSON(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	filename := backup.BackupFilename(h.appName, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import takes a backup document as the raw request body.
func (h *Handler) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest("failed to read request body", err))
		return
	}

	result, err := h.svc.Import(c.Request.Context(), data)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
