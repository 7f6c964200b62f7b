package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"graphv/internal/middleware"
	"graphv/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadHandler ingests workbooks.
type UploadHandler struct {
	svc      *services.GraphService
	log      *zap.Logger
	maxBytes int64
}

func NewUploadHandler(svc *services.GraphService, log *zap.Logger, maxBytes int64) *UploadHandler {
	return &UploadHandler{svc: svc, log: log, maxBytes: maxBytes}
}

// Upload handles POST /upload. On success the dataset becomes the session's
// current graph; any ingestion error aborts with an error page and no graph.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RenderError(c, http.StatusBadRequest, "Please choose an Excel file to upload")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" {
		RenderError(c, http.StatusBadRequest, "Only .xlsx workbooks are accepted")
		return
	}

	if header.Size > h.maxBytes {
		RenderError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("The workbook is larger than %d MB", h.maxBytes/(1024*1024)))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		RenderError(c, http.StatusBadRequest, "Could not read the uploaded file")
		return
	}
	if int64(len(data)) > h.maxBytes {
		RenderError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("The workbook is larger than %d MB", h.maxBytes/(1024*1024)))
		return
	}

	ds, err := h.svc.Load(c.Request.Context(), filepath.Base(header.Filename), data)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidWorkbook),
			errors.Is(err, services.ErrMissingSheet),
			errors.Is(err, services.ErrMissingColumn):
			h.log.Info("workbook rejected", zap.String("filename", header.Filename), zap.Error(err))
			RenderError(c, http.StatusBadRequest, msg(err))
		default:
			h.log.Error("workbook ingestion failed", zap.String("filename", header.Filename), zap.Error(err))
			RenderError(c, http.StatusInternalServerError, "Could not load the workbook")
		}
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionDatasetKey, ds.Hash)
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, msg(err))
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"dataset": ds})
		return
	}
	Redirect(c, "/")
}
