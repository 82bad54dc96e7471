package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medalt/backend/internal/domain"
	"github.com/medalt/backend/internal/infrastructure/upload"
	"github.com/medalt/backend/internal/logging"
)

const (
	msgNoMedicineName = "No medicine name provided"
	msgDatasetEmpty   = "Dataset is empty."
	msgNoMatch        = "No similar medicine found."
)

// AlternativesFinder is the use case behind the search endpoints
type AlternativesFinder interface {
	FindAlternatives(ctx context.Context, medicineName string, topN int) (*domain.AlternativesResult, error)
	Stats() domain.CatalogStats
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	alternatives AlternativesFinder
	attachments  domain.AttachmentStore
}

// NewHandler creates a new HTTP handler. Either dependency may be nil; the
// endpoints that need it then answer 503.
func NewHandler(alternatives AlternativesFinder, attachments domain.AttachmentStore) *Handler {
	return &Handler{
		alternatives: alternatives,
		attachments:  attachments,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "medalt-backend",
		"version": "1.0.0",
	})
}

// SearchAlternatives handles POST /predict and POST /api/v1/alternatives/search
func (h *Handler) SearchAlternatives(c *gin.Context) {
	if h.alternatives == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Alternatives service not configured"})
		return
	}

	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoMedicineName})
		return
	}

	result, err := h.alternatives.FindAlternatives(c.Request.Context(), req.MedicineName, req.TopN)
	if err != nil {
		h.writeSearchError(c, req.MedicineName, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// writeSearchError maps use case errors onto responses
func (h *Handler) writeSearchError(c *gin.Context, query string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoMedicineName})
	case errors.Is(err, domain.ErrDatasetEmpty):
		c.JSON(http.StatusOK, emptyResult(msgDatasetEmpty))
	case errors.Is(err, domain.ErrNoMatch):
		c.JSON(http.StatusOK, emptyResult(msgNoMatch))
	default:
		log := logging.Component("http")
		log.Error().
			Err(err).
			Str("request_id", c.GetString(requestIDKey)).
			Str("query", query).
			Msg("alternatives search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func emptyResult(message string) gin.H {
	return gin.H{
		"match":        nil,
		"message":      message,
		"alternatives": []domain.MatchResult{},
	}
}

// CatalogStats returns a summary of the loaded catalog
func (h *Handler) CatalogStats(c *gin.Context) {
	if h.alternatives == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Alternatives service not configured"})
		return
	}
	c.JSON(http.StatusOK, h.alternatives.Stats())
}

// Upload stores a multipart "file" attachment and returns its URL
func (h *Handler) Upload(c *gin.Context) {
	if h.attachments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Uploads not configured"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}
	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No selected file"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read file"})
		return
	}
	defer f.Close()

	name, err := h.attachments.Save(c.Request.Context(), header.Filename, f)
	switch {
	case errors.Is(err, domain.ErrFileTypeNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		return
	case errors.Is(err, domain.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	case err != nil:
		log := logging.Component("http")
		log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": hostURL(c) + "uploads/" + name})
}

// ServeUpload streams a previously uploaded file
func (h *Handler) ServeUpload(c *gin.Context) {
	if h.attachments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Uploads not configured"})
		return
	}

	path, err := h.attachments.Path(c.Param("filename"))
	if err != nil {
		if upload.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.File(path)
}

// hostURL returns scheme://host/ for the current request. Only http and https
// are taken from X-Forwarded-Proto.
func hostURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	switch proto := strings.ToLower(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto"))); proto {
	case "http", "https":
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + "/"
}
