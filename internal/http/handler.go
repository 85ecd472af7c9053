package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/phoenix-shipper/booking-docs/internal/http/middleware"
	"github.com/phoenix-shipper/booking-docs/internal/model"
	"github.com/phoenix-shipper/booking-docs/internal/service"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	documents *service.DocumentService
	log       zerolog.Logger
}

func NewHandler(documents *service.DocumentService, log zerolog.Logger) *Handler {
	return &Handler{documents: documents, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)

	protected := router.Group("/bookings")
	protected.Use(authMiddleware)
	protected.POST("/documents/pdf", h.generatePDF)
	protected.POST("/documents/manifest", h.generateManifest)
	protected.GET("/:jobId/documents", h.listDocuments)
	protected.GET("/:jobId/documents/latest", h.latestDocument)
}

type generateRequest struct {
	JobID string     `json:"job_id" binding:"required"`
	OTP   string     `json:"otp"`
	Job   *model.Job `json:"job" binding:"required"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) generatePDF(c *gin.Context) {
	input, ok := h.bindGenerate(c)
	if !ok {
		return
	}

	result, err := h.documents.GenerateBookingPDF(c.Request.Context(), input)
	if err != nil {
		if isClientError(err) {
			h.handleError(c, err)
			return
		}
		h.log.Error().Err(err).Str("job_id", input.JobID).Msg("generate booking pdf failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.PDFFailureMessage})
		return
	}

	c.Header("X-Page-Count", strconv.Itoa(result.PageCount))
	attachment(c, result, contentTypePDF)
}

func (h *Handler) generateManifest(c *gin.Context) {
	input, ok := h.bindGenerate(c)
	if !ok {
		return
	}

	result, err := h.documents.GenerateManifest(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	attachment(c, result, contentTypeXLSX)
}

func (h *Handler) listDocuments(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	records, err := h.documents.ListDocuments(c.Request.Context(), principal, c.Param("jobId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *Handler) latestDocument(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	kind := model.DocumentKind(strings.ToUpper(c.DefaultQuery("kind", string(model.DocumentKindPDF))))
	record, err := h.documents.LatestDocument(c.Request.Context(), principal, c.Param("jobId"), kind)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (h *Handler) bindGenerate(c *gin.Context) (service.GenerateInput, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return service.GenerateInput{}, false
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.GenerateInput{}, false
	}
	if strings.TrimSpace(req.JobID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job_id"})
		return service.GenerateInput{}, false
	}

	return service.GenerateInput{
		JobID:     req.JobID,
		OTP:       req.OTP,
		Job:       *req.Job,
		Principal: &principal,
	}, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("document request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func isClientError(err error) bool {
	return errors.Is(err, service.ErrInvalidInput) ||
		errors.Is(err, service.ErrPermissionDenied) ||
		errors.Is(err, service.ErrNotFound)
}

func attachment(c *gin.Context, result *service.GenerateResult, contentType string) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Header("X-Checksum-SHA256", result.Checksum)
	c.Data(http.StatusOK, contentType, result.Content)
}
