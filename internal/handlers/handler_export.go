package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_migrator/internal/core/ports/services"
	"github.com/SscSPs/ledger_migrator/internal/dto"
	"github.com/SscSPs/ledger_migrator/internal/middleware"
	"github.com/gin-gonic/gin"
)

// multipart framing allowance on top of the file size limit
const multipartOverhead = 1 << 20

// exportHandler handles HTTP requests for export upload, parsing and review.
type exportHandler struct {
	exportService  portssvc.ExportSvcFacade
	maxUploadBytes int64
}

func newExportHandler(es portssvc.ExportSvcFacade, maxUploadBytes int64) *exportHandler {
	return &exportHandler{exportService: es, maxUploadBytes: maxUploadBytes}
}

// RegisterExportRoutes registers the export routes. throttle is applied to the
// upload and parse routes, which are the expensive ones.
func RegisterExportRoutes(rg *gin.RouterGroup, exportService portssvc.ExportSvcFacade, maxUploadBytes int64, throttle ...gin.HandlerFunc) {
	h := newExportHandler(exportService, maxUploadBytes)

	m := rg.Group("/migrations/:migrationID")
	{
		m.POST("/files", withThrottle(throttle, h.uploadExport)...)
		m.POST("/parse", withThrottle(throttle, h.parseExport)...)
		m.GET("/entities", h.listEntities)
		m.POST("/entities/:entityID/resolve", h.resolveReview)
		m.GET("/assessment", h.getAssessment)
	}
}

func withThrottle(throttle []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(throttle)+1)
	return append(append(chain, throttle...), handler)
}

// uploadExport godoc
// @Summary Upload a legacy export file
// @Description Stores an IIF, CSV or XLSX export against the migration
// @Tags exports
// @Accept  multipart/form-data
// @Produce  json
// @Param   migrationID path string true "Migration ID"
// @Param   file formData file true "Export file"
// @Success 201 {object} domain.ExportFile
// @Failure 400 {object} map[string]string "Invalid upload"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Migration not found"
// @Failure 413 {object} map[string]string "Export file is too large"
// @Failure 500 {object} map[string]string "Failed to upload export"
// @Security BearerAuth
// @Router /migrations/{migrationID}/files [post]
func (h *exportHandler) uploadExport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	migrationID := c.Param("migrationID")

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Export file is too large"})
			return
		}
		logger.Warn("Missing export file in upload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Multipart field 'file' is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer f.Close()

	file, err := h.exportService.UploadExport(c.Request.Context(), migrationID, userID, dto.ExportUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     f,
	})
	if err != nil {
		respondError(c, err, "Failed to upload export")
		return
	}

	logger.Info("Export uploaded", slog.String("migration_id", migrationID), slog.String("file_id", file.FileID))
	c.JSON(http.StatusCreated, file)
}

// parseExport godoc
// @Summary Parse an uploaded export
// @Description Extracts, validates and stores the entities of an uploaded file
// @Tags exports
// @Accept  json
// @Produce  json
// @Param   migrationID path string true "Migration ID"
// @Param   request body dto.ParseExportRequest true "File to parse"
// @Success 200 {object} dto.ParseExportResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Migration or file not found"
// @Failure 409 {object} map[string]string "Export is already being parsed"
// @Failure 502 {object} map[string]string "Failed to parse export"
// @Failure 500 {object} map[string]string "Failed to parse export"
// @Security BearerAuth
// @Router /migrations/{migrationID}/parse [post]
func (h *exportHandler) parseExport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ParseExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ParseExport", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.exportService.ParseExport(c.Request.Context(), c.Param("migrationID"), req.FileID, userID)
	if err != nil {
		respondError(c, err, "Failed to parse export")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listEntities godoc
// @Summary List parsed entities
// @Description Returns a page of entities ordered by row index
// @Tags exports
// @Produce  json
// @Param   migrationID path string true "Migration ID"
// @Param   limit query int false "Page size (max 1000)"
// @Param   nextToken query string false "Cursor from the previous page"
// @Param   requiresReview query bool false "Only flagged entities"
// @Success 200 {object} dto.ListEntitiesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Migration not found"
// @Failure 500 {object} map[string]string "Failed to list entities"
// @Security BearerAuth
// @Router /migrations/{migrationID}/entities [get]
func (h *exportHandler) listEntities(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListEntitiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid query parameters for ListEntities", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.exportService.ListEntities(c.Request.Context(), c.Param("migrationID"), userID, params)
	if err != nil {
		respondError(c, err, "Failed to list entities")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// resolveReview godoc
// @Summary Resolve an entity's review flag
// @Tags exports
// @Accept  json
// @Produce  json
// @Param   migrationID path string true "Migration ID"
// @Param   entityID path string true "Entity ID"
// @Param   request body dto.ResolveReviewRequest false "Resolution notes"
// @Success 200 {object} dto.ResolveReviewResponse
// @Failure 400 {object} map[string]string "Entity is not flagged for review"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Migration or entity not found"
// @Failure 500 {object} map[string]string "Failed to resolve review"
// @Security BearerAuth
// @Router /migrations/{migrationID}/entities/{entityID}/resolve [post]
func (h *exportHandler) resolveReview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ResolveReviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for ResolveReview", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.exportService.ResolveReview(c.Request.Context(), c.Param("migrationID"), c.Param("entityID"), userID, req)
	if err != nil {
		respondError(c, err, "Failed to resolve review")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getAssessment godoc
// @Summary Get the complexity assessment
// @Description Recomputes the assessment from the stored entities
// @Tags exports
// @Produce  json
// @Param   migrationID path string true "Migration ID"
// @Success 200 {object} domain.ComplexityAssessment
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Migration not found"
// @Failure 500 {object} map[string]string "Failed to assess migration"
// @Security BearerAuth
// @Router /migrations/{migrationID}/assessment [get]
func (h *exportHandler) getAssessment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	assessment, err := h.exportService.AssessMigration(c.Request.Context(), c.Param("migrationID"), userID)
	if err != nil {
		respondError(c, err, "Failed to assess migration")
		return
	}
	c.JSON(http.StatusOK, assessment)
}
