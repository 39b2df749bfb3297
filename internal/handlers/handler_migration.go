package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_migrator/internal/core/ports/services"
	"github.com/SscSPs/ledger_migrator/internal/dto"
	"github.com/SscSPs/ledger_migrator/internal/middleware"
	"github.com/gin-gonic/gin"
)

// migrationHandler handles HTTP requests for the migration lifecycle.
type migrationHandler struct {
	migrationService portssvc.MigrationSvcFacade
}

func newMigrationHandler(ms portssvc.MigrationSvcFacade) *migrationHandler {
	return &migrationHandler{migrationService: ms}
}

// RegisterMigrationRoutes registers the intake, listing, detail and completion routes.
func RegisterMigrationRoutes(rg *gin.RouterGroup, migrationService portssvc.MigrationSvcFacade) {
	registerValidators()
	h := newMigrationHandler(migrationService)

	migrations := rg.Group("/migrations")
	{
		migrations.POST("", h.createMigration)
		migrations.GET("", h.listMigrations)
		migrations.GET("/:migrationID", h.getMigration)
		migrations.GET("/:migrationID/progress", h.getProgress)
		migrations.POST("/:migrationID/complete", h.completeMigration)
	}
}

// createMigration godoc
// @Summary Open a migration from the intake questionnaire
// @Tags migrations
// @Accept  json
// @Produce  json
// @Param   request body dto.CreateMigrationRequest true "Intake questionnaire"
// @Success 201 {object} dto.MigrationResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create migration"
// @Security BearerAuth
// @Router /migrations [post]
func (h *migrationHandler) createMigration(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateMigrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateMigration", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	job, err := h.migrationService.CreateMigration(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create migration")
		return
	}

	logger.Info("Migration created", slog.String("migration_id", job.MigrationID))
	c.JSON(http.StatusCreated, dto.ToMigrationResponse(job))
}

// listMigrations godoc
// @Summary List the caller's migrations
// @Description Newest first, each with its lifecycle progress
// @Tags migrations
// @Produce  json
// @Param   limit query int false "Page size (max 100)"
// @Param   offset query int false "Rows to skip"
// @Success 200 {object} dto.ListMigrationsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list migrations"
// @Security BearerAuth
// @Router /migrations [get]
func (h *migrationHandler) listMigrations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListMigrationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid query parameters for ListMigrations", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	items, err := h.migrationService.ListMigrations(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "Failed to list migrations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListMigrationsResponse(items))
}

// getMigration godoc
// @Summary Get a migration with its artifacts
// @Tags migrations
// @Produce  json
// @Param   migrationID path string true "Migration ID"
// @Success 200 {object} dto.MigrationDetailResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Migration not found"
// @Failure 500 {object} map[string]string "Failed to get migration"
// @Security BearerAuth
// @Router /migrations/{migrationID} [get]
func (h *migrationHandler) getMigration(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	detail, err := h.migrationService.GetMigrationDetail(c.Request.Context(), c.Param("migrationID"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve migration")
		return
	}
	c.JSON(http.StatusOK, dto.ToMigrationDetailResponse(detail))
}

// getProgress godoc
// @Summary Get lifecycle progress
// @Tags migrations
// @Produce  json
// @Param   migrationID path string true "Migration ID"
// @Success 200 {object} domain.Progress
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Migration not found"
// @Failure 500 {object} map[string]string "Failed to get progress"
// @Security BearerAuth
// @Router /migrations/{migrationID}/progress [get]
func (h *migrationHandler) getProgress(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	progress, err := h.migrationService.GetProgress(c.Request.Context(), c.Param("migrationID"), userID)
	if err != nil {
		respondError(c, err, "Failed to compute progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// completeMigration godoc
// @Summary Mark a parsed migration as completed
// @Tags migrations
// @Produce  json
// @Param   migrationID path string true "Migration ID"
// @Success 200 {object} dto.MigrationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Migration not found"
// @Failure 409 {object} map[string]string "Migration is not parsed"
// @Failure 500 {object} map[string]string "Failed to complete migration"
// @Security BearerAuth
// @Router /migrations/{migrationID}/complete [post]
func (h *migrationHandler) completeMigration(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	migrationID := c.Param("migrationID")

	job, err := h.migrationService.CompleteMigration(c.Request.Context(), migrationID, userID)
	if err != nil {
		respondError(c, err, "Failed to complete migration")
		return
	}

	logger.Info("Migration completed", slog.String("migration_id", migrationID))
	c.JSON(http.StatusOK, dto.ToMigrationResponse(job))
}
