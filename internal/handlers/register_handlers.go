package handlers

import (
	"net/http"
	"sync"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_migrator/internal/core/ports/services"
	"github.com/SscSPs/ledger_migrator/internal/middleware"
	"github.com/SscSPs/ledger_migrator/internal/platform/config"
	"github.com/SscSPs/ledger_migrator/internal/platform/observability"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	metrics *observability.Metrics,
	parseLimiter *limiter.Limiter,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	}

	setupAPIV1Routes(r, cfg, services, metrics, parseLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	metrics *observability.Metrics,
	parseLimiter *limiter.Limiter,
) {
	v1 := r.Group("/api/v1", middleware.MetricsMiddleware(metrics), middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	var throttle []gin.HandlerFunc
	if parseLimiter != nil {
		throttle = append(throttle, middleware.RateLimit(parseLimiter))
	}

	RegisterMigrationRoutes(v1, services.Migration)
	RegisterExportRoutes(v1, services.Export, cfg.MaxUploadBytes, throttle...)
}

var validatorsOnce sync.Once

// registerValidators adds the custom binding tags used by request DTOs.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
			return domain.ParseUrgency(fl.Field().String()).IsValid()
		})
	})
}
