package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/config/router"
	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"github.com/Vijayesvar/PLEDG-MF/pkg/factory"
	"github.com/Vijayesvar/PLEDG-MF/pkg/ratelimit"
	"gorm.io/gorm"
)

const (
	monitoringRequestsPerMinute = 10
	healthCheckTimeout          = 3 * time.Second
)

type Cache interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Storage       int    `json:"storage"`  // 1 = waitlist slot reachable
	Database      int    `json:"database"` // 1 = healthy, 0 = unhealthy/not configured
	Cache         int    `json:"cache"`    // 1 = healthy, 0 = unhealthy/not configured
	StorageDriver string `json:"storage_driver"`
	Uptime        int    `json:"uptime"` // uptime in seconds
}

type MonitoringController struct {
	db            *gorm.DB
	logger        *log.Logger
	cache         Cache
	slot          storage.Slot
	storageDriver string
	startTime     time.Time
}

// NewMonitoringController reports on the waitlist slot. db and cache may be nil
// when the configured driver does not need them.
func NewMonitoringController(db *gorm.DB, logger *log.Logger, cache Cache, slot storage.Slot, storageDriver string) *router.RESTController {
	ctrl := &MonitoringController{
		db:            db,
		logger:        logger,
		cache:         cache,
		slot:          slot,
		storageDriver: storageDriver,
		startTime:     time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {

			monitoringRateLimiter := createMonitoringRateLimiter(routerService, logger)

			routerService.AddGetHandler(controller, monitoringRateLimiter, "", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.monitor(c)
			})

			routerService.AddGetHandler(controller, monitoringRateLimiter, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(routerService, c)
			})
		},
	)
}

func createMonitoringRateLimiter(routerService *router.RouterService, logger *log.Logger) ratelimit.RateLimiter {
	var limiterLogger ratelimit.Logger
	if logger != nil {
		limiterLogger = logger
	}

	return factory.NewDefaultRateLimiterFactory(routerService.GetRedisClient(), limiterLogger).
		CreateRateLimiter("monitoring", monitoringRequestsPerMinute, time.Minute)
}

func (ctrl *MonitoringController) healthCheck(
	routerService *router.RouterService,
	c *router.RequestContext,
) *router.ServiceResult {
	logger := routerService.GetLogger(c)
	logger.Info("Health check endpoint called")

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()
	healthStatus := ctrl.performHealthChecks(ctx, logger)

	if healthStatus.Storage == 0 {
		return router.ServiceUnavailableResult("pledg waitlist storage is unavailable", healthStatus)
	}

	return &router.ServiceResult{
		StatusCode: http.StatusOK,
		Data:       healthStatus,
		Message:    "pledg health check completed",
	}
}

func (ctrl *MonitoringController) monitor(
	c *router.RequestContext,
) *router.ServiceResult {
	return &router.ServiceResult{
		StatusCode: http.StatusOK,
		Data:       "Monitoring endpoint is operational.",
		Message:    "Monitoring successful",
	}
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		StorageDriver: ctrl.storageDriver,
		Uptime:        int(time.Since(ctrl.startTime).Seconds()),
	}

	checkStorageConnectivity(ctx, ctrl, &status, logger)

	checkDatabaseConnectivity(ctx, ctrl, &status, logger)

	checkCacheConnectivity(ctx, ctrl, &status, logger)

	return status
}

func checkStorageConnectivity(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.slot == nil {
		logger.Error("Storage slot not configured")
		return
	}

	if err := ctrl.slot.Ping(ctx); err != nil {
		status.Storage = 0
		logger.Error("Storage health check failed", "slot", ctrl.slot.Key(), "error", err)
		return
	}

	status.Storage = 1
	logger.Info("Storage health check passed", "slot", ctrl.slot.Key())
}

func checkCacheConnectivity(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.cache != nil {
		if ctrl.checkCache(ctx) {
			status.Cache = 1
			logger.Info("Cache health check passed")
		} else {
			status.Cache = 0
			logger.Error("Cache health check failed")
		}
	} else {
		status.Cache = 0 // Cache not configured
		logger.Info("Cache not configured, cache health check skipped")
	}
}

func checkDatabaseConnectivity(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.db == nil {
		logger.Info("Database not configured, database health check skipped")
		return
	}

	if ctrl.checkDatabase(ctx) {
		status.Database = 1
		logger.Info("Database health check passed")
	} else {
		status.Database = 0
		logger.Error("Database health check failed")
	}
}

func (ctrl *MonitoringController) checkDatabase(ctx context.Context) bool {
	sqlDB, err := ctrl.db.DB()
	if err != nil {
		return false
	}

	return sqlDB.PingContext(ctx) == nil
}

func (ctrl *MonitoringController) checkCache(ctx context.Context) bool {
	return ctrl.cache.Ping(ctx) == nil
}
