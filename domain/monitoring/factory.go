package monitoring

import (
	"context"

	"github.com/Vijayesvar/PLEDG-MF/config/router"
	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"gorm.io/gorm"
)

// MonitoringCache defines the cache interface for the monitoring controller factory.
type MonitoringCache interface {
	Ping(ctx context.Context) error
}

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	db            *gorm.DB
	logger        *log.Logger
	cache         MonitoringCache
	slot          storage.Slot
	storageDriver string
}

func NewMonitoringControllerFactory(db *gorm.DB, logger *log.Logger, cache MonitoringCache, slot storage.Slot, storageDriver string) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{
		db:            db,
		logger:        logger,
		cache:         cache,
		slot:          slot,
		storageDriver: storageDriver,
	}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	var cache Cache
	if f.cache != nil {
		cache = f.cache
	}
	return NewMonitoringController(f.db, f.logger, cache, f.slot, f.storageDriver)
}
