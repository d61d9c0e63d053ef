package domain

import (
	"github.com/Vijayesvar/PLEDG-MF/config"
	"github.com/Vijayesvar/PLEDG-MF/domain/calculator"
	"github.com/Vijayesvar/PLEDG-MF/domain/monitoring"
	"github.com/Vijayesvar/PLEDG-MF/domain/waitlist"
	"github.com/prometheus/client_golang/prometheus"
)

// NewWaitlistStore builds the store over the configured slot. Its collectors go
// on the router registry when there is a router.
func NewWaitlistStore(appConfig *config.ApplicationConfig) (waitlist.Store, error) {
	var registerer prometheus.Registerer
	if appConfig.RouterService != nil {
		registerer = appConfig.RouterService.MetricsRegisterer()
	}

	return waitlist.NewStore(
		appConfig.Slot,
		appConfig.Logger,
		waitlist.WithSnowflakeNode(appConfig.Storage.SnowflakeNode),
		waitlist.WithMetrics(registerer),
	)
}

func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	store, err := NewWaitlistStore(appConfig)
	if err != nil {
		return err
	}

	var cache monitoring.MonitoringCache
	if appConfig.Cache != nil {
		cache = appConfig.Cache
	}

	appConfig.RouterService.MountController(
		monitoring.NewMonitoringControllerFactory(appConfig.DB, appConfig.Logger, cache, appConfig.Slot, appConfig.Storage.Driver).CreateController(),
	)
	appConfig.RouterService.MountController(waitlist.NewWaitlistServiceFactory(store, appConfig.Logger).CreateController())
	appConfig.RouterService.MountController(calculator.NewCalculatorController())
	return nil
}
