package waitlist

import (
	"github.com/Vijayesvar/PLEDG-MF/config/router"
	"github.com/Vijayesvar/PLEDG-MF/internal/log"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	store  Store
	logger *log.Logger
}

func NewWaitlistServiceFactory(store Store, logger *log.Logger) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		store:  store,
		logger: logger,
	}
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	return NewWaitlistService(f.logger, f.store)
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.store, f.logger)
}
