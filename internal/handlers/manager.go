package handlers

import (
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/config"
	"github.com/EzraBr1dger/space-map-admin/internal/services"
)

// HandlerManager holds what every HTTP handler needs.
type HandlerManager struct {
	Config  *config.Config
	Svc     *services.Services
	Version string

	now func() time.Time
}

func NewHandlerManager(cfg *config.Config, svc *services.Services, version string) *HandlerManager {
	return &HandlerManager{
		Config:  cfg,
		Svc:     svc,
		Version: version,
		now:     time.Now,
	}
}
