package service

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// HealthStatus reports the service and its collaborators.
type HealthStatus struct {
	Service  string    `json:"service"`
	Database string    `json:"database"`
	Bridge   string    `json:"bridge"`
	Healthy  bool      `json:"healthy"`
	Checked  time.Time `json:"checked"`
}

type HealthService interface {
	Check() *HealthStatus
}

type healthService struct {
	name       string
	dbProbe    func() (string, bool)
	bridgeOK   func() (string, bool)
	newHandler HandlerFactory
}

// NewHealthService constructs a HealthService probing the DB and the
// automation bridge. The bridge being down degrades health but is reported
// separately: link checking over explicit URL lists still works without it.
func NewHealthService(db *gorm.DB, factory HandlerFactory, name string) HealthService {
	return &healthService{
		name:       name,
		newHandler: factory,
		dbProbe: func() (string, bool) {
			if db == nil {
				return "disconnected", false
			}
			sqlDB, err := db.DB()
			if err != nil {
				return "unhealthy", false
			}
			if pingErr := sqlDB.Ping(); pingErr != nil {
				return "unhealthy", false
			}
			return "healthy", true
		},
		bridgeOK: func() (string, bool) {
			if factory == nil {
				return "unconfigured", false
			}
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := factory().Ping(ctx); err != nil {
				return "unreachable", false
			}
			return "healthy", true
		},
	}
}

func (h *healthService) Check() *HealthStatus {
	dbStatus, dbOK := h.dbProbe()
	bridgeStatus, _ := h.bridgeOK()
	return &HealthStatus{
		Service:  h.name,
		Database: dbStatus,
		Bridge:   bridgeStatus,
		Healthy:  dbOK,
		Checked:  time.Now().UTC(),
	}
}
