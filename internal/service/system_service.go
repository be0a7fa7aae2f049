package service

import (
	"database/sql"
	"fmt"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/database"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/quote"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db    *sql.DB
	cache *quote.Cache
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, cache *quote.Cache) *SystemService {
	return &SystemService{
		db:    db,
		cache: cache,
	}
}

// CheckHealth checks the health of the system. The returned status is filled
// in even when the database is unreachable.
func (s *SystemService) CheckHealth() (model.HealthStatus, error) {
	status := model.HealthStatus{
		Status:       "healthy",
		Database:     "connected",
		CachedQuotes: s.cache.Len(),
	}
	if err := database.HealthCheck(s.db); err != nil {
		status.Status = "unhealthy"
		status.Database = "disconnected"
		return status, err
	}
	return status, nil
}

// CheckVersion returns the application and schema versions.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	v, err := database.SchemaVersion(s.db)
	if err != nil {
		return model.VersionInfo{AppVersion: version.Version}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return model.VersionInfo{AppVersion: version.Version, DbVersion: v}, nil
}
