// Package db opens the shared GORM connection used by internal/tenant and
// internal/persistence.
package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OpenPostgres opens a process-wide GORM handle over dsn. Callers share
// this handle read-only or via idempotent writes, per spec §5 ("shared
// resources").
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db: open postgres: %w", err)
	}
	return db, nil
}
