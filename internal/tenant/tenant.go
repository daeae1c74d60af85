// Package tenant resolves a tenant's StoreProfile from the relational
// store. Out of the core session engine's scope per spec.md §1; described
// only at its interface (spec §6). Grounded on germanoeich-crabstack's
// gorm_store.go row/record mapping idiom.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no store profile exists for the tenant.
var ErrNotFound = errors.New("tenant: store profile not found")

// ErrInactive is returned when the tenant's profile is explicitly marked
// inactive.
var ErrInactive = errors.New("tenant: store profile inactive")

// StoreProfile is opaque to the core session engine; consumed only to
// build the system prompt and to authorize the session (spec §3).
type StoreProfile struct {
	TenantID      string
	Persona       string
	Hours         string
	Location      string
	CustomKnow    string
	MenuCache     string
}

// SystemPrompt composes the system prompt by concatenating, in order and
// separated by blank lines, whichever fields are non-empty. If all are
// empty, a minimal fallback persona is used (spec §4.5.1).
func (p StoreProfile) SystemPrompt() string {
	sections := []string{p.Persona, p.Hours, p.Location, p.CustomKnow, p.MenuCache}
	var nonEmpty []string
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) == 0 {
		return "You are a friendly phone assistant for a local business. Answer briefly and helpfully."
	}
	return strings.Join(nonEmpty, "\n\n")
}

// Resolver resolves a StoreProfile by tenant id.
type Resolver interface {
	Resolve(ctx context.Context, tenantID string) (StoreProfile, error)
}

// storeProfileRow is the GORM row backing store_profiles.
type storeProfileRow struct {
	TenantID   string `gorm:"primaryKey;size:191"`
	Persona    string `gorm:"type:text"`
	Hours      string `gorm:"type:text"`
	Location   string `gorm:"type:text"`
	CustomKnow string `gorm:"type:text"`
	MenuCache  string `gorm:"type:text"`
	Active     *bool  `gorm:""`
}

func (storeProfileRow) TableName() string {
	return "store_profiles"
}

func (r storeProfileRow) toProfile() StoreProfile {
	return StoreProfile{
		TenantID:   r.TenantID,
		Persona:    r.Persona,
		Hours:      r.Hours,
		Location:   r.Location,
		CustomKnow: r.CustomKnow,
		MenuCache:  r.MenuCache,
	}
}

// GormResolver is a thin GORM repository over Postgres.
type GormResolver struct {
	db *gorm.DB
}

// NewGormResolver wraps an already-open GORM handle, auto-migrating the
// store_profiles table.
func NewGormResolver(gormDB *gorm.DB) (*GormResolver, error) {
	if err := gormDB.AutoMigrate(&storeProfileRow{}); err != nil {
		return nil, fmt.Errorf("tenant: migrate: %w", err)
	}
	return &GormResolver{db: gormDB}, nil
}

// UpdateMenuCache overwrites the menu_cache column for tenantID, called by
// internal/catalogsync after a successful POS fetch (spec §1 "POS catalog
// synchronization").
func (r *GormResolver) UpdateMenuCache(ctx context.Context, tenantID, menuCache string) error {
	err := r.db.WithContext(ctx).Model(&storeProfileRow{}).
		Where("tenant_id = ?", tenantID).
		Update("menu_cache", menuCache).Error
	if err != nil {
		return fmt.Errorf("tenant: update menu cache for %q: %w", tenantID, err)
	}
	return nil
}

// Resolve returns the ErrNotFound or ErrInactive signals the session state
// machine uses to reject a connect (spec §4.5.1). A null active column is
// treated as active for backward compatibility (spec §6).
func (r *GormResolver) Resolve(ctx context.Context, tenantID string) (StoreProfile, error) {
	var row storeProfileRow
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StoreProfile{}, ErrNotFound
		}
		return StoreProfile{}, fmt.Errorf("tenant: resolve %q: %w", tenantID, err)
	}
	if row.Active != nil && !*row.Active {
		return StoreProfile{}, ErrInactive
	}
	return row.toProfile(), nil
}
