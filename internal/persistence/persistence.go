// Package persistence implements the order/reservation repository the
// Tool Dispatcher calls (spec §6 "Persistence layer"). Grounded on
// germanoeich-crabstack's gorm_store.go row/record mapping idiom.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem is one line item of an order.
type OrderItem struct {
	Name     string
	Quantity int
	PriceCts int
}

// Order is the insert-order request shape.
type Order struct {
	TenantID      string
	Items         []OrderItem
	TotalCents    int
	ContactName   string
	ContactPhone  string
}

// Reservation is the insert-reservation request shape.
type Reservation struct {
	TenantID     string
	PartySize    int
	When         time.Time
	ContactName  string
	ContactPhone string
}

// Store provides the two operations the Tool Dispatcher uses: insert-order
// and insert-reservation, each returning the new row's identifier or an
// error (spec §6).
type Store interface {
	InsertOrder(ctx context.Context, o Order) (string, error)
	InsertReservation(ctx context.Context, r Reservation) (string, error)
}

type orderRow struct {
	OrderID      string `gorm:"primaryKey;size:64"`
	TenantID     string `gorm:"size:191;index"`
	ItemsJSON    string `gorm:"type:text;not null"`
	TotalCents   int    `gorm:"not null"`
	ContactName  string `gorm:"size:191"`
	ContactPhone string `gorm:"size:64"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (orderRow) TableName() string { return "orders" }

type reservationRow struct {
	ReservationID string    `gorm:"primaryKey;size:64"`
	TenantID      string    `gorm:"size:191;index"`
	PartySize     int       `gorm:"not null"`
	ReservedFor   time.Time `gorm:"not null"`
	ContactName   string    `gorm:"size:191"`
	ContactPhone  string    `gorm:"size:64"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (reservationRow) TableName() string { return "reservations" }

// GormStore is a GORM repository over Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an already-open GORM handle, auto-migrating the
// orders/reservations tables.
func NewGormStore(gormDB *gorm.DB) (*GormStore, error) {
	if err := gormDB.AutoMigrate(&orderRow{}, &reservationRow{}); err != nil {
		return nil, fmt.Errorf("persistence: migrate: %w", err)
	}
	return &GormStore{db: gormDB}, nil
}

func (s *GormStore) InsertOrder(ctx context.Context, o Order) (string, error) {
	itemsJSON, err := marshalItems(o.Items)
	if err != nil {
		return "", fmt.Errorf("persistence: marshal order items: %w", err)
	}
	row := orderRow{
		OrderID:      uuid.NewString(),
		TenantID:     o.TenantID,
		ItemsJSON:    itemsJSON,
		TotalCents:   o.TotalCents,
		ContactName:  o.ContactName,
		ContactPhone: o.ContactPhone,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("persistence: insert order: %w", err)
	}
	return row.OrderID, nil
}

func (s *GormStore) InsertReservation(ctx context.Context, r Reservation) (string, error) {
	row := reservationRow{
		ReservationID: uuid.NewString(),
		TenantID:      r.TenantID,
		PartySize:     r.PartySize,
		ReservedFor:   r.When,
		ContactName:   r.ContactName,
		ContactPhone:  r.ContactPhone,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("persistence: insert reservation: %w", err)
	}
	return row.ReservationID, nil
}
