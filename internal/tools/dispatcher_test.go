package tools

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/chadiek/voxline/internal/persistence"
)

type fakeStore struct {
	mu          sync.Mutex
	orderErr    error
	reservedErr error
	orders      []persistence.Order
}

func (f *fakeStore) InsertOrder(ctx context.Context, o persistence.Order) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return "", f.orderErr
	}
	f.orders = append(f.orders, o)
	return "order-1", nil
}

func (f *fakeStore) InsertReservation(ctx context.Context, r persistence.Reservation) (string, error) {
	if f.reservedErr != nil {
		return "", f.reservedErr
	}
	return "res-1", nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	orders []string
}

func (f *fakeNotifier) NotifyOrderPlaced(phone, orderID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, orderID)
}

func (f *fakeNotifier) NotifyReservationPlaced(phone, reservationID string) {}

func TestGetMenuReturnsCachedText(t *testing.T) {
	d := New("tenant-1", "Bulgogi $18", nil, nil)
	result := d.Dispatch(context.Background(), GetMenu, nil)
	if result["menu"] != "Bulgogi $18" {
		t.Fatalf("got %v", result)
	}
}

func TestGetMenuUnavailableWhenEmpty(t *testing.T) {
	d := New("tenant-1", "", nil, nil)
	result := d.Dispatch(context.Background(), GetMenu, nil)
	if result["menu"] != "unavailable" {
		t.Fatalf("got %v", result)
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	store := &fakeStore{}
	d := New("tenant-1", "", store, nil)
	args := map[string]any{
		"items": []any{
			map[string]any{"name": "Bulgogi", "quantity": float64(2), "price_cents": float64(1800)},
		},
		"contact_phone": "+15551234567",
	}
	result := d.Dispatch(context.Background(), PlaceOrder, args)
	if result["success"] != true {
		t.Fatalf("expected success, got %v", result)
	}
	if result["order_id"] != "order-1" {
		t.Fatalf("expected order id, got %v", result)
	}
}

func TestPlaceOrderFailureNeverRaises(t *testing.T) {
	store := &fakeStore{orderErr: errors.New("db down")}
	d := New("tenant-1", "", store, nil)
	result := d.Dispatch(context.Background(), PlaceOrder, map[string]any{})
	if result["success"] != false {
		t.Fatalf("expected structured failure, got %v", result)
	}
	if _, ok := result["error"].(string); !ok {
		t.Fatalf("expected voice-safe error string, got %v", result)
	}
}

func TestDeferredToolsReturnUnderConstruction(t *testing.T) {
	d := New("tenant-1", "", nil, nil)
	for _, name := range []string{CheckOrderStatus, CancelOrModify} {
		result := d.Dispatch(context.Background(), name, nil)
		if result["status"] != "under_construction" {
			t.Fatalf("%s: expected under_construction, got %v", name, result)
		}
	}
}

func TestTransferToHuman(t *testing.T) {
	d := New("tenant-1", "", nil, nil)
	result := d.Dispatch(context.Background(), TransferToHuman, nil)
	if result["status"] != "transferring" {
		t.Fatalf("got %v", result)
	}
}
