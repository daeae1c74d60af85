// Package tools implements the Tool Dispatcher (spec §4.3): it maps named
// tool invocations emitted by the LLM to concrete side-effecting
// operations and always returns a structured payload — it never raises.
// Grounded on idunrlylikeu-memos's tool-registry/dispatch-by-name loop in
// ai_chat_service.go, adapted from a text-based ReAct dispatch into a
// fixed, closed set of voice-ordering tools.
package tools

import (
	"context"
	"time"

	"github.com/chadiek/voxline/internal/notify"
	"github.com/chadiek/voxline/internal/persistence"
)

const (
	GetMenu          = "get_menu"
	PlaceOrder       = "place_order"
	MakeReservation  = "make_reservation"
	CheckOrderStatus = "check_order_status"
	CancelOrModify   = "cancel_or_modify"
	TransferToHuman  = "transfer_to_human"
)

// Dispatcher executes a named tool invocation and returns a structured
// result payload shaped for re-injection as a tool_result part.
type Dispatcher struct {
	tenantID string
	menu     string
	store    persistence.Store
	notifier notify.Notifier
}

// New builds a Dispatcher bound to one tenant's menu cache and the shared
// persistence store. notifier may be nil (no SMS confirmation sent).
func New(tenantID, menuCache string, store persistence.Store, notifier notify.Notifier) *Dispatcher {
	return &Dispatcher{tenantID: tenantID, menu: menuCache, store: store, notifier: notifier}
}

// Dispatch never raises. Persistence failures are caught and converted to
// structured failure payloads containing a natural-language error field
// the LLM can voice to the caller (spec §4.3).
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) map[string]any {
	switch name {
	case GetMenu:
		return d.getMenu()
	case PlaceOrder:
		return d.placeOrder(ctx, args)
	case MakeReservation:
		return d.makeReservation(ctx, args)
	case CheckOrderStatus, CancelOrModify:
		return underConstruction()
	case TransferToHuman:
		return map[string]any{"status": "transferring", "message": "Connecting you with a team member now."}
	default:
		return map[string]any{"success": false, "error": "I'm not able to do that right now."}
	}
}

func (d *Dispatcher) getMenu() map[string]any {
	if d.menu == "" {
		return map[string]any{"menu": "unavailable"}
	}
	return map[string]any{"menu": d.menu}
}

func (d *Dispatcher) placeOrder(ctx context.Context, args map[string]any) map[string]any {
	items, totalCents := parseItems(args)
	contactName, _ := args["contact_name"].(string)
	contactPhone, _ := args["contact_phone"].(string)

	orderID, err := d.store.InsertOrder(ctx, persistence.Order{
		TenantID:     d.tenantID,
		Items:        items,
		TotalCents:   totalCents,
		ContactName:  contactName,
		ContactPhone: contactPhone,
	})
	if err != nil {
		return map[string]any{"success": false, "error": "We were unable to place your order right now."}
	}

	if d.notifier != nil && contactPhone != "" {
		go d.notifier.NotifyOrderPlaced(contactPhone, orderID)
	}

	return map[string]any{
		"success":  true,
		"order_id": orderID,
		"message":  "Your order has been placed.",
	}
}

func (d *Dispatcher) makeReservation(ctx context.Context, args map[string]any) map[string]any {
	partySize, _ := args["party_size"].(float64)
	whenStr, _ := args["when"].(string)
	contactName, _ := args["contact_name"].(string)
	contactPhone, _ := args["contact_phone"].(string)

	when, err := time.Parse(time.RFC3339, whenStr)
	if err != nil {
		when = time.Now().UTC().Add(time.Hour)
	}

	reservationID, err := d.store.InsertReservation(ctx, persistence.Reservation{
		TenantID:     d.tenantID,
		PartySize:    int(partySize),
		When:         when,
		ContactName:  contactName,
		ContactPhone: contactPhone,
	})
	if err != nil {
		return map[string]any{"success": false, "error": "We were unable to book your reservation right now."}
	}

	if d.notifier != nil && contactPhone != "" {
		go d.notifier.NotifyReservationPlaced(contactPhone, reservationID)
	}

	return map[string]any{
		"success":        true,
		"reservation_id": reservationID,
		"message":        "Your reservation is booked.",
	}
}

func underConstruction() map[string]any {
	return map[string]any{
		"status":  "under_construction",
		"message": "That's not something I can help with over the phone just yet.",
	}
}

func parseItems(args map[string]any) ([]persistence.OrderItem, int) {
	raw, _ := args["items"].([]any)
	items := make([]persistence.OrderItem, 0, len(raw))
	total := 0
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		qty, _ := m["quantity"].(float64)
		price, _ := m["price_cents"].(float64)
		if qty <= 0 {
			qty = 1
		}
		item := persistence.OrderItem{Name: name, Quantity: int(qty), PriceCts: int(price)}
		items = append(items, item)
		total += item.Quantity * item.PriceCts
	}
	return items, total
}
