// Package catalogsync fetches a POS provider's item list over HTTP and
// composes the menu_cache text internal/tenant serves to the session state
// machine at connect time (spec.md §1 "POS catalog synchronization",
// supplemented; §6 non-core boundary). Both a cron-triggered and a
// webhook-triggered entry point call Sync as plain, straightforward glue —
// matching the teacher's framing of its non-core integrations.
package catalogsync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chadiek/voxline/internal/catalogstore"
)

// MenuUpdater persists the composed menu text for a tenant — satisfied by
// internal/tenant.GormResolver.
type MenuUpdater interface {
	UpdateMenuCache(ctx context.Context, tenantID, menuCache string) error
}

// SnapshotStore persists the raw catalog fetch alongside the composed
// text — satisfied by internal/catalogstore.Store.
type SnapshotStore interface {
	PutSnapshot(snap catalogstore.Snapshot) error
}

// posItem is one line item as returned by the POS provider's catalog
// endpoint.
type posItem struct {
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Description string `json:"description"`
}

// Syncer fetches a tenant's POS catalog and republishes it.
type Syncer struct {
	httpClient *http.Client
	updater    MenuUpdater
	store      SnapshotStore
}

// New constructs a Syncer. httpClient may be nil, in which case
// http.DefaultClient is used.
func New(httpClient *http.Client, updater MenuUpdater, store SnapshotStore) *Syncer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Syncer{httpClient: httpClient, updater: updater, store: store}
}

// Sync fetches catalogURL's item list, composes menu_cache text from it,
// writes that text to the tenant's store profile, and archives the
// composed snapshot to object storage. Its in-process caller is the
// POST /catalog/sync handler in api/http, which a cron job or a POS webhook
// can hit; it is never called from the session call path.
func (s *Syncer) Sync(ctx context.Context, tenantID, catalogURL string) error {
	items, err := s.fetchItems(ctx, catalogURL)
	if err != nil {
		return fmt.Errorf("catalogsync: fetch %q: %w", tenantID, err)
	}

	menuCache := composeMenuCache(items)

	if err := s.updater.UpdateMenuCache(ctx, tenantID, menuCache); err != nil {
		return fmt.Errorf("catalogsync: update menu cache for %q: %w", tenantID, err)
	}

	if s.store != nil {
		err := s.store.PutSnapshot(catalogstore.Snapshot{
			TenantID:  tenantID,
			MenuCache: menuCache,
			SyncedAt:  time.Now(),
		})
		if err != nil {
			return fmt.Errorf("catalogsync: archive snapshot for %q: %w", tenantID, err)
		}
	}

	return nil
}

func (s *Syncer) fetchItems(ctx context.Context, catalogURL string) ([]posItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, catalogURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var items []posItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return items, nil
}

// composeMenuCache renders items as the plain-text block internal/tenant
// folds into the system prompt (spec §4.5.1).
func composeMenuCache(items []posItem) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s — $%.2f", item.Name, float64(item.PriceCents)/100)
		if item.Description != "" {
			fmt.Fprintf(&b, " (%s)", item.Description)
		}
	}
	return b.String()
}
