// Package catalogstore persists catalog snapshots as JSON blobs in object
// storage (spec.md §1 "POS catalog synchronization", supplemented).
//
// Adapted from the teacher's supabase/storage.go, which uploaded call
// recordings to a Supabase Storage bucket; the client construction and
// upload call are kept, repurposed from recordings to catalog snapshots.
package catalogstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	supabase "github.com/supabase-community/supabase-go"
)

// Config carries the Supabase project and bucket the store writes to.
type Config struct {
	URL            string
	ServiceRoleKey string
	Bucket         string
}

// Store uploads catalog snapshots to a Supabase Storage bucket.
type Store struct {
	client *supabase.Client
	bucket string
}

// New constructs a Store. Unlike the teacher's constructor, client
// construction errors are returned rather than panicked, leaving the
// decision to the caller (internal/httpserver.New, which runs at process
// start, fails server construction on such an error).
func New(cfg Config) (*Store, error) {
	client, err := supabase.NewClient(cfg.URL, cfg.ServiceRoleKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("catalogstore: construct supabase client: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Snapshot is one point-in-time capture of a tenant's synced menu.
type Snapshot struct {
	TenantID   string    `json:"tenant_id"`
	MenuCache  string    `json:"menu_cache"`
	SyncedAt   time.Time `json:"synced_at"`
}

// key composes the object key a tenant's snapshot is written under,
// timestamped so each sync leaves its own immutable record.
func key(tenantID string, syncedAt time.Time) string {
	return fmt.Sprintf("catalog/%s/%d.json", tenantID, syncedAt.UnixNano())
}

// PutSnapshot JSON-encodes snap and uploads it to the bucket.
func (s *Store) PutSnapshot(snap Snapshot) error {
	if snap.SyncedAt.IsZero() {
		snap.SyncedAt = time.Now()
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("catalogstore: marshal snapshot: %w", err)
	}
	_, err = s.client.Storage.UploadFile(s.bucket, key(snap.TenantID, snap.SyncedAt), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("catalogstore: upload snapshot: %w", err)
	}
	return nil
}
