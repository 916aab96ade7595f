// Package audit defines the audit trail contract for ledger mutations.
// Ledger rows are immutable, so the interesting events are creations,
// explicit deletions and status overwrites; each is recorded with a snapshot
// of the affected row.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"anchorstock/internal/core/id"
)

// Action is the type of audited operation.
type Action string

const (
	ActionCreate       Action = "create"
	ActionDelete       Action = "delete"
	ActionStatusChange Action = "status_change"
)

// Entry is a single audit event.
type Entry struct {
	// EntityType names the ledger table ("arrival", "transfer", ...)
	EntityType string

	EntityID id.ID
	BaseID   id.ID
	Action   Action

	// Actor is the user who performed the operation
	Actor string

	// Changes is a snapshot of the affected row; the recorder serializes it
	Changes any
}

// Recorder persists audit entries. Recording is best-effort on the caller's
// side: a failed audit write is logged, never fatal to the primary operation.
type Recorder interface {
	Log(ctx context.Context, e Entry) error
}

// Event is a recorded entry read back from the trail. Changes is the stored
// row snapshot, decompressed if the recorder compressed it.
type Event struct {
	ID         id.ID           `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   id.ID           `json:"entityId"`
	Action     Action          `json:"action"`
	Actor      string          `json:"actor"`
	Changes    json.RawMessage `json:"changes"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// HistoryReader serves the recorded trail for one entity, newest first.
type HistoryReader interface {
	History(ctx context.Context, baseID, entityID id.ID, limit int) ([]Event, error)
}

// Nop returns a Recorder that discards entries (tests, tooling).
func Nop() Recorder { return nopRecorder{} }

type nopRecorder struct{}

func (nopRecorder) Log(context.Context, Entry) error { return nil }
