// Package ports defines the interfaces between the application layer and
// everything it depends on. Implementations live in application/stores
// and infrastructure; consumers depend on these interfaces only.
package ports

import (
	"context"

	"questnote/domain/core/entities"
)

// NoteStore persists the note collection, partitioned by owner.
//
// All operations are storage-error tolerant: a corrupt or unreadable
// blob degrades to an empty collection, and save failures are reported
// as false rather than raised.
type NoteStore interface {
	// LoadForOwner returns the owner's normalized notes. Aliases are
	// additional ids accepted as a match (the actor's legacy local id),
	// tolerating identity-resolution drift.
	LoadForOwner(ctx context.Context, ownerID string, aliases ...string) []*entities.Note

	// SaveForOwner replaces the owner's partition of the persisted
	// collection, leaving other owners' records untouched.
	SaveForOwner(ctx context.Context, notes []*entities.Note, ownerID string, aliases ...string) bool

	// ValidateAndRepair drops malformed records and duplicates, and
	// rewrites storage only when something changed. Reports whether a
	// repair occurred.
	ValidateAndRepair(ctx context.Context) bool
}

// ConnectionStore persists the connection collection with the same
// shape and failure discipline as NoteStore.
type ConnectionStore interface {
	LoadForOwner(ctx context.Context, ownerID string, aliases ...string) []*entities.Connection
	SaveForOwner(ctx context.Context, connections []*entities.Connection, ownerID string, aliases ...string) bool
	ValidateAndRepair(ctx context.Context) bool
}

// ProfileStore persists per-owner progression.
type ProfileStore interface {
	Load(ctx context.Context, ownerID string) *entities.Profile
	Save(ctx context.Context, profile *entities.Profile) bool
}

// RemoteNotes is the best-effort remote API collaborator. Errors are
// logged by callers and never affect local control flow.
type RemoteNotes interface {
	Delete(ctx context.Context, noteID string) error
}
