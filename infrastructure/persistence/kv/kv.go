// Package kv provides the durable key-value persistence adapter.
//
// The adapter contract is deliberately forgiving: a serialization or
// storage failure is swallowed, logged, and reported as a boolean
// failure. Callers treat false/absent as "nothing persisted" and never
// crash on storage trouble.
package kv

import "context"

// Version is a per-key write counter. Zero means the key is absent.
// Writers pass the version they read to CompareAndSet so that two
// sessions racing on the same key cannot silently discard each other's
// merge.
type Version int64

// Adapter reads and writes opaque JSON blobs under fixed keys.
type Adapter interface {
	// Get returns the raw value and its version. ok is false when the
	// key is absent or the read failed.
	Get(ctx context.Context, key string) (value []byte, version Version, ok bool)

	// Set writes unconditionally, bumping the version. Returns false on
	// failure.
	Set(ctx context.Context, key string, value []byte) bool

	// CompareAndSet writes only if the key's current version equals
	// expect (use zero for "must not exist"). Returns false on version
	// mismatch or failure.
	CompareAndSet(ctx context.Context, key string, value []byte, expect Version) bool
}

// Fixed storage keys for the two top-level collections. Versioned so a
// breaking layout change can force a clean slate.
const (
	NotesKey       = "questnote_notes_v2"
	ConnectionsKey = "questnote_connections_v2"
	LocalOwnerKey  = "questnote_local_owner"
	ProfilePrefix  = "questnote_profile_"
)
