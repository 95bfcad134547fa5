// Package identity derives the stable owner id used to partition every
// persisted record.
package identity

import (
	"context"
	"encoding/json"

	"questnote/infrastructure/persistence/kv"
	"questnote/pkg/auth"
	pkgerrors "questnote/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resolver resolves the owner id for an actor. Resolution order:
// durable identity id when authenticated, then the actor's local id,
// then a persisted previously-minted local id, then a freshly minted one
// persisted immediately so later resolutions stay stable across reloads.
type Resolver struct {
	store  kv.Adapter
	logger *zap.Logger
}

// NewResolver creates a resolver over the given adapter.
func NewResolver(store kv.Adapter, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, logger: logger}
}

// ResolveOwnerID returns a non-empty owner id for the actor, or an
// owner-resolution failure when there is no actor at all.
func (r *Resolver) ResolveOwnerID(ctx context.Context, actor *auth.Actor) (string, error) {
	if actor == nil {
		return "", pkgerrors.NewNoOwnerError()
	}

	if actor.Authenticated && actor.ID != "" {
		return actor.ID, nil
	}
	if actor.LocalID != "" {
		return actor.LocalID, nil
	}

	if stored := r.storedLocalID(ctx); stored != "" {
		return stored, nil
	}

	minted := "user_" + uuid.New().String()
	if encoded, err := json.Marshal(minted); err == nil {
		if !r.store.Set(ctx, kv.LocalOwnerKey, encoded) {
			// Still usable for this session; it just won't survive a reload.
			r.logger.Warn("could not persist minted local owner id",
				zap.String("ownerID", minted))
		}
	}
	return minted, nil
}

// storedLocalID reads a previously-minted local id. Older builds stored
// the id as a bare string rather than JSON; both forms are accepted.
func (r *Resolver) storedLocalID(ctx context.Context) string {
	raw, _, ok := r.store.Get(ctx, kv.LocalOwnerKey)
	if !ok || len(raw) == 0 {
		return ""
	}

	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	return string(raw)
}
