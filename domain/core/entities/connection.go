package entities

import (
	"strings"
	"time"

	"questnote/domain/config"
	pkgerrors "questnote/pkg/errors"

	"github.com/google/uuid"
)

// Connection is a directed, labeled link between two notes. Connections
// form the edges of the mind-map graph.
type Connection struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	SourceID  string    `json:"sourceId"`
	TargetID  string    `json:"targetId"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewConnection creates a connection with invariant checks. Self-loops
// are rejected here; duplicate detection needs the full collection and is
// the session's job.
func NewConnection(ownerID, sourceID, targetID, label string, cfg *config.DomainConfig) (*Connection, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID cannot be empty")
	}
	if sourceID == "" || targetID == "" {
		return nil, pkgerrors.NewValidationError("sourceID and targetID are required")
	}
	if !cfg.AllowSelfConnections && sourceID == targetID {
		return nil, pkgerrors.NewValidationError("cannot connect a note to itself")
	}

	label = strings.TrimSpace(label)
	if runes := []rune(label); len(runes) > cfg.MaxLabelLength {
		// Truncate by runes so multi-byte labels are never cut mid-character.
		label = string(runes[:cfg.MaxLabelLength])
	}

	return &Connection{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		SourceID:  sourceID,
		TargetID:  targetID,
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Valid reports whether the record satisfies the persistence invariant.
func (c *Connection) Valid() bool {
	return c != nil && c.ID != "" && c.OwnerID != "" && c.SourceID != "" && c.TargetID != "" && c.SourceID != c.TargetID
}

// Normalize fills defaults on a record read back from storage.
func (c *Connection) Normalize() {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
}

// PairKey identifies the ordered (source, target) pair. At most one
// connection per pair may exist for an owner.
func (c *Connection) PairKey() string {
	return c.SourceID + "\x00" + c.TargetID
}
