package stores

import (
	"context"
	"encoding/json"

	"questnote/domain/config"
	"questnote/domain/core/entities"
	"questnote/infrastructure/persistence/kv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnectionStore is the persisted connection collection. Same shape
// and write discipline as NoteStore.
type ConnectionStore struct {
	adapter kv.Adapter
	cfg     *config.DomainConfig
	logger  *zap.Logger
}

// NewConnectionStore creates a connection store over the given adapter.
func NewConnectionStore(adapter kv.Adapter, cfg *config.DomainConfig, logger *zap.Logger) *ConnectionStore {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionStore{adapter: adapter, cfg: cfg, logger: logger}
}

// connectionRecord is the lenient wire form of a persisted connection.
type connectionRecord struct {
	ID          flexString `json:"id"`
	OwnerID     flexString `json:"ownerId"`
	LegacyOwner flexString `json:"userId"`
	SourceID    flexString `json:"sourceId"`
	TargetID    flexString `json:"targetId"`
	Label       string     `json:"label"`
	CreatedAt   flexTime   `json:"createdAt"`
}

func (r *connectionRecord) toEntity() *entities.Connection {
	ownerID := string(r.OwnerID)
	if ownerID == "" {
		ownerID = string(r.LegacyOwner)
	}
	return &entities.Connection{
		ID:        string(r.ID),
		OwnerID:   ownerID,
		SourceID:  string(r.SourceID),
		TargetID:  string(r.TargetID),
		Label:     r.Label,
		CreatedAt: r.CreatedAt.Time(),
	}
}

// LoadForOwner reads the full persisted collection and returns the
// owner's normalized connections.
func (s *ConnectionStore) LoadForOwner(ctx context.Context, ownerID string, aliases ...string) []*entities.Connection {
	if ownerID == "" {
		s.logger.Warn("connection load skipped: no owner id")
		return []*entities.Connection{}
	}

	all, _, _ := s.readAll(ctx)
	match := ownerMatchSet(ownerID, aliases)

	connections := []*entities.Connection{}
	for _, conn := range all {
		if !match[conn.OwnerID] {
			continue
		}
		conn.OwnerID = ownerID
		conn.Normalize()
		connections = append(connections, conn)
	}

	s.logger.Debug("loaded connections",
		zap.String("ownerID", ownerID),
		zap.Int("count", len(connections)),
	)
	return connections
}

// SaveForOwner replaces the owner's partition of the collection using
// the same compare-and-set merge loop as the note store.
func (s *ConnectionStore) SaveForOwner(ctx context.Context, connections []*entities.Connection, ownerID string, aliases ...string) bool {
	if ownerID == "" {
		s.logger.Warn("connection save skipped: no owner id")
		return false
	}

	match := ownerMatchSet(ownerID, aliases)
	normalized := make([]*entities.Connection, 0, len(connections))
	for _, conn := range connections {
		dup := *conn
		if dup.ID == "" {
			dup.ID = uuid.New().String()
		}
		dup.OwnerID = ownerID
		dup.Normalize()
		normalized = append(normalized, &dup)
	}

	for attempt := 0; attempt < s.cfg.SaveRetryLimit; attempt++ {
		all, version, _ := s.readAll(ctx)

		merged := make([]*entities.Connection, 0, len(all)+len(normalized))
		for _, conn := range all {
			if !match[conn.OwnerID] {
				merged = append(merged, conn)
			}
		}
		merged = append(merged, normalized...)

		blob, err := json.Marshal(merged)
		if err != nil {
			s.logger.Error("could not serialize connections", zap.Error(err))
			return false
		}

		if s.adapter.CompareAndSet(ctx, kv.ConnectionsKey, blob, version) {
			s.logger.Debug("saved connections",
				zap.String("ownerID", ownerID),
				zap.Int("own", len(normalized)),
				zap.Int("total", len(merged)),
			)
			return true
		}
		s.logger.Debug("connection save contention, retrying", zap.Int("attempt", attempt+1))
	}

	s.logger.Error("connection save failed after retries", zap.String("ownerID", ownerID))
	return false
}

// ValidateAndRepair drops records missing id, owner or an endpoint,
// self-loops, and duplicate (owner, source, target) triples.
func (s *ConnectionStore) ValidateAndRepair(ctx context.Context) bool {
	raw, version, ok := s.adapter.Get(ctx, kv.ConnectionsKey)
	if !ok {
		return false
	}

	all, dropped := decodeConnectionRecords(raw, s.logger)

	seen := make(map[string]bool, len(all))
	kept := make([]*entities.Connection, 0, len(all))
	for _, conn := range all {
		if !conn.Valid() {
			dropped++
			continue
		}
		key := conn.OwnerID + "\x00" + conn.PairKey()
		if seen[key] {
			s.logger.Warn("duplicate connection removed",
				zap.String("ownerID", conn.OwnerID),
				zap.String("sourceID", conn.SourceID),
				zap.String("targetID", conn.TargetID),
			)
			dropped++
			continue
		}
		seen[key] = true
		conn.Normalize()
		kept = append(kept, conn)
	}

	if dropped == 0 {
		return false
	}

	blob, err := json.Marshal(kept)
	if err != nil {
		s.logger.Error("could not serialize repaired connections", zap.Error(err))
		return false
	}
	if !s.adapter.CompareAndSet(ctx, kv.ConnectionsKey, blob, version) {
		s.logger.Warn("connection repair lost a write race, leaving storage as-is")
		return false
	}

	s.logger.Info("repaired connection storage", zap.Int("dropped", dropped))
	return true
}

func (s *ConnectionStore) readAll(ctx context.Context) ([]*entities.Connection, kv.Version, bool) {
	raw, version, ok := s.adapter.Get(ctx, kv.ConnectionsKey)
	if !ok {
		return nil, 0, true
	}

	connections, dropped := decodeConnectionRecords(raw, s.logger)
	return connections, version, dropped == 0
}

func decodeConnectionRecords(raw []byte, logger *zap.Logger) ([]*entities.Connection, int) {
	var rawRecords []json.RawMessage
	if err := json.Unmarshal(raw, &rawRecords); err != nil {
		logger.Error("connection storage is corrupted, treating as empty", zap.Error(err))
		return nil, 1
	}

	dropped := 0
	connections := make([]*entities.Connection, 0, len(rawRecords))
	for _, rawRecord := range rawRecords {
		var record connectionRecord
		if err := json.Unmarshal(rawRecord, &record); err != nil {
			logger.Warn("undecodable connection record dropped", zap.Error(err))
			dropped++
			continue
		}
		connections = append(connections, record.toEntity())
	}
	return connections, dropped
}
