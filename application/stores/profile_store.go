package stores

import (
	"context"
	"encoding/json"

	"questnote/domain/config"
	"questnote/domain/core/entities"
	"questnote/infrastructure/persistence/kv"

	"go.uber.org/zap"
)

// ProfileStore persists one progression record per owner. Profiles are
// single-owner documents, so plain last-write-wins Set is enough here.
type ProfileStore struct {
	adapter kv.Adapter
	cfg     *config.DomainConfig
	logger  *zap.Logger
}

// NewProfileStore creates a profile store over the given adapter.
func NewProfileStore(adapter kv.Adapter, cfg *config.DomainConfig, logger *zap.Logger) *ProfileStore {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileStore{adapter: adapter, cfg: cfg, logger: logger}
}

// Load returns the owner's profile, or a fresh level-1 profile when
// nothing usable is stored.
func (s *ProfileStore) Load(ctx context.Context, ownerID string) *entities.Profile {
	if ownerID == "" {
		return entities.NewProfile("")
	}

	raw, _, ok := s.adapter.Get(ctx, kv.ProfilePrefix+ownerID)
	if !ok {
		return entities.NewProfile(ownerID)
	}

	var profile entities.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		s.logger.Warn("profile record is corrupted, starting fresh",
			zap.String("ownerID", ownerID),
			zap.Error(err),
		)
		return entities.NewProfile(ownerID)
	}

	profile.OwnerID = ownerID
	profile.Normalize()
	return &profile
}

// Save persists the owner's profile.
func (s *ProfileStore) Save(ctx context.Context, profile *entities.Profile) bool {
	if profile == nil || profile.OwnerID == "" {
		s.logger.Warn("profile save skipped: no owner id")
		return false
	}

	blob, err := json.Marshal(profile)
	if err != nil {
		s.logger.Error("could not serialize profile", zap.Error(err))
		return false
	}
	return s.adapter.Set(ctx, kv.ProfilePrefix+profile.OwnerID, blob)
}
