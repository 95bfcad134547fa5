// Package services holds application services that sit beside the
// session facade. ProgressService owns the gamification rules: checklist
// completion feeds experience into the owner's profile.
package services

import (
	"context"

	"questnote/application/ports"
	"questnote/application/session"
	"questnote/domain/config"
	"questnote/domain/core/entities"
	pkgerrors "questnote/pkg/errors"

	"go.uber.org/zap"
)

// ProgressService awards XP and reads progression profiles.
type ProgressService struct {
	profiles ports.ProfileStore
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewProgressService creates a progress service.
func NewProgressService(profiles ports.ProfileStore, cfg *config.DomainConfig, logger *zap.Logger) *ProgressService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{profiles: profiles, cfg: cfg, logger: logger}
}

// Profile returns the owner's progression profile.
func (s *ProgressService) Profile(ctx context.Context, ownerID string) (*entities.Profile, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewNoOwnerError()
	}
	return s.profiles.Load(ctx, ownerID), nil
}

// CompleteAllTasks completes the note's checklist through the session
// and awards the note's XP value when the checklist newly became fully
// checked. Completing an already-complete checklist awards nothing.
func (s *ProgressService) CompleteAllTasks(ctx context.Context, sess *session.Session, noteID string) (*entities.Note, *entities.Profile, error) {
	note, awarded, err := sess.CompleteAllTasks(ctx, noteID)
	if err != nil {
		return nil, nil, err
	}

	profile := s.profiles.Load(ctx, sess.OwnerID())
	if awarded {
		before := profile.Level
		profile.AddXP(note.XPValue, s.cfg)
		if !s.profiles.Save(ctx, profile) {
			s.logger.Warn("profile save failed, award kept in memory only",
				zap.String("ownerID", sess.OwnerID()),
			)
		}
		if profile.Level > before {
			s.logger.Info("level up",
				zap.String("ownerID", sess.OwnerID()),
				zap.Int("level", profile.Level),
			)
		}
	}

	return note, profile, nil
}
