package entities

import (
	"time"

	"questnote/domain/config"
)

// Profile tracks an owner's progression: accumulated experience and the
// level derived from it.
type Profile struct {
	OwnerID   string    `json:"ownerId"`
	Level     int       `json:"level"`
	XP        int       `json:"xp"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProfile creates a level-one profile for the owner.
func NewProfile(ownerID string) *Profile {
	return &Profile{
		OwnerID:   ownerID,
		Level:     1,
		UpdatedAt: time.Now().UTC(),
	}
}

// Normalize repairs a profile read back from storage.
func (p *Profile) Normalize() {
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
}

// AddXP awards experience and levels up while the threshold is met.
// Progression follows level*XPPerLevel until MaxLevel.
func (p *Profile) AddXP(amount int, cfg *config.DomainConfig) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if amount <= 0 {
		return
	}

	p.XP += amount
	for p.Level < cfg.MaxLevel {
		needed := p.Level * cfg.XPPerLevel
		if p.XP < needed {
			break
		}
		p.XP -= needed
		p.Level++
	}
	p.UpdatedAt = time.Now().UTC()
}
