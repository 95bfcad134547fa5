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

// NoteStore is the persisted note collection. All owners share one
// storage key; every write merges the owner's partition back into the
// full collection with a versioned compare-and-set, so a concurrent
// writer from another session cannot be silently discarded.
type NoteStore struct {
	adapter kv.Adapter
	cfg     *config.DomainConfig
	logger  *zap.Logger
}

// NewNoteStore creates a note store over the given adapter.
func NewNoteStore(adapter kv.Adapter, cfg *config.DomainConfig, logger *zap.Logger) *NoteStore {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteStore{adapter: adapter, cfg: cfg, logger: logger}
}

// noteRecord is the lenient wire form of a persisted note.
type noteRecord struct {
	ID           flexString   `json:"id"`
	OwnerID      flexString   `json:"ownerId"`
	LegacyOwner  flexString   `json:"userId"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	Tasks        []taskRecord `json:"tasks"`
	HasChecklist bool         `json:"hasChecklist"`
	AllChecked   bool         `json:"allChecked"`
	XPValue      int          `json:"xpValue"`
	CreatedAt    flexTime     `json:"createdAt"`
	UpdatedAt    flexTime     `json:"updatedAt"`
}

type taskRecord struct {
	ID        flexString `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
}

func (r *noteRecord) toEntity() *entities.Note {
	ownerID := string(r.OwnerID)
	if ownerID == "" {
		// Records written before the ownerId rename carry userId.
		ownerID = string(r.LegacyOwner)
	}

	note := &entities.Note{
		ID:           string(r.ID),
		OwnerID:      ownerID,
		Title:        r.Title,
		Content:      r.Content,
		HasChecklist: r.HasChecklist,
		AllChecked:   r.AllChecked,
		XPValue:      r.XPValue,
		CreatedAt:    r.CreatedAt.Time(),
		UpdatedAt:    r.UpdatedAt.Time(),
	}
	for _, t := range r.Tasks {
		task := entities.Task{ID: string(t.ID), Text: t.Text, Completed: t.Completed}
		if task.ID == "" {
			task.ID = uuid.New().String()
		}
		note.Tasks = append(note.Tasks, task)
	}
	return note
}

// LoadForOwner reads the full persisted collection and returns the
// owner's normalized notes. A corrupt blob yields an empty sequence.
func (s *NoteStore) LoadForOwner(ctx context.Context, ownerID string, aliases ...string) []*entities.Note {
	if ownerID == "" {
		s.logger.Warn("note load skipped: no owner id")
		return []*entities.Note{}
	}

	all, _, _ := s.readAll(ctx)
	match := ownerMatchSet(ownerID, aliases)

	notes := []*entities.Note{}
	for _, note := range all {
		if !match[note.OwnerID] {
			continue
		}
		note.OwnerID = ownerID
		note.Normalize(s.cfg)
		notes = append(notes, note)
	}

	s.logger.Debug("loaded notes",
		zap.String("ownerID", ownerID),
		zap.Int("count", len(notes)),
	)
	return notes
}

// SaveForOwner replaces the owner's partition of the collection. The
// merge runs in a compare-and-set loop: on contention it re-reads the
// latest snapshot so another owner's concurrent save is preserved.
func (s *NoteStore) SaveForOwner(ctx context.Context, notes []*entities.Note, ownerID string, aliases ...string) bool {
	if ownerID == "" {
		s.logger.Warn("note save skipped: no owner id")
		return false
	}

	match := ownerMatchSet(ownerID, aliases)
	normalized := make([]*entities.Note, 0, len(notes))
	for _, note := range notes {
		dup := note.Clone()
		if dup.ID == "" {
			dup.ID = uuid.New().String()
		}
		dup.OwnerID = ownerID
		dup.Normalize(s.cfg)
		normalized = append(normalized, dup)
	}

	for attempt := 0; attempt < s.cfg.SaveRetryLimit; attempt++ {
		all, version, _ := s.readAll(ctx)

		merged := make([]*entities.Note, 0, len(all)+len(normalized))
		for _, note := range all {
			if !match[note.OwnerID] {
				merged = append(merged, note)
			}
		}
		merged = append(merged, normalized...)

		blob, err := json.Marshal(merged)
		if err != nil {
			s.logger.Error("could not serialize notes", zap.Error(err))
			return false
		}

		if s.adapter.CompareAndSet(ctx, kv.NotesKey, blob, version) {
			s.logger.Debug("saved notes",
				zap.String("ownerID", ownerID),
				zap.Int("own", len(normalized)),
				zap.Int("total", len(merged)),
			)
			return true
		}
		s.logger.Debug("note save contention, retrying", zap.Int("attempt", attempt+1))
	}

	s.logger.Error("note save failed after retries", zap.String("ownerID", ownerID))
	return false
}

// ValidateAndRepair drops records that fail the note invariant and
// deduplicates by (ownerID, id), keeping the first occurrence. Storage
// is rewritten only when something changed. Running it again right
// after reports no repair.
func (s *NoteStore) ValidateAndRepair(ctx context.Context) bool {
	raw, version, ok := s.adapter.Get(ctx, kv.NotesKey)
	if !ok {
		return false
	}

	all, dropped := decodeNoteRecords(raw, s.logger)

	seen := make(map[string]bool, len(all))
	kept := make([]*entities.Note, 0, len(all))
	for _, note := range all {
		if !note.Valid() {
			dropped++
			continue
		}
		key := note.OwnerID + "\x00" + note.ID
		if seen[key] {
			s.logger.Warn("duplicate note removed",
				zap.String("ownerID", note.OwnerID),
				zap.String("noteID", note.ID),
			)
			dropped++
			continue
		}
		seen[key] = true
		note.Normalize(s.cfg)
		kept = append(kept, note)
	}

	if dropped == 0 {
		return false
	}

	blob, err := json.Marshal(kept)
	if err != nil {
		s.logger.Error("could not serialize repaired notes", zap.Error(err))
		return false
	}
	if !s.adapter.CompareAndSet(ctx, kv.NotesKey, blob, version) {
		s.logger.Warn("note repair lost a write race, leaving storage as-is")
		return false
	}

	s.logger.Info("repaired note storage", zap.Int("dropped", dropped))
	return true
}

// readAll decodes the whole persisted collection, dropping records that
// cannot be decoded. The blob's version is returned for conditional
// writes; a missing key has version zero.
func (s *NoteStore) readAll(ctx context.Context) ([]*entities.Note, kv.Version, bool) {
	raw, version, ok := s.adapter.Get(ctx, kv.NotesKey)
	if !ok {
		return nil, 0, true
	}

	notes, dropped := decodeNoteRecords(raw, s.logger)
	return notes, version, dropped == 0
}

// decodeNoteRecords parses the collection blob. A blob that is not a
// JSON array counts as fully dropped (treated as empty), matching the
// StorageCorruption recovery policy.
func decodeNoteRecords(raw []byte, logger *zap.Logger) ([]*entities.Note, int) {
	var rawRecords []json.RawMessage
	if err := json.Unmarshal(raw, &rawRecords); err != nil {
		logger.Error("note storage is corrupted, treating as empty", zap.Error(err))
		return nil, 1
	}

	dropped := 0
	notes := make([]*entities.Note, 0, len(rawRecords))
	for _, rawRecord := range rawRecords {
		var record noteRecord
		if err := json.Unmarshal(rawRecord, &record); err != nil {
			logger.Warn("undecodable note record dropped", zap.Error(err))
			dropped++
			continue
		}
		notes = append(notes, record.toEntity())
	}
	return notes, dropped
}
