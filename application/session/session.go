// Package session holds the per-owner in-memory graph state and keeps it
// synchronized with the persisted stores. It is the single write path for
// notes and connections: handlers and the mind-map controller talk to a
// Session, never to the stores directly.
package session

import (
	"context"
	"sync"

	"questnote/application/ports"
	"questnote/domain/config"
	"questnote/domain/core/entities"
	pkgerrors "questnote/pkg/errors"

	"go.uber.org/zap"
)

// State is the session lifecycle state. Persistence is only triggered in
// StateReady so a load race can never clobber storage with an empty
// in-memory collection.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// NotePatch carries the fields an update may change. Nil means "leave
// as-is"; id, owner and createdAt are never patchable.
type NotePatch struct {
	Title   *string
	Content *string
	Tasks   *[]entities.Task
	XPValue *int
}

// Graph is the derived mind-map view: every in-memory note as a node,
// and every connection whose both endpoints still exist as an edge.
type Graph struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// NodeView is a note projected for rendering.
type NodeView struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Data  *entities.Note `json:"data"`
}

// EdgeView is a connection projected for rendering.
type EdgeView struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Session is the graph facade for one owner. All mutations are serialized
// through an in-process mutex, which is what makes the read-merge-write
// cycle against the stores safe from interleaving within this process.
type Session struct {
	mu sync.Mutex

	ownerID string
	aliases []string
	state   State

	notes       []*entities.Note
	connections []*entities.Connection

	noteStore ports.NoteStore
	connStore ports.ConnectionStore
	remote    ports.RemoteNotes

	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewSession creates a session for the owner in the loading state.
// Call Load before using it.
func NewSession(
	ownerID string,
	aliases []string,
	noteStore ports.NoteStore,
	connStore ports.ConnectionStore,
	remote ports.RemoteNotes,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *Session {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		ownerID:     ownerID,
		aliases:     aliases,
		state:       StateLoading,
		notes:       []*entities.Note{},
		connections: []*entities.Connection{},
		noteStore:   noteStore,
		connStore:   connStore,
		remote:      remote,
		cfg:         cfg,
		logger:      logger.With(zap.String("ownerID", ownerID)),
	}
}

// Load populates in-memory state from the stores and moves the session
// to ready. It is also how an owner switch reloads: the manager builds a
// fresh session per resolved owner and calls Load on it.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownerID == "" {
		return pkgerrors.NewNoOwnerError()
	}

	s.state = StateLoading
	s.notes = s.noteStore.LoadForOwner(ctx, s.ownerID, s.aliases...)
	s.connections = s.connStore.LoadForOwner(ctx, s.ownerID, s.aliases...)
	s.state = StateReady

	s.logger.Info("session loaded",
		zap.Int("notes", len(s.notes)),
		zap.Int("connections", len(s.connections)),
	)
	return nil
}

// OwnerID returns the owner this session is scoped to.
func (s *Session) OwnerID() string {
	return s.ownerID
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Notes returns a snapshot of the owner's notes.
func (s *Session) Notes() []*entities.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entities.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// Connections returns a snapshot of the owner's connections.
func (s *Session) Connections() []*entities.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entities.Connection, len(s.connections))
	for i, c := range s.connections {
		dup := *c
		out[i] = &dup
	}
	return out
}

// CreateNote creates a note for the session owner and persists it.
// A persistence failure leaves the note in memory and is logged, not
// returned: the change degrades to "in memory but not yet durable".
func (s *Session) CreateNote(ctx context.Context, title, content string) (*entities.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil, pkgerrors.NewConflictError("session is still loading")
	}

	note, err := entities.NewNote(s.ownerID, title, content, s.cfg)
	if err != nil {
		return nil, err
	}

	s.notes = append(s.notes, note)
	s.persistNotes(ctx)

	return note.Clone(), nil
}

// GetNote looks a note up in memory only. No storage round-trip.
func (s *Session) GetNote(id string) (*entities.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note := s.findNote(id)
	if note == nil {
		return nil, pkgerrors.NewNotFoundError("note")
	}

	dup := note.Clone()
	dup.Normalize(s.cfg)
	return dup, nil
}

// UpdateNote merges the patch over the stored note, refreshes updatedAt
// and persists the collection.
func (s *Session) UpdateNote(ctx context.Context, id string, patch NotePatch) (*entities.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil, pkgerrors.NewConflictError("session is still loading")
	}

	note := s.findNote(id)
	if note == nil {
		return nil, pkgerrors.NewNotFoundError("note")
	}

	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	if patch.Tasks != nil {
		note.Tasks = append([]entities.Task{}, (*patch.Tasks)...)
	}
	if patch.XPValue != nil {
		note.XPValue = *patch.XPValue
	}
	note.Touch()
	note.Normalize(s.cfg)

	s.persistNotes(ctx)
	return note.Clone(), nil
}

// DeleteNote removes the note and, as an eager cleanup step, every
// connection naming it as an endpoint. The remote delete is best-effort:
// its failure is logged and local deletion proceeds regardless.
func (s *Session) DeleteNote(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return false
	}
	if s.findNote(id) == nil {
		return false
	}

	kept := s.notes[:0]
	for _, n := range s.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.notes = kept

	keptConns := s.connections[:0]
	removedConns := 0
	for _, c := range s.connections {
		if c.SourceID == id || c.TargetID == id {
			removedConns++
			continue
		}
		keptConns = append(keptConns, c)
	}
	s.connections = keptConns

	s.persistNotes(ctx)
	if removedConns > 0 {
		s.persistConnections(ctx)
	}

	if s.remote != nil {
		go func(noteID string) {
			if err := s.remote.Delete(context.WithoutCancel(ctx), noteID); err != nil {
				s.logger.Warn("remote note delete failed", zap.String("noteID", noteID), zap.Error(err))
			}
		}(id)
	}

	s.logger.Debug("note deleted",
		zap.String("noteID", id),
		zap.Int("connectionsRemoved", removedConns),
	)
	return true
}

// AddTask appends a checklist entry to the note.
func (s *Session) AddTask(ctx context.Context, noteID, text string) (*entities.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil, pkgerrors.NewConflictError("session is still loading")
	}

	note := s.findNote(noteID)
	if note == nil {
		return nil, pkgerrors.NewNotFoundError("note")
	}
	if _, err := note.AddTask(text, s.cfg); err != nil {
		return nil, err
	}

	s.persistNotes(ctx)
	return note.Clone(), nil
}

// ToggleTask flips one task's completion state.
func (s *Session) ToggleTask(ctx context.Context, noteID, taskID string) (*entities.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil, pkgerrors.NewConflictError("session is still loading")
	}

	note := s.findNote(noteID)
	if note == nil {
		return nil, pkgerrors.NewNotFoundError("note")
	}
	if err := note.ToggleTask(taskID); err != nil {
		return nil, err
	}

	s.persistNotes(ctx)
	return note.Clone(), nil
}

// CompleteAllTasks checks every task on the note. The second result
// reports whether the checklist newly became fully checked, which is the
// signal that the note's XP reward is due.
func (s *Session) CompleteAllTasks(ctx context.Context, noteID string) (*entities.Note, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil, false, pkgerrors.NewConflictError("session is still loading")
	}

	note := s.findNote(noteID)
	if note == nil {
		return nil, false, pkgerrors.NewNotFoundError("note")
	}

	awarded := note.CompleteAllTasks()
	s.persistNotes(ctx)
	return note.Clone(), awarded, nil
}

// CreateConnection links two notes. Self-loops and duplicate
// (source, target) pairs are rejected with typed errors the caller is
// expected to surface, not retry.
func (s *Session) CreateConnection(ctx context.Context, sourceID, targetID, label string) (*entities.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil, pkgerrors.NewConflictError("session is still loading")
	}

	conn, err := entities.NewConnection(s.ownerID, sourceID, targetID, label, s.cfg)
	if err != nil {
		return nil, err
	}
	for _, existing := range s.connections {
		if existing.PairKey() == conn.PairKey() {
			return nil, pkgerrors.NewConflictError("connection already exists")
		}
	}

	s.connections = append(s.connections, conn)
	s.persistConnections(ctx)

	dup := *conn
	return &dup, nil
}

// DeleteConnection removes a connection by id. Deleting an unknown id is
// a no-op.
func (s *Session) DeleteConnection(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return
	}

	kept := s.connections[:0]
	removed := false
	for _, c := range s.connections {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	s.connections = kept

	if removed {
		s.persistConnections(ctx)
	}
}

// MindMapGraph derives the renderable graph. Connections with a missing
// endpoint are excluded from the view but left in storage.
func (s *Session) MindMapGraph() Graph {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]bool, len(s.notes))
	nodes := make([]NodeView, 0, len(s.notes))
	for _, n := range s.notes {
		byID[n.ID] = true
		nodes = append(nodes, NodeView{
			ID:    n.ID,
			Label: n.Title,
			Data:  n.Clone(),
		})
	}

	edges := make([]EdgeView, 0, len(s.connections))
	for _, c := range s.connections {
		if !byID[c.SourceID] || !byID[c.TargetID] {
			continue
		}
		edges = append(edges, EdgeView{
			ID:     c.ID,
			Source: c.SourceID,
			Target: c.TargetID,
			Label:  c.Label,
		})
	}

	return Graph{Nodes: nodes, Edges: edges}
}

// findNote is an in-memory lookup. Callers must hold the mutex.
func (s *Session) findNote(id string) *entities.Note {
	for _, n := range s.notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (s *Session) persistNotes(ctx context.Context) {
	if s.state != StateReady {
		return
	}
	if !s.noteStore.SaveForOwner(ctx, s.notes, s.ownerID, s.aliases...) {
		s.logger.Warn("note persistence failed, change kept in memory only")
	}
}

func (s *Session) persistConnections(ctx context.Context) {
	if s.state != StateReady {
		return
	}
	if !s.connStore.SaveForOwner(ctx, s.connections, s.ownerID, s.aliases...) {
		s.logger.Warn("connection persistence failed, change kept in memory only")
	}
}
