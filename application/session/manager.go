package session

import (
	"context"
	"sync"

	"questnote/application/identity"
	"questnote/application/ports"
	"questnote/domain/config"
	"questnote/pkg/auth"

	"go.uber.org/zap"
)

// Manager hands out one loaded Session per owner. Sessions are cached so
// repeated requests from the same actor reuse the same in-memory state;
// an owner switch simply resolves to a different cache entry.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	resolver  *identity.Resolver
	noteStore ports.NoteStore
	connStore ports.ConnectionStore
	remote    ports.RemoteNotes

	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewManager creates a session manager.
func NewManager(
	resolver *identity.Resolver,
	noteStore ports.NoteStore,
	connStore ports.ConnectionStore,
	remote ports.RemoteNotes,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *Manager {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		resolver:  resolver,
		noteStore: noteStore,
		connStore: connStore,
		remote:    remote,
		cfg:       cfg,
		logger:    logger,
	}
}

// ForActor resolves the actor's owner id and returns that owner's loaded
// session, creating and loading it on first use. The actor's local id is
// carried as an owner alias so records persisted under it still load.
func (m *Manager) ForActor(ctx context.Context, actor *auth.Actor) (*Session, error) {
	ownerID, err := m.resolver.ResolveOwnerID(ctx, actor)
	if err != nil {
		return nil, err
	}

	var aliases []string
	if actor != nil && actor.LocalID != "" && actor.LocalID != ownerID {
		aliases = append(aliases, actor.LocalID)
	}

	return m.ForOwner(ctx, ownerID, aliases...)
}

// ForOwner returns the owner's loaded session.
func (m *Manager) ForOwner(ctx context.Context, ownerID string, aliases ...string) (*Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[ownerID]
	if !ok {
		sess = NewSession(ownerID, aliases, m.noteStore, m.connStore, m.remote, m.cfg, m.logger)
		m.sessions[ownerID] = sess
	}
	m.mu.Unlock()

	if !ok {
		if err := sess.Load(ctx); err != nil {
			m.mu.Lock()
			delete(m.sessions, ownerID)
			m.mu.Unlock()
			return nil, err
		}
		m.logger.Debug("session created", zap.String("ownerID", ownerID))
	}
	return sess, nil
}

// Evict drops an owner's cached session. The next request rebuilds it
// from storage.
func (m *Manager) Evict(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, ownerID)
}
