package di

import (
	"time"

	"questnote/application/identity"
	"questnote/application/ports"
	"questnote/application/services"
	"questnote/application/session"
	"questnote/application/stores"
	domainconfig "questnote/domain/config"
	"questnote/infrastructure/config"
	"questnote/infrastructure/persistence/kv"
	"questnote/infrastructure/remote"
	"questnote/interfaces/http/rest"
	"questnote/pkg/auth"

	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDomainConfig loads the domain rule set for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// ProvideKVAdapter opens the SQLite-backed key-value store
func ProvideKVAdapter(cfg *config.Config, logger *zap.Logger) (kv.Adapter, error) {
	return kv.OpenSQLite(cfg.DatabasePath, logger)
}

// ProvideNoteStore creates the note store
func ProvideNoteStore(adapter kv.Adapter, dcfg *domainconfig.DomainConfig, logger *zap.Logger) ports.NoteStore {
	return stores.NewNoteStore(adapter, dcfg, logger)
}

// ProvideConnectionStore creates the connection store
func ProvideConnectionStore(adapter kv.Adapter, dcfg *domainconfig.DomainConfig, logger *zap.Logger) ports.ConnectionStore {
	return stores.NewConnectionStore(adapter, dcfg, logger)
}

// ProvideProfileStore creates the profile store
func ProvideProfileStore(adapter kv.Adapter, dcfg *domainconfig.DomainConfig, logger *zap.Logger) ports.ProfileStore {
	return stores.NewProfileStore(adapter, dcfg, logger)
}

// ProvideRemoteNotes creates the best-effort remote API client
func ProvideRemoteNotes(cfg *config.Config, logger *zap.Logger) ports.RemoteNotes {
	return remote.NewClient(cfg.RemoteBaseURL, time.Duration(cfg.RemoteTimeoutMS)*time.Millisecond, logger)
}

// ProvideResolver creates the user scoping resolver
func ProvideResolver(adapter kv.Adapter, logger *zap.Logger) *identity.Resolver {
	return identity.NewResolver(adapter, logger)
}

// ProvideSessionManager creates the per-owner session manager
func ProvideSessionManager(
	resolver *identity.Resolver,
	noteStore ports.NoteStore,
	connStore ports.ConnectionStore,
	remoteNotes ports.RemoteNotes,
	dcfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *session.Manager {
	return session.NewManager(resolver, noteStore, connStore, remoteNotes, dcfg, logger)
}

// ProvideProgressService creates the progression service
func ProvideProgressService(profiles ports.ProfileStore, dcfg *domainconfig.DomainConfig, logger *zap.Logger) *services.ProgressService {
	return services.NewProgressService(profiles, dcfg, logger)
}

// ProvideJWTValidator creates the token validator. Outside production a
// missing secret falls back to a fixed development key.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	sessions *session.Manager,
	progress *services.ProgressService,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, sessions, progress, validator, logger)
}
