package di

import (
	"questnote/application/identity"
	"questnote/application/ports"
	"questnote/application/services"
	"questnote/application/session"
	"questnote/infrastructure/config"
	"questnote/infrastructure/persistence/kv"
	"questnote/interfaces/http/rest"
	"questnote/pkg/auth"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	KV           kv.Adapter
	NoteStore    ports.NoteStore
	ConnStore    ports.ConnectionStore
	ProfileStore ports.ProfileStore
	RemoteNotes  ports.RemoteNotes
	Resolver     *identity.Resolver
	Sessions     *session.Manager
	Progress     *services.ProgressService
	JWTValidator *auth.JWTValidator
	Router       *rest.Router
}
