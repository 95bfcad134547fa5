package handlers

import (
	"net/http"

	"questnote/application/services"
	"questnote/application/session"
	"questnote/pkg/common"

	"go.uber.org/zap"
)

// ProfileHandler serves progression profiles
type ProfileHandler struct {
	sessions *session.Manager
	progress *services.ProgressService
	logger   *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(sessions *session.Manager, progress *services.ProgressService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		sessions: sessions,
		progress: progress,
		logger:   logger,
	}
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, h.sessions)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	profile, err := h.progress.Profile(r.Context(), sess.OwnerID())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, profile)
}
