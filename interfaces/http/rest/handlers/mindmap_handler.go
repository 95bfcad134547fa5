package handlers

import (
	"net/http"

	"questnote/application/session"
	"questnote/pkg/common"

	"go.uber.org/zap"
)

// MindMapHandler serves the derived graph view for visualization
type MindMapHandler struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewMindMapHandler creates a new mind-map handler
func NewMindMapHandler(sessions *session.Manager, logger *zap.Logger) *MindMapHandler {
	return &MindMapHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// GetGraph handles GET /mindmap
func (h *MindMapHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, h.sessions)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, sess.MindMapGraph())
}
