package handlers

import (
	"net/http"

	"questnote/application/session"
	"questnote/pkg/common"
	"questnote/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ConnectionHandler handles connection-related HTTP requests
type ConnectionHandler struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(sessions *session.Manager, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// CreateConnectionRequest represents the request body for creating a connection
type CreateConnectionRequest struct {
	SourceID string `json:"sourceId" validate:"required"`
	TargetID string `json:"targetId" validate:"required"`
	Label    string `json:"label" validate:"max=100"`
}

// CreateConnection handles POST /connections
func (h *ConnectionHandler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var req CreateConnectionRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	sess, err := sessionFor(r, h.sessions)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	conn, err := sess.CreateConnection(r.Context(), req.SourceID, req.TargetID, req.Label)
	if err != nil {
		h.logger.Debug("connection rejected",
			zap.String("sourceID", req.SourceID),
			zap.String("targetID", req.TargetID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, conn)
}

// ListConnections handles GET /connections
func (h *ConnectionHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, h.sessions)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, sess.Connections())
}

// DeleteConnection handles DELETE /connections/{connectionID}.
// Deletion is idempotent, so an unknown id still yields 204.
func (h *ConnectionHandler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, h.sessions)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	sess.DeleteConnection(r.Context(), chi.URLParam(r, "connectionID"))
	w.WriteHeader(http.StatusNoContent)
}
