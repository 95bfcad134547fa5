package handlers

import (
	"net/http"

	"questnote/application/services"
	"questnote/application/session"
	"questnote/domain/core/entities"
	"questnote/pkg/auth"
	"questnote/pkg/common"
	"questnote/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20

// sessionFor resolves the request actor to their loaded graph session.
func sessionFor(r *http.Request, sessions *session.Manager) (*session.Session, error) {
	actor, err := auth.GetActorFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return sessions.ForActor(r.Context(), actor)
}

// NoteHandler handles note-related HTTP requests
type NoteHandler struct {
	sessions *session.Manager
	progress *services.ProgressService
	logger   *zap.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(sessions *session.Manager, progress *services.ProgressService, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{
		sessions: sessions,
		progress: progress,
		logger:   logger,
	}
}

// CreateNoteRequest represents the request body for creating a note
type CreateNoteRequest struct {
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"max=50000"`
}

// UpdateNoteRequest represents the request body for updating a note.
// Absent fields are left unchanged.
type UpdateNoteRequest struct {
	Title   *string          `json:"title" validate:"omitempty,max=200"`
	Content *string          `json:"content" validate:"omitempty,max=50000"`
	Tasks   *[]entities.Task `json:"tasks"`
	XPValue *int             `json:"xpValue" validate:"omitempty,min=1,max=10"`
}

// AddTaskRequest represents the request body for adding a checklist task
type AddTaskRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// CreateNote handles POST /notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
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

	note, err := sess.CreateNote(r.Context(), req.Title, req.Content)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, note)
}

// ListNotes handles GET /notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, h.sessions)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, sess.Notes())
}

// GetNote handles GET /notes/{noteID}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, h.sessions)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	note, err := sess.GetNote(chi.URLParam(r, "noteID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /notes/{noteID}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
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

	note, err := sess.UpdateNote(r.Context(), chi.URLParam(r, "noteID"), session.NotePatch{
		Title:   req.Title,
		Content: req.Content,
		Tasks:   req.Tasks,
		XPValue: req.XPValue,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{noteID}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, h.sessions)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	noteID := chi.URLParam(r, "noteID")
	if !sess.DeleteNote(r.Context(), noteID) {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "note not found")
		return
	}

	h.logger.Debug("note deleted via API",
		zap.String("ownerID", sess.OwnerID()),
		zap.String("noteID", noteID),
	)
	w.WriteHeader(http.StatusNoContent)
}

// AddTask handles POST /notes/{noteID}/tasks
func (h *NoteHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req AddTaskRequest
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

	note, err := sess.AddTask(r.Context(), chi.URLParam(r, "noteID"), req.Text)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, note)
}

// ToggleTask handles PUT /notes/{noteID}/tasks/{taskID}/toggle
func (h *NoteHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, h.sessions)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	note, err := sess.ToggleTask(r.Context(), chi.URLParam(r, "noteID"), chi.URLParam(r, "taskID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, note)
}

// CompleteAllTasks handles POST /notes/{noteID}/complete-all
func (h *NoteHandler) CompleteAllTasks(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, h.sessions)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	note, profile, err := h.progress.CompleteAllTasks(r.Context(), sess, chi.URLParam(r, "noteID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"note":    note,
		"profile": profile,
	})
}
