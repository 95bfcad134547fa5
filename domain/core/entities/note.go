package entities

import (
	"strings"
	"time"

	"questnote/domain/config"
	pkgerrors "questnote/pkg/errors"

	"github.com/google/uuid"
)

// Task is a single checklist entry inside a note.
// Slice order is display order.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Note is a user-authored record with title, free-text content and an
// optional task checklist. Notes are the nodes of the mind-map graph.
type Note struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tasks        []Task    `json:"tasks"`
	HasChecklist bool      `json:"hasChecklist"`
	AllChecked   bool      `json:"allChecked"`
	XPValue      int       `json:"xpValue"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewNote creates a note for the given owner with defaults applied.
func NewNote(ownerID, title, content string, cfg *config.DomainConfig) (*Note, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID cannot be empty")
	}

	now := time.Now().UTC()
	note := &Note{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(title),
		Content:   content,
		Tasks:     []Task{},
		XPValue:   cfg.DefaultXPValue,
		CreatedAt: now,
		UpdatedAt: now,
	}
	note.Normalize(cfg)

	return note, nil
}

// Valid reports whether the record satisfies the persistence invariant.
// Load-time repair drops anything that fails this.
func (n *Note) Valid() bool {
	return n != nil && n.ID != "" && n.OwnerID != ""
}

// Normalize fills defaults and re-derives the checklist flags.
// It is applied at every read and write boundary so that records coming
// out of storage are never trusted as-is.
func (n *Note) Normalize(cfg *config.DomainConfig) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if n.Title == "" {
		n.Title = cfg.UntitledLabel
	}
	if n.Tasks == nil {
		n.Tasks = []Task{}
	}
	for i := range n.Tasks {
		if n.Tasks[i].ID == "" {
			n.Tasks[i].ID = uuid.New().String()
		}
	}
	if n.XPValue == 0 {
		n.XPValue = cfg.DefaultXPValue
	}
	if n.XPValue < cfg.MinXPValue {
		n.XPValue = cfg.MinXPValue
	}
	if n.XPValue > cfg.MaxXPValue {
		n.XPValue = cfg.MaxXPValue
	}

	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}

	n.recalcChecklist()
}

// AddTask appends a checklist entry and refreshes the derived flags.
func (n *Note) AddTask(text string, cfg *config.DomainConfig) (*Task, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.NewValidationError("task text cannot be empty")
	}
	if len(n.Tasks) >= cfg.MaxTasksPerNote {
		return nil, pkgerrors.NewValidationError("task limit reached for this note")
	}

	task := Task{
		ID:   uuid.New().String(),
		Text: text,
	}
	n.Tasks = append(n.Tasks, task)
	n.Touch()
	n.recalcChecklist()

	return &n.Tasks[len(n.Tasks)-1], nil
}

// ToggleTask flips the completion state of a single task.
func (n *Note) ToggleTask(taskID string) error {
	for i := range n.Tasks {
		if n.Tasks[i].ID == taskID {
			n.Tasks[i].Completed = !n.Tasks[i].Completed
			n.Touch()
			n.recalcChecklist()
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("task")
}

// CompleteAllTasks marks every task completed and reports whether the
// checklist went from incomplete to fully checked. Callers use the report
// to decide whether the note's XP reward is due.
func (n *Note) CompleteAllTasks() bool {
	if len(n.Tasks) == 0 {
		return false
	}

	wasAllChecked := n.AllChecked
	for i := range n.Tasks {
		n.Tasks[i].Completed = true
	}
	n.Touch()
	n.recalcChecklist()

	return !wasAllChecked
}

// Touch refreshes the updatedAt timestamp.
func (n *Note) Touch() {
	n.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy, so callers cannot mutate in-memory state
// behind the session's back.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	dup := *n
	dup.Tasks = make([]Task, len(n.Tasks))
	copy(dup.Tasks, n.Tasks)
	return &dup
}

// recalcChecklist re-derives hasChecklist and allChecked from the task
// list. allChecked is not a one-way ratchet: unchecking a task after a
// complete-all clears it again.
func (n *Note) recalcChecklist() {
	n.HasChecklist = len(n.Tasks) > 0

	allChecked := n.HasChecklist
	for _, t := range n.Tasks {
		if !t.Completed {
			allChecked = false
			break
		}
	}
	n.AllChecked = allChecked
}
