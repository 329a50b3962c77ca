package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus defines the possible states of a task.
type TaskStatus string

const (
	TaskStatusStarted   TaskStatus = "started"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task represents a long-running operation such as an index rebuild.
type Task struct {
	ID              string
	Status          TaskStatus
	ProgressMessage string
	Error           string
	StartedAt       time.Time
	FinishedAt      time.Time
	mu              sync.RWMutex
}

// TaskView is a consistent copy of a Task, safe to encode.
type TaskView struct {
	ID              string     `json:"id"`
	Status          TaskStatus `json:"status"`
	ProgressMessage string     `json:"progress_message,omitempty"`
	Error           string     `json:"error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// DefaultTaskTTL is how long finished tasks stay queryable.
const DefaultTaskTTL = time.Hour

// TaskManager tracks all asynchronous tasks. Finished tasks older than ttl
// are dropped whenever a new task is created.
type TaskManager struct {
	tasks map[string]*Task
	ttl   time.Duration
	mu    sync.RWMutex
}

// NewTaskManager creates a new task manager.
func NewTaskManager() *TaskManager {
	return &TaskManager{
		tasks: make(map[string]*Task),
		ttl:   DefaultTaskTTL,
	}
}

// NewTask creates a new task, registers it, and returns it.
func (tm *TaskManager) NewTask() *Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.prune(time.Now().Add(-tm.ttl))

	task := &Task{
		ID:        uuid.New().String(),
		Status:    TaskStatusStarted,
		StartedAt: time.Now(),
	}
	tm.tasks[task.ID] = task
	return task
}

// GetTask safely retrieves a task by its ID.
func (tm *TaskManager) GetTask(id string) (*Task, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	task, found := tm.tasks[id]
	return task, found
}

// Prune drops tasks that finished before cutoff and returns how many it removed.
func (tm *TaskManager) Prune(cutoff time.Time) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.prune(cutoff)
}

func (tm *TaskManager) prune(cutoff time.Time) int {
	removed := 0
	for id, task := range tm.tasks {
		task.mu.RLock()
		done := !task.FinishedAt.IsZero() && task.FinishedAt.Before(cutoff)
		task.mu.RUnlock()
		if done {
			delete(tm.tasks, id)
			removed++
		}
	}
	return removed
}

// --- Methods for updating a Task ---

// SetStatus updates the status of the task.
func (t *Task) SetStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = status
	if status == TaskStatusCompleted {
		t.FinishedAt = time.Now()
	}
}

// SetError marks the task as failed and records the error message.
func (t *Task) SetError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusFailed
	t.Error = err.Error()
	t.FinishedAt = time.Now()
}

// SetProgress updates the progress message for the task.
func (t *Task) SetProgress(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ProgressMessage = message
}

// View returns a snapshot of the task.
func (t *Task) View() TaskView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v := TaskView{
		ID:              t.ID,
		Status:          t.Status,
		ProgressMessage: t.ProgressMessage,
		Error:           t.Error,
		StartedAt:       t.StartedAt,
	}
	if !t.FinishedAt.IsZero() {
		finished := t.FinishedAt
		v.FinishedAt = &finished
	}
	return v
}
