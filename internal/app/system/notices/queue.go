// internal/app/system/notices/queue.go
package notices

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scanmenu/admindesk/internal/app/system/htmlsanitize"
)

// Level is a toast severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultCapacity is how many notices a queue keeps.
const DefaultCapacity = 20

// Notice is a dismissible toast.
type Notice struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Queue keeps the most recent notices, oldest first. It is safe for
// concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []Notice
	cap   int
	now   func() time.Time
}

// NewQueue returns an empty queue holding at most capacity notices
// (DefaultCapacity when capacity <= 0).
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{cap: capacity, now: time.Now}
}

// Push appends a notice and returns it. The message is reduced to plain
// text. When the queue is full the oldest notice is dropped.
func (q *Queue) Push(level Level, message string) Notice {
	n := Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: htmlsanitize.PlainText(message),
		At:      q.now(),
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	if over := len(q.items) - q.cap; over > 0 {
		q.items = append([]Notice(nil), q.items[over:]...)
	}
	return n
}

// Success is Push(LevelSuccess, message).
func (q *Queue) Success(message string) Notice { return q.Push(LevelSuccess, message) }

// Error is Push(LevelError, message).
func (q *Queue) Error(message string) Notice { return q.Push(LevelError, message) }

// List returns a copy of the queued notices.
func (q *Queue) List() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notice, len(q.items))
	copy(out, q.items)
	return out
}

// Dismiss removes the notice with id. It reports whether one was removed.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of queued notices.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
