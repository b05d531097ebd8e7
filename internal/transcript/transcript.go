// Package transcript mirrors the chat history into the visible message list.
package transcript

import (
	"context"
	"log"
	"sync"

	"invagro-dashboard/internal/history"
	"invagro-dashboard/internal/models"
)

// View is the message list the transcript draws into.
type View interface {
	Clear()
	AddBubble(role models.Role, content string)
	ScrollToBottom()
}

// Renderer draws turns into a View. With a nil view the message list is
// considered absent and every call is a no-op, including persistence.
type Renderer struct {
	mu    sync.Mutex
	view  View
	store *history.Store
}

func NewRenderer(view View, store *history.Store) *Renderer {
	return &Renderer{view: view, store: store}
}

// RenderAll clears the list and replays the stored history without writing it back.
func (r *Renderer) RenderAll(ctx context.Context) {
	if r.view == nil {
		return
	}

	r.mu.Lock()
	r.view.Clear()
	r.mu.Unlock()

	for _, msg := range r.store.Load(ctx) {
		r.AppendVisible(ctx, msg.Role, msg.Content, false)
	}

	r.mu.Lock()
	r.view.ScrollToBottom()
	r.mu.Unlock()
}

// AppendVisible adds one bubble and, when persist is set, writes it through
// to the history. A failed write is logged and otherwise ignored.
func (r *Renderer) AppendVisible(ctx context.Context, role models.Role, content string, persist bool) {
	if r.view == nil {
		return
	}

	r.mu.Lock()
	r.view.AddBubble(role, content)
	r.view.ScrollToBottom()
	r.mu.Unlock()

	if !persist {
		return
	}
	if _, err := r.store.Append(ctx, role, content); err != nil {
		log.Printf("transcript: history not saved: %v", err)
	}
}
