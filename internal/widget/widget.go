// Package widget wires the chat overlay together: history replay, the
// dismissal gestures and the send flow, bound to a page once it is ready.
package widget

import (
	"context"
	"sync"

	"invagro-dashboard/internal/chat"
	"invagro-dashboard/internal/history"
	"invagro-dashboard/internal/overlay"
	"invagro-dashboard/internal/transcript"
)

type ReadyState string

const (
	ReadyLoading     ReadyState = "loading"
	ReadyInteractive ReadyState = "interactive"
	ReadyComplete    ReadyState = "complete"
)

// Document is the page hosting the overlay.
type Document interface {
	ReadyState() ReadyState
	OnContentLoaded(fn func())
	OnKeyDown(fn func(key string))
	// OnOverlayClick reports clicks on the overlay element; onBackdrop is
	// true when the click target is the overlay itself, not its content.
	OnOverlayClick(fn func(onBackdrop bool))
}

// Page groups the collaborators the widget drives. Any view may be nil when
// the matching element is missing from the page.
type Page struct {
	Document Document
	Overlay  overlay.View
	Messages transcript.View
	Controls chat.Controls
}

type Widget struct {
	doc        Document
	overlay    *overlay.Controller
	transcript *transcript.Renderer
	sender     *chat.Sender
	initOnce   sync.Once
}

func New(page Page, store *history.Store, poster chat.Poster) *Widget {
	r := transcript.NewRenderer(page.Messages, store)
	return &Widget{
		doc:        page.Document,
		overlay:    overlay.NewController(page.Overlay),
		transcript: r,
		sender:     chat.NewSender(poster, r, page.Controls),
	}
}

// Initialize binds the widget to the page exactly once. It runs right away
// when the document is interactive or complete, otherwise on content loaded.
func (w *Widget) Initialize(ctx context.Context) {
	if w.doc == nil || w.doc.ReadyState() != ReadyLoading {
		w.init(ctx)
		return
	}
	w.doc.OnContentLoaded(func() { w.init(ctx) })
}

func (w *Widget) init(ctx context.Context) {
	w.initOnce.Do(func() {
		w.transcript.RenderAll(ctx)
		if w.doc == nil {
			return
		}
		w.doc.OnOverlayClick(w.overlay.HandleClick)
		w.doc.OnKeyDown(w.overlay.HandleKey)
	})
}

func (w *Widget) Open()        { w.overlay.Open() }
func (w *Widget) Close()       { w.overlay.Close() }
func (w *Widget) IsOpen() bool { return w.overlay.IsOpen() }

// Submit starts sending input; see chat.Sender.Submit.
func (w *Widget) Submit(ctx context.Context, input string) (*chat.Flight, error) {
	return w.sender.Submit(ctx, input)
}

// Send submits input and waits for the assistant turn.
func (w *Widget) Send(ctx context.Context, input string) (string, error) {
	return w.sender.Send(ctx, input)
}

func (w *Widget) Sending() bool { return w.sender.Phase() == chat.Sending }
