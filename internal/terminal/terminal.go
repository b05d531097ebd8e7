// Package terminal renders the chat overlay in a terminal. Lines typed by the
// user are either commands (/open, /close, /esc, /backdrop, /history, /quit)
// or messages for the assistant.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"invagro-dashboard/internal/chat"
	"invagro-dashboard/internal/models"
	"invagro-dashboard/internal/widget"
)

var (
	userLabel      = color.New(color.FgGreen, color.Bold)
	assistantLabel = color.New(color.FgCyan, color.Bold)
	systemLine     = color.New(color.FgYellow)
	dimLine        = color.New(color.Faint)
)

// Screen implements every view the widget needs on top of an io.Writer.
type Screen struct {
	mu       sync.Mutex
	out      io.Writer
	open     bool
	pressed  bool
	loading  bool
	bubbles  int
	keys     []func(string)
	clicks   []func(bool)
	onLoaded []func()
}

func NewScreen(out io.Writer) *Screen {
	return &Screen{out: out}
}

// transcript.View

func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bubbles = 0
	dimLine.Fprintln(s.out, "────────────────────────────────")
}

func (s *Screen) AddBubble(role models.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bubbles++
	if role == models.RoleUser {
		userLabel.Fprint(s.out, "Tú: ")
	} else {
		assistantLabel.Fprint(s.out, "Asistente: ")
	}
	fmt.Fprintln(s.out, content)
}

func (s *Screen) ScrollToBottom() {}

// overlay.View

func (s *Screen) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = visible
	if visible {
		systemLine.Fprintln(s.out, "[chat abierto]  /close o /esc para cerrar")
	} else {
		systemLine.Fprintln(s.out, "[chat cerrado]  /open para abrir")
	}
}

func (s *Screen) SetTriggersPressed(pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressed = pressed
}

func (s *Screen) FocusInput() {}

// chat.Controls

func (s *Screen) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
	if loading {
		dimLine.Fprintln(s.out, "…")
	}
}

func (s *Screen) ClearInput() {}

// widget.Document

func (s *Screen) ReadyState() widget.ReadyState { return widget.ReadyComplete }

func (s *Screen) OnContentLoaded(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLoaded = append(s.onLoaded, fn)
}

func (s *Screen) OnKeyDown(fn func(key string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, fn)
}

func (s *Screen) OnOverlayClick(fn func(onBackdrop bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks = append(s.clicks, fn)
}

func (s *Screen) pressKey(key string) {
	s.mu.Lock()
	handlers := append([]func(string){}, s.keys...)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn(key)
	}
}

func (s *Screen) clickOverlay(onBackdrop bool) {
	s.mu.Lock()
	handlers := append([]func(bool){}, s.clicks...)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn(onBackdrop)
	}
}

// Loading reports whether the input is disabled.
func (s *Screen) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Pressed reports whether the chat triggers are shown as active.
func (s *Screen) Pressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pressed
}

func (s *Screen) notice(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	systemLine.Fprintf(s.out, format+"\n", args...)
}

// Page returns the widget page backed by this screen.
func (s *Screen) Page() widget.Page {
	return widget.Page{Document: s, Overlay: s, Messages: s, Controls: s}
}

// Run reads lines from in until EOF or /quit and drives w. A flight still
// running at exit is waited for so its reply reaches the history.
func Run(ctx context.Context, in io.Reader, s *Screen, w *widget.Widget, store HistoryLister) error {
	var last *chat.Flight
	defer func() {
		if last != nil {
			last.Wait()
		}
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/open":
			w.Open()
			continue
		case "/close":
			w.Close()
			continue
		case "/esc":
			s.pressKey("Escape")
			continue
		case "/backdrop":
			s.clickOverlay(true)
			continue
		case "/history":
			s.notice("%d mensajes guardados", len(store.Load(ctx)))
			continue
		}

		if !w.IsOpen() {
			s.notice("El chat está cerrado. Escribe /open para abrirlo.")
			continue
		}

		flight, err := w.Submit(ctx, line)
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
		case errors.Is(err, chat.ErrInFlight):
			s.notice("Espera la respuesta anterior.")
		case err != nil:
			return err
		default:
			last = flight
		}
	}
	return scanner.Err()
}

// HistoryLister is the part of the history store the /history command uses.
type HistoryLister interface {
	Load(ctx context.Context) []models.ChatMessage
}
