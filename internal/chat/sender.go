// Package chat implements the send flow of the chat overlay: one user message
// out, one assistant turn back, with at most one request in flight.
package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"invagro-dashboard/internal/models"
	"invagro-dashboard/internal/transcript"
)

var (
	// ErrEmptyMessage is returned for blank input. Nothing is shown or sent.
	ErrEmptyMessage = errors.New("chat: empty message")
	// ErrInFlight is returned when a message is submitted while another is being sent.
	ErrInFlight = errors.New("chat: a message is already being sent")
)

// Poster delivers a message to the reply endpoint.
type Poster interface {
	Post(ctx context.Context, message string) (status int, body []byte, err error)
}

// Controls are the input field and send button.
type Controls interface {
	SetLoading(loading bool)
	ClearInput()
}

type noControls struct{}

func (noControls) SetLoading(bool) {}
func (noControls) ClearInput()     {}

type Phase int

const (
	Idle Phase = iota
	Sending
)

func (p Phase) String() string {
	if p == Sending {
		return "sending"
	}
	return "idle"
}

// Flight is one outstanding request.
type Flight struct {
	done   chan struct{}
	cancel context.CancelFunc
	reply  string
}

// Done is closed once the assistant turn has been appended and the controls
// re-enabled.
func (f *Flight) Done() <-chan struct{} { return f.done }

// Wait blocks until the flight settles and returns the assistant text shown.
func (f *Flight) Wait() string {
	<-f.done
	return f.reply
}

// Cancel aborts the request. The flight settles as a network failure.
func (f *Flight) Cancel() { f.cancel() }

type Sender struct {
	mu         sync.Mutex
	phase      Phase
	poster     Poster
	transcript *transcript.Renderer
	controls   Controls
}

// NewSender builds an idle sender. A nil renderer or nil controls stand for
// missing page elements.
func NewSender(poster Poster, r *transcript.Renderer, controls Controls) *Sender {
	if r == nil {
		r = transcript.NewRenderer(nil, nil)
	}
	if controls == nil {
		controls = noControls{}
	}
	return &Sender{poster: poster, transcript: r, controls: controls}
}

func (s *Sender) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Submit starts sending input. The user turn is shown and stored before the
// request goes out, the input is cleared and the controls are disabled until
// the flight settles.
func (s *Sender) Submit(ctx context.Context, input string) (*Flight, error) {
	message := strings.TrimSpace(input)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.phase == Sending {
		s.mu.Unlock()
		return nil, ErrInFlight
	}
	s.phase = Sending
	s.mu.Unlock()

	s.transcript.AppendVisible(ctx, models.RoleUser, message, true)
	s.controls.ClearInput()
	s.controls.SetLoading(true)

	flightCtx, cancel := context.WithCancel(ctx)
	f := &Flight{done: make(chan struct{}), cancel: cancel}
	go s.run(flightCtx, f, message)
	return f, nil
}

// Send submits input and waits for the assistant turn.
func (s *Sender) Send(ctx context.Context, input string) (string, error) {
	f, err := s.Submit(ctx, input)
	if err != nil {
		return "", err
	}
	return f.Wait(), nil
}

func (s *Sender) run(ctx context.Context, f *Flight, message string) {
	defer close(f.done)
	defer f.cancel()

	status, body, err := s.poster.Post(ctx, message)
	if err != nil {
		log.Printf("chat: request failed: %v", err)
	}

	f.reply = ResolveReply(status, body, err)
	s.transcript.AppendVisible(context.WithoutCancel(ctx), models.RoleAssistant, f.reply, true)

	// Controls come back before the phase leaves Sending.
	s.controls.SetLoading(false)
	s.mu.Lock()
	s.phase = Idle
	s.mu.Unlock()
}
