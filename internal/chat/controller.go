package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/diogo/gemchat/internal/api"
	apierrors "github.com/diogo/gemchat/internal/errors"
	"github.com/diogo/gemchat/internal/models"
)

// Fixed user-facing strings.
const (
	// GreetingText opens every conversation after a successful bootstrap.
	GreetingText = "Hi! I'm Gemini. Ask me anything."

	// StreamErrorText replaces a placeholder's content when its stream fails.
	StreamErrorText = "Sorry, I encountered an error."

	// BootstrapErrorText is the persistent banner shown when no session
	// could be created. Sending stays disabled for the rest of the run.
	BootstrapErrorText = "Could not start a chat session. Check your credentials and restart."

	// GenericErrorText is the banner shown when a reply stream fails.
	GenericErrorText = "Something went wrong while generating the reply."
)

// Guard errors returned by Submit. Everything else that can go wrong during
// a submission is absorbed into the conversation state instead.
var (
	ErrBusy      = errors.New("a submission is already in progress")
	ErrNoSession = errors.New("no chat session available")
)

// Streamer is the one outbound operation the controller needs from a chat
// session: send a prompt and stream back the reply.
type Streamer interface {
	SendMessageStream(ctx context.Context, prompt string, onFragment api.FragmentFunc) (*models.ModelOutput, error)
}

// Phase tags the controller's activity. A single tagged value rules out
// impossible flag combinations like busy-and-idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStreaming
)

// State is the render-facing snapshot: the conversation, whether a reply is
// streaming, the current error banner, and whether sending is possible.
// Rendering is a pure function of one State value.
type State struct {
	Messages    []models.Message
	Streaming   bool
	StreamingID string
	Err         string // error banner text, empty when none
	CanSend     bool
}

// Controller owns the message store and serializes submissions against it.
// All store mutation happens through Bootstrap and Submit.
type Controller struct {
	mu          sync.Mutex
	store       *Store
	session     Streamer
	phase       Phase
	errText     string
	streamingID string
	cancel      context.CancelFunc

	notify func() // set at construction, never changed
}

// Option configures the controller
type Option func(*Controller)

// WithNotify registers a callback invoked after every state change, so a UI
// can schedule a repaint. The callback runs on the submitting goroutine and
// should be fast, typically poking a channel.
func WithNotify(fn func()) Option {
	return func(c *Controller) {
		c.notify = fn
	}
}

// NewController creates a controller with an empty conversation. Bootstrap
// must run before the first Submit.
func NewController(opts ...Option) *Controller {
	c := &Controller{store: NewStore()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bootstrap obtains the session handle via start and appends the greeting.
// If start fails the conversation stays empty, a persistent error banner is
// set and sending stays disabled. The failure never propagates to the
// caller.
func (c *Controller) Bootstrap(start func() (Streamer, error)) {
	session, err := start()

	c.mu.Lock()
	if err != nil {
		log.Error().Err(err).Str("component", "chat").Msg("session bootstrap failed")
		c.errText = BootstrapErrorText
		c.mu.Unlock()
		c.notifyChanged()
		return
	}
	c.session = session
	c.mu.Unlock()

	c.store.AppendModel(GreetingText)
	log.Debug().Str("component", "chat").Msg("session ready")
	c.notifyChanged()
}

// Submit runs one full submission cycle: append the user record and an empty
// placeholder, stream the reply into the placeholder, then freeze it. It
// blocks until the stream completes, fails, or Cancel is called.
//
// Returns ErrBusy if a submission is already streaming and ErrNoSession if
// bootstrap never produced a handle; in both cases the store is untouched.
// Stream failures do not propagate: the placeholder is overwritten with
// StreamErrorText and the error banner is set instead.
func (c *Controller) Submit(text string) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	if c.phase == PhaseStreaming {
		c.mu.Unlock()
		return ErrBusy
	}
	session := c.session
	ctx, cancel := context.WithCancel(context.Background())
	c.phase = PhaseStreaming
	c.errText = ""
	c.cancel = cancel
	c.mu.Unlock()

	c.store.AppendUser(text)
	placeholder, err := c.store.AppendPlaceholder()
	if err != nil {
		// Unreachable while the phase guard holds; fail closed anyway.
		c.finish(cancel)
		c.notifyChanged()
		return err
	}

	c.mu.Lock()
	c.streamingID = placeholder.ID
	c.mu.Unlock()
	c.notifyChanged()

	_, err = session.SendMessageStream(ctx, text, func(fragment string) {
		if applyErr := c.store.ApplyFragment(placeholder.ID, fragment); applyErr != nil {
			log.Warn().Err(applyErr).Str("component", "chat").Msg("dropped fragment")
			return
		}
		c.notifyChanged()
	})

	switch {
	case err == nil:
		_ = c.store.Finalize(placeholder.ID)
	case apierrors.IsCanceled(err):
		// A user-requested stop keeps the partial text and raises no banner.
		_ = c.store.Finalize(placeholder.ID)
		log.Debug().Str("component", "chat").Msg("stream cancelled")
	default:
		log.Error().Err(err).Str("component", "chat").Msg("stream failed")
		_ = c.store.Fail(placeholder.ID, StreamErrorText)
		c.mu.Lock()
		c.errText = GenericErrorText
		c.mu.Unlock()
	}

	c.finish(cancel)
	c.notifyChanged()
	return nil
}

func (c *Controller) finish(cancel context.CancelFunc) {
	cancel()
	c.mu.Lock()
	c.phase = PhaseIdle
	c.streamingID = ""
	c.cancel = nil
	c.mu.Unlock()
}

// Cancel aborts the in-flight stream, if any. The placeholder keeps the
// text accumulated so far. Safe to call when nothing is streaming.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// ClearError dismisses the current error banner. The bootstrap banner is
// persistent and cannot be dismissed.
func (c *Controller) ClearError() {
	c.mu.Lock()
	if c.session != nil {
		c.errText = ""
	}
	c.mu.Unlock()
	c.notifyChanged()
}

// State returns the current render snapshot
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Messages:    c.store.Messages(),
		Streaming:   c.phase == PhaseStreaming,
		StreamingID: c.streamingID,
		Err:         c.errText,
		CanSend:     c.session != nil && c.phase == PhaseIdle,
	}
}

func (c *Controller) notifyChanged() {
	if c.notify != nil {
		c.notify()
	}
}
