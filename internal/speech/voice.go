package speech

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hammamikhairi/recipebot/internal/domain"
	"github.com/hammamikhairi/recipebot/internal/logger"
)

// DefaultMaxListen bounds a capture when the user never stops it.
const DefaultMaxListen = 6 * time.Second

// ErrNoSpeech is reported when a capture ends without recognizable words.
var ErrNoSpeech = errors.New("no speech recognized")

// Option configures the Voice adapter.
type Option func(*Voice)

// WithMaxListen sets how long a capture runs before it stops on its own.
// Zero or negative disables the limit.
func WithMaxListen(d time.Duration) Option {
	return func(v *Voice) { v.maxListen = d }
}

// WithCue plays feedback when a capture starts and stops.
func WithCue(c Cue) Option {
	return func(v *Voice) { v.cue = c }
}

// Voice owns the listening state on top of an Engine. At most one
// capture is active; results and errors fan out to subscribers.
type Voice struct {
	engine    Engine
	log       *logger.Logger
	maxListen time.Duration
	cue       Cue

	mu      sync.Mutex
	active  *session
	subs    map[uint64]*Subscription
	nextSub uint64
}

type session struct {
	capture Capture
	timer   *time.Timer
	done    bool
}

// Subscription is a registered pair of handlers. Close removes it.
type Subscription struct {
	id       uint64
	v        *Voice
	onResult func(string)
	onError  func(error)
}

// New creates a Voice adapter over engine.
func New(engine Engine, log *logger.Logger, opts ...Option) *Voice {
	v := &Voice{
		engine:    engine,
		log:       log,
		maxListen: DefaultMaxListen,
		subs:      make(map[uint64]*Subscription),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Subscribe registers handlers for recognized text and recognition
// errors. Handlers run on the engine's goroutine.
func (v *Voice) Subscribe(onResult func(string), onError func(error)) *Subscription {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextSub++
	s := &Subscription{id: v.nextSub, v: v, onResult: onResult, onError: onError}
	v.subs[s.id] = s
	return s
}

// Close unregisters the handlers. Safe to call more than once.
func (s *Subscription) Close() {
	s.v.mu.Lock()
	defer s.v.mu.Unlock()
	delete(s.v.subs, s.id)
}

// Listening reports whether a capture is active.
func (v *Voice) Listening() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active != nil
}

// Start begins a capture in the given locale. It fails with
// domain.ErrSessionActive if one is already running.
func (v *Voice) Start(ctx context.Context, locale string) error {
	if err := ctx.Err(); err != nil {
		return domain.VoiceSessionError("voice.start", err)
	}

	v.mu.Lock()
	if v.active != nil {
		v.mu.Unlock()
		return domain.VoiceSessionError("voice.start", domain.ErrSessionActive)
	}
	s := &session{}
	v.active = s
	v.mu.Unlock()

	capture, err := v.engine.Capture(locale, func(text string, err error) {
		v.finish(s, text, err)
	})
	if err != nil {
		v.mu.Lock()
		if v.active == s {
			v.active = nil
		}
		v.mu.Unlock()
		v.log.Error("start failed: %v", err)
		return domain.VoiceSessionError("voice.start", err)
	}

	v.mu.Lock()
	if v.active != s {
		// Stopped while the engine was starting.
		v.mu.Unlock()
		capture.Stop()
		return nil
	}
	s.capture = capture
	if v.maxListen > 0 {
		s.timer = time.AfterFunc(v.maxListen, func() {
			v.log.Debug("max listen of %s reached", v.maxListen)
			v.end(s)
		})
	}
	v.mu.Unlock()

	v.log.Info("listening (locale=%s)", locale)
	if v.cue != nil {
		v.cue.Started()
	}
	return nil
}

// Stop ends the active capture. The transcript, if any, is delivered to
// subscribers afterwards. Stop without an active capture does nothing.
func (v *Voice) Stop() error {
	v.mu.Lock()
	s := v.active
	v.mu.Unlock()

	if s == nil {
		return nil
	}
	return v.end(s)
}

// end stops s if it is still the active session.
func (v *Voice) end(s *session) error {
	v.mu.Lock()
	if v.active != s {
		v.mu.Unlock()
		return nil
	}
	v.active = nil
	capture, timer := s.capture, s.timer
	v.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if v.cue != nil {
		v.cue.Stopped()
	}
	if capture == nil {
		return nil
	}
	if err := capture.Stop(); err != nil {
		v.log.Error("stop failed: %v", err)
		return domain.VoiceSessionError("voice.stop", err)
	}
	return nil
}

// finish delivers the outcome of s exactly once.
func (v *Voice) finish(s *session, text string, err error) {
	v.mu.Lock()
	if s.done {
		v.mu.Unlock()
		return
	}
	s.done = true
	stillActive := v.active == s
	if stillActive {
		// The engine ended on its own.
		v.active = nil
		if s.timer != nil {
			s.timer.Stop()
		}
	}
	subs := make([]*Subscription, 0, len(v.subs))
	for _, sub := range v.subs {
		subs = append(subs, sub)
	}
	v.mu.Unlock()

	if stillActive && v.cue != nil {
		v.cue.Stopped()
	}

	if err == nil {
		if text = CleanTranscript(text); text == "" {
			err = ErrNoSpeech
		}
	}

	if err != nil {
		werr := domain.VoiceSessionError("voice.recognize", err)
		v.log.Warn("recognition failed: %v", err)
		for _, sub := range subs {
			if sub.onError != nil {
				sub.onError(werr)
			}
		}
		return
	}

	v.log.Info("heard: %q", text)
	for _, sub := range subs {
		if sub.onResult != nil {
			sub.onResult(text)
		}
	}
}

// Destroy stops any capture and drops every subscription.
func (v *Voice) Destroy() {
	v.Stop()

	v.mu.Lock()
	defer v.mu.Unlock()
	v.subs = make(map[uint64]*Subscription)
}
