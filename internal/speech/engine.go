// Package speech provides voice input: a whisper.cpp capture engine, the
// Voice adapter that owns the listening state, and an optional audio cue.
package speech

// Engine is the platform speech-recognition capability. Capture starts
// recording immediately; once the returned Capture is stopped the engine
// delivers exactly one transcript or error to onText, possibly on
// another goroutine.
type Engine interface {
	Capture(locale string, onText func(text string, err error)) (Capture, error)
}

// Capture is one live recording.
type Capture interface {
	Stop() error
}

// Cue gives audible feedback when capture starts and stops.
type Cue interface {
	Started()
	Stopped()
}
