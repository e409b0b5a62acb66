package speech

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/recipebot/internal/logger"
)

// Compile-time interface check.
var _ Engine = (*WhisperEngine)(nil)

// WhisperOption configures the WhisperEngine.
type WhisperOption func(*WhisperEngine)

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) WhisperOption {
	return func(w *WhisperEngine) { w.tempDir = dir }
}

// WhisperEngine records from the default microphone and transcribes
// locally with the whisper.cpp CLI.
type WhisperEngine struct {
	bin     string
	model   string
	tempDir string
	log     *logger.Logger
}

// NewWhisperEngine creates an engine using the whisper-cli binary at bin
// and the GGML model at model.
func NewWhisperEngine(bin, model string, log *logger.Logger, opts ...WhisperOption) *WhisperEngine {
	w := &WhisperEngine{
		bin:     bin,
		model:   model,
		tempDir: ".recipebot/stt",
		log:     log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Check reports whether the binary and model are usable. It is called
// on every Capture, and once at startup so misconfiguration shows early.
func (w *WhisperEngine) Check() error {
	if _, err := exec.LookPath(w.bin); err != nil {
		return fmt.Errorf("whisper binary %q not found: %w", w.bin, err)
	}
	if _, err := os.Stat(w.model); err != nil {
		return fmt.Errorf("whisper model: %w", err)
	}
	return nil
}

// Capture starts recording. The transcript is produced when the capture
// is stopped. whisper auto-detects the language; locale is only logged.
func (w *WhisperEngine) Capture(locale string, onText func(string, error)) (Capture, error) {
	if err := w.Check(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(w.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}

	var once sync.Once
	callback := func(text string) {
		once.Do(func() { onText(text, nil) })
	}

	verbose := w.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		w.bin,
		w.model,
		w.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		return nil, fmt.Errorf("transcriber init: %w", err)
	}

	if err := t.Start(); err != nil {
		return nil, fmt.Errorf("recording start: %w", err)
	}

	w.log.Debug("whisper: recording (locale=%s, lang=%s)", locale, Language(locale))
	return &whisperCapture{stop: func() { t.Stop() }}, nil
}

type whisperCapture struct {
	once sync.Once
	stop func()
}

// Stop ends the recording; transcription runs in the transcriber and
// reports through the callback.
func (c *whisperCapture) Stop() error {
	c.once.Do(c.stop)
	return nil
}

// Language maps a BCP 47 locale like "en-US" to its language code.
func Language(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	lang, _, _ = strings.Cut(lang, "_")
	if lang == "" {
		return "auto"
	}
	return strings.ToLower(lang)
}
