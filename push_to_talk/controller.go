package push_to_talk

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-audio/audio"

	"push-to-talk-typer/audio_capture"
	"push-to-talk-typer/logging"
	"push-to-talk-typer/notify"
	"push-to-talk-typer/speech_to_text"
	"push-to-talk-typer/text_typer"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateRecording
	stateTranscribing
)

type origin int

const (
	originHotkey origin = iota
	originAPI
)

type eventKind int

const (
	eventPress eventKind = iota
	eventRelease
)

type event struct {
	kind eventKind
	org  origin
}

// TranscriptSink receives transcripts of API-originated utterances instead
// of the typer.
type TranscriptSink interface {
	Publish(text string)
}

// Controller owns the Idle -> Recording -> Transcribing -> Idle state
// machine. All transitions happen on the Run goroutine; hotkey callbacks and
// API handlers only enqueue edges, gated by the current state so a press
// while busy is a no-op and nothing ever queues up behind an utterance.
type Controller struct {
	capture      audio_capture.Interface
	engine       speech_to_text.Interface
	typer        text_typer.Interface
	notifier     *notify.Notifier
	logger       *logging.Logger
	sink         TranscriptSink
	minUtterance time.Duration

	mu             sync.Mutex
	state          sessionState
	stopping       bool
	pendingPress   bool
	pendingRelease bool
	captureOrigin  origin

	events chan event
	quit   chan struct{}
}

type Config struct {
	Capture      audio_capture.Interface
	Engine       speech_to_text.Interface
	Typer        text_typer.Interface
	Notifier     *notify.Notifier
	Logger       *logging.Logger
	Sink         TranscriptSink // optional
	MinUtterance time.Duration
}

func New(cfg *Config) (*Controller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Capture == nil {
		return nil, fmt.Errorf("capture is nil")
	}

	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is nil")
	}

	if cfg.Typer == nil {
		return nil, fmt.Errorf("typer is nil")
	}

	if cfg.Notifier == nil {
		return nil, fmt.Errorf("notifier is nil")
	}

	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	return &Controller{
		capture:      cfg.Capture,
		engine:       cfg.Engine,
		typer:        cfg.Typer,
		notifier:     cfg.Notifier,
		logger:       cfg.Logger.Named("controller"),
		sink:         cfg.Sink,
		minUtterance: cfg.MinUtterance,
		events:       make(chan event, 4),
		quit:         make(chan struct{}, 1),
	}, nil
}

// HandlePress is the hotkey press edge. Safe to call from any goroutine.
func (c *Controller) HandlePress() {
	c.enqueuePress(originHotkey)
}

// HandleRelease is the hotkey release edge.
func (c *Controller) HandleRelease() {
	c.enqueueRelease(originHotkey)
}

// HandleToggle starts a capture when idle and ends the active one
// otherwise, so a toggle key behaves like press-and-hold without the hold.
func (c *Controller) HandleToggle() {
	c.mu.Lock()
	idle := c.state == stateIdle && !c.pendingPress
	c.mu.Unlock()

	if idle {
		c.enqueuePress(originHotkey)
	} else {
		c.enqueueRelease(originHotkey)
	}
}

// StartRemote begins a capture on behalf of the control API.
func (c *Controller) StartRemote() {
	c.enqueuePress(originAPI)
}

// StopRemote ends a capture the control API started. Hotkey-originated
// captures are left alone.
func (c *Controller) StopRemote() {
	c.mu.Lock()
	owned := (c.state == stateRecording || c.pendingPress) && c.captureOrigin == originAPI
	c.mu.Unlock()

	if owned {
		c.enqueueRelease(originAPI)
	}
}

// Shutdown requests graceful termination, equivalent to an interrupt
// signal: immediate when idle, deferred until the in-flight utterance
// completes otherwise.
func (c *Controller) Shutdown() {
	select {
	case c.quit <- struct{}{}:
	default:
	}
}

func (c *Controller) enqueuePress(org origin) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopping || c.state != stateIdle || c.pendingPress {
		c.logger.Debug("press ignored, capture already in flight")

		return
	}

	c.pendingPress = true
	c.captureOrigin = org

	c.events <- event{kind: eventPress, org: org}
}

func (c *Controller) enqueueRelease(org origin) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A release only matters for an active or just-requested capture.
	// Anything else (key released after a timeout already ended the
	// session, stray release at startup) is dropped here.
	if c.pendingRelease || (c.state != stateRecording && !c.pendingPress) {
		return
	}

	c.pendingRelease = true

	c.events <- event{kind: eventRelease, org: org}
}

// Run executes the control loop until a graceful shutdown completes.
// A shutdown request while idle terminates immediately; one that arrives
// mid-utterance lets that utterance finish first, bounded by the maximum
// capture duration.
func (c *Controller) Run() error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	c.logger.Info("ready, hold the push-to-talk key to dictate")

	for {
		select {
		case ev := <-c.events:
			if ev.kind != eventPress {
				c.clearPendingRelease()

				continue
			}

			if c.runUtterance(ev.org, sig) {
				c.logger.Info("shutdown complete")

				return nil
			}
		case <-sig:
			c.logger.Info("shutdown requested while idle")

			return nil
		case <-c.quit:
			c.logger.Info("shutdown requested while idle")

			return nil
		}
	}
}

// runUtterance drives one capture -> transcribe -> inject cycle. Returns
// true when a deferred shutdown should terminate the loop.
func (c *Controller) runUtterance(org origin, sig chan os.Signal) bool {
	c.setState(stateRecording)

	sess, err := c.capture.Begin()
	if err != nil {
		c.logger.Error("capture device unavailable, dropping utterance", logging.Error(err))
		c.notifier.UtteranceDropped("microphone unavailable")

		c.setState(stateIdle)

		return c.isStopping()
	}

	c.logger.Debug("recording")
	c.notifier.RecordingStarted()

	recording := true
	for recording {
		select {
		case ev := <-c.events:
			// Only release edges can arrive here; presses are gated
			// off while we are not idle.
			if ev.kind == eventRelease {
				c.clearPendingRelease()

				recording = false
			}
		case <-sess.Done():
			c.logger.Debug("maximum capture duration reached, force-ending")

			recording = false
		case <-sig:
			c.noteStopping()
		case <-c.quit:
			c.noteStopping()
		}
	}

	c.setState(stateTranscribing)
	c.notifier.RecordingStopped()

	buf, err := sess.End()

	switch {
	case err != nil:
		c.logger.Error("capture failed, dropping utterance", logging.Error(err))
		c.notifier.UtteranceDropped("capture failed")
	case bufferDuration(buf) < c.minUtterance:
		c.logger.Debug("no speech detected, buffer below minimum duration",
			logging.Duration("duration", bufferDuration(buf)))
	default:
		c.transcribeAndDeliver(buf, org)
	}

	c.setState(stateIdle)

	return c.isStopping()
}

func (c *Controller) transcribeAndDeliver(buf *audio.IntBuffer, org origin) {
	start := time.Now()

	text, err := c.engine.Transcribe(buf)
	if err != nil {
		c.logger.Error("transcription failed, dropping utterance", logging.Error(err))

		return
	}

	c.logger.Debug("transcription finished",
		logging.Duration("took", time.Since(start)),
		logging.Duration("audio", bufferDuration(buf)))

	if text == "" {
		c.logger.Debug("silence detected, nothing to deliver")

		return
	}

	if org == originAPI && c.sink != nil {
		c.sink.Publish(text)

		return
	}

	if err := c.typer.Type(text); err != nil {
		c.logger.Error("injection failed, utterance lost", logging.Error(err))
	}
}

func (c *Controller) setState(s sessionState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = s

	if s == stateRecording {
		c.pendingPress = false
	}

	if s == stateIdle {
		c.pendingRelease = false
	}
}

func (c *Controller) clearPendingRelease() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pendingRelease = false
}

func (c *Controller) noteStopping() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stopping {
		c.logger.Info("shutdown requested, finishing in-flight utterance first")
	}

	c.stopping = true
}

func (c *Controller) isStopping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stopping
}

func (c *Controller) snapshot() sessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func bufferDuration(buf *audio.IntBuffer) time.Duration {
	if buf == nil || buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return 0
	}

	frames := len(buf.Data) / buf.Format.NumChannels

	return time.Duration(float64(frames) / float64(buf.Format.SampleRate) * float64(time.Second))
}
