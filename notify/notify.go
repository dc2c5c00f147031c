package notify

import (
	"github.com/gen2brain/beeep"

	"push-to-talk-typer/logging"
)

const title = "Push-to-talk"

// Notifier shows optional desktop notifications around the capture
// lifecycle. Failures are logged and never affect control flow.
type Notifier struct {
	enabled bool
	logger  *logging.Logger
}

func New(enabled bool, logger *logging.Logger) *Notifier {
	return &Notifier{
		enabled: enabled,
		logger:  logger.Named("notify"),
	}
}

func (n *Notifier) RecordingStarted() {
	n.send("Recording...")
}

func (n *Notifier) RecordingStopped() {
	n.send("Transcribing...")
}

func (n *Notifier) UtteranceDropped(reason string) {
	n.send("Utterance dropped: " + reason)
}

func (n *Notifier) send(message string) {
	if !n.enabled {
		return
	}

	if err := beeep.Notify(title, message, ""); err != nil {
		n.logger.Warn("failed to show notification", logging.Error(err))
	}
}
