package speech_to_text

import (
	"errors"

	"github.com/go-audio/audio"
)

// ErrEmptyBuffer is returned when an adapter is handed a buffer with no
// samples. Minimum-duration gating happens before the adapter, so this
// only guards against programming errors.
var ErrEmptyBuffer = errors.New("utterance buffer is empty")

// Interface turns one finalized utterance buffer into plain text. A silent
// utterance yields empty text, not an error. Calls may block for seconds
// while the model runs; that is the expected cost, not a fault.
type Interface interface {
	Transcribe(buf *audio.IntBuffer) (string, error)
}
