package audio_capture

import "github.com/go-audio/audio"

// Session is one in-flight utterance capture. Done fires when the session
// force-ends itself at the maximum capture duration or on a device failure;
// End may be called at any point after Begin and finalizes the buffer.
type Session interface {
	Done() <-chan struct{}
	End() (*audio.IntBuffer, error)
}

// Interface opens capture sessions on the configured input device. At most
// one session may be active at a time; the device handle is closed before
// End returns.
type Interface interface {
	Begin() (Session, error)
	Close()
}
