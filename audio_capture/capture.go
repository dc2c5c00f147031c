package audio_capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/gordonklaus/portaudio"

	"push-to-talk-typer/sample_buffer"
)

// ErrDeviceUnavailable marks capture failures caused by the input device
// being missing or disconnecting mid-capture. The utterance is dropped.
var ErrDeviceUnavailable = errors.New("capture device unavailable")

type captureImpl struct {
	deviceIndex  int
	sampleRate   int
	channels     int
	frameSize    int
	maxDuration  time.Duration
	audioRunning bool
}

type Config struct {
	DeviceIndex int // -1 selects the system default input device
	SampleRate  int
	Channels    int
	FrameSize   int
	MaxDuration time.Duration
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.SampleRate <= 0 || cfg.Channels <= 0 || cfg.FrameSize <= 0 {
		return nil, fmt.Errorf("invalid stream parameters: rate=%d channels=%d frame=%d",
			cfg.SampleRate, cfg.Channels, cfg.FrameSize)
	}

	if cfg.MaxDuration <= 0 {
		return nil, fmt.Errorf("max duration must be positive")
	}

	return &captureImpl{
		deviceIndex: cfg.DeviceIndex,
		sampleRate:  cfg.SampleRate,
		channels:    cfg.Channels,
		frameSize:   cfg.FrameSize,
		maxDuration: cfg.MaxDuration,
	}, nil
}

func (c *captureImpl) Begin() (Session, error) {
	if err := c.initAudio(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	in := make([]int16, c.frameSize)

	stream, err := c.openStream(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()

		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	s := &sessionImpl{
		stream: stream,
		in:     in,
		buf:    sample_buffer.New(c.sampleRate, c.channels, c.maxDuration),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()

	return s, nil
}

func (c *captureImpl) openStream(in []int16) (*portaudio.Stream, error) {
	if c.deviceIndex < 0 {
		return portaudio.OpenDefaultStream(c.channels, 0, float64(c.sampleRate), len(in), in)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	if c.deviceIndex >= len(devices) {
		return nil, fmt.Errorf("device index %d out of range (%d devices)", c.deviceIndex, len(devices))
	}

	device := devices[c.deviceIndex]

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: c.channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(c.sampleRate),
		FramesPerBuffer: len(in),
	}

	return portaudio.OpenStream(params, in)
}

func (c *captureImpl) initAudio() error {
	if !c.audioRunning {
		if err := portaudio.Initialize(); err != nil {
			return err
		}

		c.audioRunning = true
	}

	return nil
}

func (c *captureImpl) Close() {
	if c.audioRunning {
		portaudio.Terminate()

		c.audioRunning = false
	}
}

type sessionImpl struct {
	stream   *portaudio.Stream
	in       []int16
	buf      *sample_buffer.Buffer
	stop     chan struct{}
	done     chan struct{}
	doneOnce sync.Once
	endOnce  sync.Once
	wg       sync.WaitGroup

	readErr error
	result  *audio.IntBuffer
}

func (s *sessionImpl) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		if err := s.stream.Read(); err != nil {
			s.readErr = fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
			s.signalDone()

			return
		}

		s.buf.Append(s.in)

		if s.buf.Full() {
			s.signalDone()

			return
		}
	}
}

func (s *sessionImpl) signalDone() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *sessionImpl) Done() <-chan struct{} {
	return s.done
}

// End stops frame accumulation, closes the device handle and returns the
// finalized buffer. A device failure observed mid-capture surfaces here.
func (s *sessionImpl) End() (*audio.IntBuffer, error) {
	s.endOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()

		s.stream.Stop()
		s.stream.Close()

		if s.readErr == nil {
			s.result = s.buf.AsIntBuffer()
		}
	})

	if s.readErr != nil {
		return nil, s.readErr
	}

	return s.result, nil
}
