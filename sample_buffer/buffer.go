package sample_buffer

import (
	"time"

	"github.com/go-audio/audio"
)

// Buffer accumulates int16 samples for a single utterance. It is bounded:
// once the capacity derived from the maximum capture duration is reached,
// further appends are discarded so the earliest audio is preserved.
type Buffer struct {
	data       []int
	max        int
	sampleRate int
	channels   int
}

func New(sampleRate, channels int, maxDuration time.Duration) *Buffer {
	max := int(maxDuration.Seconds() * float64(sampleRate) * float64(channels))

	return &Buffer{
		data:       make([]int, 0, max),
		max:        max,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// Append copies samples into the buffer and returns how many were accepted.
// Anything past capacity is dropped.
func (b *Buffer) Append(samples []int16) int {
	room := b.max - len(b.data)
	if room <= 0 {
		return 0
	}

	if len(samples) > room {
		samples = samples[:room]
	}

	for _, s := range samples {
		b.data = append(b.data, int(s))
	}

	return len(samples)
}

func (b *Buffer) Full() bool {
	return len(b.data) >= b.max
}

func (b *Buffer) Len() int {
	return len(b.data)
}

// Duration reports how much audio the buffer holds.
func (b *Buffer) Duration() time.Duration {
	frames := len(b.data) / b.channels

	return time.Duration(float64(frames) / float64(b.sampleRate) * float64(time.Second))
}

// AsIntBuffer finalizes the buffer into the shape the transcription
// engines consume. The caller owns the result; the Buffer is not reused.
func (b *Buffer) AsIntBuffer() *audio.IntBuffer {
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: b.channels,
			SampleRate:  b.sampleRate,
		},
		Data:           b.data,
		SourceBitDepth: 16,
	}
}
