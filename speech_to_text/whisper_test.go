package speech_to_text

import (
	"errors"
	"math"
	"testing"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/go-audio/audio"
)

// stubModel fails the test if inference is ever reached.
type stubModel struct {
	t *testing.T
}

func (m *stubModel) Close() error { return nil }

func (m *stubModel) NewContext() (whisper.Context, error) {
	m.t.Errorf("NewContext called: buffer should have been rejected before inference")

	return nil, errors.New("not implemented")
}

func (m *stubModel) IsMultilingual() bool { return false }

func (m *stubModel) Languages() []string { return nil }

func monoBuffer(data []int) *audio.IntBuffer {
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  16000,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
}

func TestWhisper_Transcribe(t *testing.T) {
	t.Run("empty buffer is rejected without touching the model", func(t *testing.T) {
		stt, err := NewWhisper(&WhisperConfig{Model: &stubModel{t: t}})
		if err != nil {
			t.Fatalf("NewWhisper: %v", err)
		}

		if _, err := stt.Transcribe(monoBuffer(nil)); !errors.Is(err, ErrEmptyBuffer) {
			t.Errorf("expected ErrEmptyBuffer, got %v", err)
		}

		if _, err := stt.Transcribe(nil); !errors.Is(err, ErrEmptyBuffer) {
			t.Errorf("expected ErrEmptyBuffer for nil buffer, got %v", err)
		}
	})

	t.Run("energy gate returns empty text on silence without inference", func(t *testing.T) {
		stt, err := NewWhisper(&WhisperConfig{
			Model:      &stubModel{t: t},
			EnergyGate: true,
		})
		if err != nil {
			t.Fatalf("NewWhisper: %v", err)
		}

		text, err := stt.Transcribe(monoBuffer(make([]int, 16000)))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		if text != "" {
			t.Errorf("expected empty transcript for silence, got %q", text)
		}
	})
}

func TestNewWhisper(t *testing.T) {
	t.Run("nil config is rejected", func(t *testing.T) {
		if _, err := NewWhisper(nil); err == nil {
			t.Errorf("expected error for nil config")
		}
	})

	t.Run("nil model is rejected", func(t *testing.T) {
		if _, err := NewWhisper(&WhisperConfig{}); err == nil {
			t.Errorf("expected error for nil model")
		}
	})
}

func TestNormalize(t *testing.T) {
	t.Run("samples map to the float32 range whisper expects", func(t *testing.T) {
		buf := monoBuffer([]int{0, 16384, -16384, 32767, -32768})

		data := normalize(buf)

		expected := []float32{0, 0.5, -0.5, 32767.0 / 32768.0, -1}
		for i, want := range expected {
			if math.Abs(float64(data[i]-want)) > 1e-6 {
				t.Errorf("sample %d: expected %f, got %f", i, want, data[i])
			}
		}
	})
}
