package sample_buffer

import (
	"testing"
	"time"
)

func TestBuffer_Append(t *testing.T) {
	t.Run("accepts samples until capacity, then discards the rest", func(t *testing.T) {
		// 1ms at 16kHz mono = 16 samples of capacity
		buf := New(16000, 1, time.Millisecond)

		accepted := buf.Append(make([]int16, 10))
		if accepted != 10 {
			t.Errorf("expected 10 accepted, got %d", accepted)
		}

		accepted = buf.Append(make([]int16, 10))
		if accepted != 6 {
			t.Errorf("expected 6 accepted, got %d", accepted)
		}

		if !buf.Full() {
			t.Errorf("expected buffer to be full")
		}

		accepted = buf.Append(make([]int16, 10))
		if accepted != 0 {
			t.Errorf("expected 0 accepted on full buffer, got %d", accepted)
		}

		if buf.Len() != 16 {
			t.Errorf("expected 16 samples, got %d", buf.Len())
		}
	})

	t.Run("truncation keeps the earliest samples", func(t *testing.T) {
		buf := New(16000, 1, time.Millisecond)

		first := make([]int16, 16)
		for i := range first {
			first[i] = int16(i + 1)
		}

		buf.Append(first)
		buf.Append([]int16{99, 99, 99})

		out := buf.AsIntBuffer()
		for i, want := range first {
			if out.Data[i] != int(want) {
				t.Errorf("sample %d: expected %d, got %d", i, want, out.Data[i])
			}
		}
	})
}

func TestBuffer_Duration(t *testing.T) {
	t.Run("duration follows sample rate and channel count", func(t *testing.T) {
		buf := New(16000, 1, time.Second)

		buf.Append(make([]int16, 8000))

		if got := buf.Duration(); got != 500*time.Millisecond {
			t.Errorf("expected 500ms, got %s", got)
		}
	})

	t.Run("stereo frames count once", func(t *testing.T) {
		buf := New(16000, 2, time.Second)

		buf.Append(make([]int16, 16000))

		if got := buf.Duration(); got != 500*time.Millisecond {
			t.Errorf("expected 500ms, got %s", got)
		}
	})
}

func TestBuffer_AsIntBuffer(t *testing.T) {
	t.Run("finalized buffer carries format and bit depth", func(t *testing.T) {
		buf := New(16000, 1, time.Second)
		buf.Append([]int16{1, -2, 3})

		out := buf.AsIntBuffer()

		if out.Format.SampleRate != 16000 || out.Format.NumChannels != 1 {
			t.Errorf("unexpected format: %+v", out.Format)
		}

		if out.SourceBitDepth != 16 {
			t.Errorf("expected bit depth 16, got %d", out.SourceBitDepth)
		}

		expected := []int{1, -2, 3}
		for i, want := range expected {
			if out.Data[i] != want {
				t.Errorf("sample %d: expected %d, got %d", i, want, out.Data[i])
			}
		}
	})
}
