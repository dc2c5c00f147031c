package speech_to_text

import (
	"bytes"
	"testing"

	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

func TestEncodeWAV(t *testing.T) {
	t.Run("encoded buffer decodes back with the same format and samples", func(t *testing.T) {
		buf := monoBuffer([]int{0, 100, -100, 2000, -2000})

		wavBytes, err := encodeWAV(afero.NewMemMapFs(), buf)
		if err != nil {
			t.Fatalf("encodeWAV: %v", err)
		}

		decoder := wav.NewDecoder(bytes.NewReader(wavBytes))
		if !decoder.IsValidFile() {
			t.Fatalf("encoded bytes are not a valid wav file")
		}

		decoded, err := decoder.FullPCMBuffer()
		if err != nil {
			t.Fatalf("FullPCMBuffer: %v", err)
		}

		if decoded.Format.SampleRate != 16000 || decoded.Format.NumChannels != 1 {
			t.Errorf("unexpected format: %+v", decoded.Format)
		}

		if len(decoded.Data) != len(buf.Data) {
			t.Fatalf("expected %d samples, got %d", len(buf.Data), len(decoded.Data))
		}

		for i, want := range buf.Data {
			if decoded.Data[i] != want {
				t.Errorf("sample %d: expected %d, got %d", i, want, decoded.Data[i])
			}
		}
	})
}
