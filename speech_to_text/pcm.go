package speech_to_text

import (
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

// normalize converts 16-bit samples to the [-1, 1) float32 range whisper
// expects.
func normalize(buf *audio.IntBuffer) []float32 {
	data := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		data[i] = float32(s) / 32768.0
	}

	return data
}

// encodeWAV renders the buffer as a WAV file on the given filesystem and
// returns its bytes. Used by adapters that ship audio over the wire.
func encodeWAV(fileSys afero.Fs, buf *audio.IntBuffer) ([]byte, error) {
	const name = "utterance.wav"

	file, err := fileSys.Create(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create wav file: %w", err)
	}

	encoder := wav.NewEncoder(file, buf.Format.SampleRate, buf.SourceBitDepth, buf.Format.NumChannels, 1)

	if err := encoder.Write(buf); err != nil {
		file.Close()

		return nil, fmt.Errorf("failed to encode wav: %w", err)
	}

	if err := encoder.Close(); err != nil {
		file.Close()

		return nil, fmt.Errorf("failed to finalize wav: %w", err)
	}

	if err := file.Close(); err != nil {
		return nil, err
	}

	return afero.ReadFile(fileSys, name)
}
