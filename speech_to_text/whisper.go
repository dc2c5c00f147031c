package speech_to_text

import (
	"fmt"
	"io"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/go-audio/audio"

	"push-to-talk-typer/vad"
)

type whisperImpl struct {
	model         whisper.Model
	language      string
	energyGate    bool
	gateFrameSize int
}

type WhisperConfig struct {
	Model    whisper.Model
	Language string

	// EnergyGate skips inference entirely when the buffer carries no
	// speech-like spectral flux. GateFrameSize is the analysis frame.
	EnergyGate    bool
	GateFrameSize int
}

func NewWhisper(cfg *WhisperConfig) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	gateFrameSize := cfg.GateFrameSize
	if gateFrameSize <= 0 {
		gateFrameSize = 512
	}

	return &whisperImpl{
		model:         cfg.Model,
		language:      cfg.Language,
		energyGate:    cfg.EnergyGate,
		gateFrameSize: gateFrameSize,
	}, nil
}

func (stt *whisperImpl) Transcribe(buf *audio.IntBuffer) (string, error) {
	if buf == nil || len(buf.Data) == 0 {
		return "", ErrEmptyBuffer
	}

	if stt.energyGate && !vad.ContainsSpeech(buf.Data, stt.gateFrameSize) {
		return "", nil
	}

	context, err := stt.model.NewContext()
	if err != nil {
		return "", err
	}

	if stt.language != "" && stt.model.IsMultilingual() {
		if err := context.SetLanguage(stt.language); err != nil {
			return "", err
		}
	}

	var cb whisper.SegmentCallback

	if err := context.Process(normalize(buf), cb); err != nil {
		return "", err
	}

	segments, err := collectSegments(context)
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(segments))
	for _, segment := range segments {
		texts = append(texts, strings.TrimSpace(segment.Text))
	}

	return strings.TrimSpace(strings.Join(texts, " ")), nil
}

// collectSegments drains the context, dropping whisper's non-speech
// annotations (bracketed segments such as "(silence)" or "[BLANK_AUDIO]")
// and repeated hallucinated lines. Silence therefore comes out as no
// segments at all.
func collectSegments(context whisper.Context) ([]whisper.Segment, error) {
	seenText := make(map[string]bool)

	segments := make([]whisper.Segment, 0)

	for {
		segment, err := context.NextSegment()
		if err == io.EOF {
			return segments, nil
		} else if err != nil {
			return nil, err
		}

		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}

		if text[0] == '(' || text[0] == '[' ||
			text[len(text)-1] == ')' || text[len(text)-1] == ']' {
			continue
		}

		if seenText[text] {
			continue
		}
		seenText[text] = true

		segments = append(segments, segment)
	}
}
