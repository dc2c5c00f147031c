package speech_to_text

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-audio/audio"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/afero"
)

// openaiImpl ships the utterance as WAV to the hosted transcription API.
// Useful on machines too slow for local inference.
type openaiImpl struct {
	client   *openai.Client
	model    string
	language string
	fileSys  afero.Fs
}

type OpenAIConfig struct {
	APIKey   string
	BaseURL  string // optional, e.g. a proxy
	Model    string // e.g. "whisper-1"
	Language string
	FileSys  afero.Fs // defaults to an in-memory filesystem
}

func NewOpenAI(cfg *OpenAIConfig) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is empty")
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("model is empty")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	fileSys := cfg.FileSys
	if fileSys == nil {
		fileSys = afero.NewMemMapFs()
	}

	return &openaiImpl{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		language: cfg.Language,
		fileSys:  fileSys,
	}, nil
}

func (stt *openaiImpl) Transcribe(buf *audio.IntBuffer) (string, error) {
	if buf == nil || len(buf.Data) == 0 {
		return "", ErrEmptyBuffer
	}

	wavBytes, err := encodeWAV(stt.fileSys, buf)
	if err != nil {
		return "", err
	}

	resp, err := stt.client.CreateTranscription(context.Background(), openai.AudioRequest{
		Model:    stt.model,
		FilePath: "utterance.wav",
		Reader:   bytes.NewReader(wavBytes),
		Language: stt.language,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}
