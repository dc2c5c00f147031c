package text_typer

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"

	"push-to-talk-typer/logging"
)

type Config struct {
	Mode             string // "paste" or "keys"
	RestoreClipboard bool
	InterKeyDelay    time.Duration
	Logger           *logging.Logger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard device: %w", err)
	}

	switch cfg.Mode {
	case "keys":
		return &keysImpl{
			kb:     kb,
			delay:  cfg.InterKeyDelay,
			logger: cfg.Logger.Named("text-typer"),
		}, nil
	case "paste":
		return &pasteImpl{
			kb:      kb,
			restore: cfg.RestoreClipboard,
			logger:  cfg.Logger.Named("text-typer"),
		}, nil
	default:
		return nil, fmt.Errorf("unknown typing mode %q", cfg.Mode)
	}
}

// keysImpl simulates one keystroke per character. Runes outside the US
// layout map are skipped.
type keysImpl struct {
	kb     keybd_event.KeyBonding
	delay  time.Duration
	logger *logging.Logger
}

func (ty *keysImpl) Type(text string) error {
	skipped := 0

	for _, r := range text {
		ks, ok := keystrokeFor(r)
		if !ok {
			skipped++
			continue
		}

		ty.kb.SetKeys(ks.code)
		ty.kb.HasSHIFT(ks.shift)

		if err := ty.kb.Launching(); err != nil {
			return fmt.Errorf("failed to send keystroke: %w", err)
		}

		if ty.delay > 0 {
			time.Sleep(ty.delay)
		}
	}

	if skipped > 0 {
		ty.logger.Warn("skipped characters outside the key map", logging.Int("skipped", skipped))
	}

	return nil
}

// pasteImpl writes the transcript to the clipboard and simulates Ctrl+V,
// optionally restoring whatever the clipboard held before. Exact for any
// text, at the cost of briefly clobbering the clipboard.
type pasteImpl struct {
	kb      keybd_event.KeyBonding
	restore bool
	logger  *logging.Logger
}

func (ty *pasteImpl) Type(text string) error {
	previous, err := clipboard.ReadAll()
	if err != nil {
		// An unreadable clipboard (e.g. it holds an image) just means
		// there is nothing to restore.
		previous = ""
	}

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}

	ty.kb.SetKeys(keybd_event.VK_V)
	ty.kb.HasCTRL(true)

	if err := ty.kb.Launching(); err != nil {
		return fmt.Errorf("failed to send paste keystroke: %w", err)
	}

	ty.kb.HasCTRL(false)

	if ty.restore {
		// Give the focused application a moment to consume the paste
		// before the clipboard changes under it.
		time.Sleep(150 * time.Millisecond)

		if err := clipboard.WriteAll(previous); err != nil {
			ty.logger.Warn("failed to restore clipboard", logging.Error(err))
		}
	}

	return nil
}
