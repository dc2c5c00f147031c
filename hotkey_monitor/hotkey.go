package hotkey_monitor

import (
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

type monitorImpl struct {
	key       *hotkey.Hotkey
	toggle    *hotkey.Hotkey
	onPress   func()
	onRelease func()
	onToggle  func()
	done      chan struct{}
}

type Config struct {
	Key       string // push-to-talk key name, e.g. "f12"
	ToggleKey string // optional toggle key name, "" disables
	OnPress   func()
	OnRelease func()
	OnToggle  func()
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.OnPress == nil || cfg.OnRelease == nil {
		return nil, fmt.Errorf("press/release callbacks are nil")
	}

	key, err := parseKey(cfg.Key)
	if err != nil {
		return nil, err
	}

	m := &monitorImpl{
		key:       hotkey.New(nil, key),
		onPress:   cfg.OnPress,
		onRelease: cfg.OnRelease,
		onToggle:  cfg.OnToggle,
		done:      make(chan struct{}),
	}

	if cfg.ToggleKey != "" {
		toggleKey, err := parseKey(cfg.ToggleKey)
		if err != nil {
			return nil, err
		}

		m.toggle = hotkey.New(nil, toggleKey)
	}

	return m, nil
}

// Start registers the global hotkeys and begins delivering edges. A
// registration failure (no input-hook permission, key grabbed by another
// program) is returned so startup can refuse to continue.
func (m *monitorImpl) Start() error {
	if err := m.key.Register(); err != nil {
		return fmt.Errorf("failed to register push-to-talk key: %w", err)
	}

	if m.toggle != nil {
		if err := m.toggle.Register(); err != nil {
			m.key.Unregister()

			return fmt.Errorf("failed to register toggle key: %w", err)
		}
	}

	go m.listen()

	return nil
}

func (m *monitorImpl) Stop() {
	close(m.done)

	m.key.Unregister()

	if m.toggle != nil {
		m.toggle.Unregister()
	}
}

func (m *monitorImpl) listen() {
	// A nil toggle leaves toggleDown nil, which never fires in the select.
	var toggleDown <-chan hotkey.Event
	if m.toggle != nil {
		toggleDown = m.toggle.Keydown()
	}

	for {
		select {
		case <-m.key.Keydown():
			m.onPress()
		case <-m.key.Keyup():
			m.onRelease()
		case <-toggleDown:
			if m.onToggle != nil {
				m.onToggle()
			}
		case <-m.done:
			return
		}
	}
}

var keysByName = map[string]hotkey.Key{
	"space": hotkey.KeySpace,
	"f1":    hotkey.KeyF1,
	"f2":    hotkey.KeyF2,
	"f3":    hotkey.KeyF3,
	"f4":    hotkey.KeyF4,
	"f5":    hotkey.KeyF5,
	"f6":    hotkey.KeyF6,
	"f7":    hotkey.KeyF7,
	"f8":    hotkey.KeyF8,
	"f9":    hotkey.KeyF9,
	"f10":   hotkey.KeyF10,
	"f11":   hotkey.KeyF11,
	"f12":   hotkey.KeyF12,
	"f13":   hotkey.KeyF13,
	"f14":   hotkey.KeyF14,
	"f15":   hotkey.KeyF15,
	"f16":   hotkey.KeyF16,
	"f17":   hotkey.KeyF17,
	"f18":   hotkey.KeyF18,
	"f19":   hotkey.KeyF19,
	"f20":   hotkey.KeyF20,
	"a":     hotkey.KeyA,
	"b":     hotkey.KeyB,
	"c":     hotkey.KeyC,
	"d":     hotkey.KeyD,
	"e":     hotkey.KeyE,
	"f":     hotkey.KeyF,
	"g":     hotkey.KeyG,
	"h":     hotkey.KeyH,
	"i":     hotkey.KeyI,
	"j":     hotkey.KeyJ,
	"k":     hotkey.KeyK,
	"l":     hotkey.KeyL,
	"m":     hotkey.KeyM,
	"n":     hotkey.KeyN,
	"o":     hotkey.KeyO,
	"p":     hotkey.KeyP,
	"q":     hotkey.KeyQ,
	"r":     hotkey.KeyR,
	"s":     hotkey.KeyS,
	"t":     hotkey.KeyT,
	"u":     hotkey.KeyU,
	"v":     hotkey.KeyV,
	"w":     hotkey.KeyW,
	"x":     hotkey.KeyX,
	"y":     hotkey.KeyY,
	"z":     hotkey.KeyZ,
	"0":     hotkey.Key0,
	"1":     hotkey.Key1,
	"2":     hotkey.Key2,
	"3":     hotkey.Key3,
	"4":     hotkey.Key4,
	"5":     hotkey.Key5,
	"6":     hotkey.Key6,
	"7":     hotkey.Key7,
	"8":     hotkey.Key8,
	"9":     hotkey.Key9,
}

func parseKey(name string) (hotkey.Key, error) {
	key, ok := keysByName[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown hotkey %q", name)
	}

	return key, nil
}
