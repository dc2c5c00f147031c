package hotkey_monitor

// Interface delivers press/release edges of the configured keys. Callbacks
// run on the monitor's own goroutine and must not block.
type Interface interface {
	Start() error
	Stop()
}
