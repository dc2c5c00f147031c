package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"push-to-talk-typer/audio_capture"
	"push-to-talk-typer/config"
	"push-to-talk-typer/control_api"
	"push-to-talk-typer/hotkey_monitor"
	"push-to-talk-typer/logging"
	"push-to-talk-typer/mic_check"
	"push-to-talk-typer/notify"
	"push-to-talk-typer/push_to_talk"
	"push-to-talk-typer/speech_to_text"
	"push-to-talk-typer/text_typer"
)

func main() {
	configFlag := flag.String("config", "", "path to the config file")
	modelFlag := flag.String("m", "", "model file for whisper (overrides the config)")
	listMicsFlag := flag.Bool("list-mics", false, "list capture devices and exit")
	micTestFlag := flag.Bool("mic-test", false, "record a short sample to a wav file and exit")
	micTestSecsFlag := flag.Int("mic-test-seconds", 3, "length of the mic test recording")

	flag.Parse()

	// Missing .env is fine, the config file covers everything.
	_ = godotenv.Load()

	cfg, err := config.LoadWithFallback(*configFlag)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	if *modelFlag != "" {
		cfg.Transcription.ModelPath = *modelFlag
	}

	if *listMicsFlag {
		listMics()

		return
	}

	if *micTestFlag {
		micTest(cfg, *micTestSecsFlag)

		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("error in config: %v", err)
	}

	logger, err := logging.New(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		log.Fatalf("error creating logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", logging.Error(err))
		logger.Sync()

		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	engine, closeEngine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("error creating transcription engine: %w", err)
	}
	defer closeEngine()

	capture, err := audio_capture.New(&audio_capture.Config{
		DeviceIndex: cfg.Audio.DeviceIndex,
		SampleRate:  cfg.Audio.SampleRate,
		Channels:    cfg.Audio.Channels,
		FrameSize:   cfg.Audio.FrameSize,
		MaxDuration: cfg.MaxCaptureDuration(),
	})
	if err != nil {
		return fmt.Errorf("error creating audio capture: %w", err)
	}
	defer capture.Close()

	typer, err := text_typer.New(&text_typer.Config{
		Mode:             cfg.Typing.Mode,
		RestoreClipboard: cfg.Typing.RestoreClipboard,
		InterKeyDelay:    time.Duration(cfg.Typing.InterKeyDelayMs) * time.Millisecond,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("error creating text typer: %w", err)
	}

	notifier := notify.New(cfg.Notifications.Enabled, logger)

	var hub *control_api.Hub
	if cfg.Server.Enabled {
		hub = control_api.NewHub(logger)
	}

	ctrlCfg := &push_to_talk.Config{
		Capture:      capture,
		Engine:       engine,
		Typer:        typer,
		Notifier:     notifier,
		Logger:       logger,
		MinUtterance: cfg.MinUtteranceDuration(),
	}
	if hub != nil {
		ctrlCfg.Sink = hub
	}

	ctrl, err := push_to_talk.New(ctrlCfg)
	if err != nil {
		return fmt.Errorf("error creating controller: %w", err)
	}

	monitor, err := hotkey_monitor.New(&hotkey_monitor.Config{
		Key:       cfg.Hotkey.Key,
		ToggleKey: cfg.Hotkey.ToggleKey,
		OnPress:   ctrl.HandlePress,
		OnRelease: ctrl.HandleRelease,
		OnToggle:  ctrl.HandleToggle,
	})
	if err != nil {
		return fmt.Errorf("error creating hotkey monitor: %w", err)
	}

	if err := monitor.Start(); err != nil {
		return fmt.Errorf("error registering hotkeys: %w", err)
	}
	defer monitor.Stop()

	var server *control_api.Server
	if cfg.Server.Enabled {
		server, err = control_api.New(&control_api.Config{
			Controller: ctrl,
			Hub:        hub,
			APIKey:     cfg.Server.APIKey,
			Host:       cfg.Server.Host,
			Port:       cfg.Server.Port,
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("error creating control API: %w", err)
		}

		go func() {
			if err := server.Start(); err != nil {
				logger.Error("control API failed", logging.Error(err))
			}
		}()
	}

	logger.Info("ready",
		logging.String("hotkey", cfg.Hotkey.Key),
		logging.String("engine", cfg.Transcription.Engine),
		logging.String("typing", cfg.Typing.Mode))

	err = ctrl.Run()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
			logger.Warn("control API shutdown failed", logging.Error(shutdownErr))
		}
	}

	return err
}

// newEngine builds the configured speech-to-text engine and a cleanup
// function for whatever resources it holds.
func newEngine(cfg *config.Config) (speech_to_text.Interface, func(), error) {
	switch cfg.Transcription.Engine {
	case "whisper":
		model, err := whisper.New(cfg.Transcription.ModelPath)
		if err != nil {
			return nil, nil, fmt.Errorf("error loading model %s: %w", cfg.Transcription.ModelPath, err)
		}

		engine, err := speech_to_text.NewWhisper(&speech_to_text.WhisperConfig{
			Model:      model,
			Language:   cfg.Transcription.Language,
			EnergyGate: cfg.Transcription.EnergyGate,
		})
		if err != nil {
			model.Close()

			return nil, nil, err
		}

		return engine, func() { model.Close() }, nil
	case "openai":
		engine, err := speech_to_text.NewOpenAI(&speech_to_text.OpenAIConfig{
			APIKey:   cfg.Transcription.OpenAIAPIKey,
			BaseURL:  cfg.Transcription.OpenAIBaseURL,
			Model:    cfg.Transcription.OpenAIModel,
			Language: cfg.Transcription.Language,
		})
		if err != nil {
			return nil, nil, err
		}

		return engine, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown transcription engine %q", cfg.Transcription.Engine)
	}
}

func listMics() {
	devices, err := mic_check.ListDevices()
	if err != nil {
		log.Fatalf("error listing devices: %v", err)
	}

	if len(devices) == 0 {
		fmt.Println("no capture devices found")

		return
	}

	for _, d := range devices {
		fmt.Printf("%3d  %-40s  channels=%d  default_rate=%.0f\n",
			d.Index, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
	}
}

func micTest(cfg *config.Config, seconds int) {
	fmt.Printf("recording %d seconds from device %d...\n", seconds, cfg.Audio.DeviceIndex)

	name, err := mic_check.RecordSample(
		afero.NewOsFs(),
		cfg.Audio.DeviceIndex,
		cfg.Audio.SampleRate,
		cfg.Audio.Channels,
		time.Duration(seconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("error recording sample: %v", err)
	}

	info, err := mic_check.InspectSample(afero.NewOsFs(), name)
	if err != nil {
		log.Fatalf("error inspecting sample: %v", err)
	}

	fmt.Printf("wrote %s: %s, %d frames, %d Hz, %d channel(s)\n",
		name, info.Duration.Round(time.Millisecond), info.Frames, info.SampleRate, info.Channels)
}
