package mic_check

import (
	"fmt"
	"time"

	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/afero"
	"github.com/zenwerk/go-wave"
)

// Device describes one capture-capable device. Index is the portaudio
// device index usable as audio.device_index in the config.
type Device struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
}

// ListDevices enumerates the input devices the audio backend can see.
func ListDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize audio backend: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	inputs := make([]Device, 0, len(devices))

	for i, d := range devices {
		if d.MaxInputChannels <= 0 {
			continue
		}

		inputs = append(inputs, Device{
			Index:             i,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		})
	}

	return inputs, nil
}

// RecordSample captures a short clip from the chosen device and writes it
// as a WAV file for human inspection. Returns the generated filename.
// These are throwaway diagnostic artifacts, not part of normal operation.
func RecordSample(fileSys afero.Fs, deviceIndex, sampleRate, channels int, d time.Duration) (string, error) {
	if err := portaudio.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize audio backend: %w", err)
	}
	defer portaudio.Terminate()

	in := make([]int16, 8196)

	var (
		stream *portaudio.Stream
		err    error
	)

	if deviceIndex < 0 {
		stream, err = portaudio.OpenDefaultStream(channels, 0, float64(sampleRate), len(in), in)
	} else {
		var devices []*portaudio.DeviceInfo

		devices, err = portaudio.Devices()
		if err == nil {
			if deviceIndex >= len(devices) {
				return "", fmt.Errorf("device index %d out of range (%d devices)", deviceIndex, len(devices))
			}

			device := devices[deviceIndex]

			stream, err = portaudio.OpenStream(portaudio.StreamParameters{
				Input: portaudio.StreamDeviceParameters{
					Device:   device,
					Channels: channels,
					Latency:  device.DefaultLowInputLatency,
				},
				SampleRate:      float64(sampleRate),
				FramesPerBuffer: len(in),
			}, in)
		}
	}

	if err != nil {
		return "", fmt.Errorf("failed to open capture stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return "", fmt.Errorf("failed to start capture stream: %w", err)
	}
	defer stream.Stop()

	filename := "mic-check-" + uuid.NewString() + ".wav"

	waveFile, err := fileSys.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filename, err)
	}

	waveWriter, err := wave.NewWriter(wave.WriterParam{
		Out:           waveFile,
		Channel:       channels,
		SampleRate:    sampleRate,
		BitsPerSample: 16,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create wav writer: %w", err)
	}

	wanted := int(d.Seconds() * float64(sampleRate) * float64(channels))

	for written := 0; written < wanted; written += len(in) {
		if err := stream.Read(); err != nil {
			waveWriter.Close()

			return "", fmt.Errorf("capture failed mid-sample: %w", err)
		}

		if _, err := waveWriter.WriteSample16(in); err != nil {
			waveWriter.Close()

			return "", fmt.Errorf("failed to write samples: %w", err)
		}
	}

	if err := waveWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", filename, err)
	}

	return filename, nil
}

// SampleInfo summarizes a recorded sample so the microphone can be judged
// working without opening the file in an editor.
type SampleInfo struct {
	Duration   time.Duration
	Frames     int
	SampleRate int
	Channels   int
}

// InspectSample decodes a recorded sample and reports its shape.
func InspectSample(fileSys afero.Fs, name string) (SampleInfo, error) {
	file, err := fileSys.Open(name)
	if err != nil {
		return SampleInfo{}, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return SampleInfo{}, fmt.Errorf("%s is not a valid wav file", name)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return SampleInfo{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	duration, err := decoder.Duration()
	if err != nil {
		return SampleInfo{}, fmt.Errorf("failed to read duration of %s: %w", name, err)
	}

	return SampleInfo{
		Duration:   duration,
		Frames:     len(buf.Data) / buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}
