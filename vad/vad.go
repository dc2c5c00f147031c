package vad

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// fluxJumpRatio is the spectral flux jump that separates speech onset from
// background noise. A frame whose flux exceeds the previous frame's by this
// factor counts as speech.
const fluxJumpRatio = 1.75

// speechFluxFloor is an absolute flux (in normalized sample units) above
// which a frame counts as speech outright. The relative jump test alone
// cannot fire when the preceding frames are digital silence.
const speechFluxFloor = 1.0

// VAD computes spectral flux over fixed-size frames of int16 samples.
type VAD struct {
	frameSize int
	prevMags  []float64
}

func New(frameSize int) *VAD {
	return &VAD{
		frameSize: frameSize,
	}
}

// Flux returns the positive spectral flux of one frame against the previous
// one. The first frame always returns 0.
func (v *VAD) Flux(samples []int16) float64 {
	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s) / 32768.0
	}

	spectrum := fft.FFTReal(input)

	mags := make([]float64, len(spectrum)/2)
	for i := range mags {
		mags[i] = cmplx.Abs(spectrum[i])
	}

	var flux float64

	if v.prevMags != nil && len(v.prevMags) == len(mags) {
		for i := range mags {
			if diff := mags[i] - v.prevMags[i]; diff > 0 {
				flux += diff
			}
		}
	}

	v.prevMags = mags

	return flux
}

// ContainsSpeech scans a finalized utterance for a speech-like flux jump.
// Used as a cheap gate so inference is not wasted on noise-only captures.
func ContainsSpeech(samples []int, frameSize int) bool {
	if frameSize <= 0 || len(samples) < frameSize*2 {
		return false
	}

	v := New(frameSize)

	frame := make([]int16, frameSize)

	var lastFlux float64

	for off := 0; off+frameSize <= len(samples); off += frameSize {
		for i := 0; i < frameSize; i++ {
			frame[i] = int16(samples[off+i])
		}

		flux := v.Flux(frame)

		if flux >= speechFluxFloor {
			return true
		}

		if lastFlux == 0 {
			lastFlux = flux
			continue
		}

		if flux >= lastFlux*fluxJumpRatio {
			return true
		}

		lastFlux = flux
	}

	return false
}
