// synth_backend.go - Synthesis backend capability contract and selection

/*
▄▄▄█████▓ ▄▄▄       ▄████▄  ▄▄▄█████▓ ▒█████   ███▄    █ ▓█████
▓  ██▒ ▓▒▒████▄    ▒██▀ ▀█  ▓  ██▒ ▓▒▒██▒  ██▒ ██ ▀█   █ ▓█   ▀
▒ ▓██░ ▒░▒██  ▀█▄  ▒▓█    ▄ ▒ ▓██░ ▒░▒██░  ██▒▓██  ▀█ ██▒▒███
░ ▓██▓ ░ ░██▄▄▄▄██ ▒▓▓▄ ▄██▒░ ▓██▓ ░ ▒██   ██░▓██▒  ▐▌██▒▒▓█  ▄
  ▒██▒ ░  ▓█   ▓██▒▒ ▓███▀ ░  ▒██▒ ░ ░ ████▓▒░▒██░   ▓██░░▒████▒
  ▒ ░░    ▒▒   ▓▒█░░ ░▒ ▒  ░  ▒ ░░   ░ ▒░▒░▒░ ░ ▒░   ▒ ▒ ░░ ▒░ ░
    ░      ▒   ▒▒ ░  ░  ▒       ░      ░ ▒ ▒░ ░ ░░   ░ ▒░ ░ ░  ░
  ░        ░   ▒   ░          ░      ░ ░ ░ ▒     ░   ░ ░    ░
                ░  ░░ ░                   ░ ░           ░    ░  ░

(c) 2025 - 2026 Tactone Project
https://github.com/tactone/tactone
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"math"
)

const (
	AUDIO_BACKEND_OTO = iota
	AUDIO_BACKEND_NULL
)

const SAMPLE_RATE = 44100

// AudioParam is a schedulable scalar parameter. Values may be scheduled at
// absolute instants in the future relative to the backend clock; a linear
// ramp interpolates from the previous scheduled point.
type AudioParam interface {
	SetValueAtTime(value, at float64)
	LinearRampToValueAtTime(value, at float64)
	CancelScheduledValues(from float64)
	Value() float64
}

// AudioNode is anything that can be wired into the synthesis graph.
// Connect replaces the node's current downstream target.
type AudioNode interface {
	Connect(dst AudioNode)
	Disconnect()
}

// OscillatorNode produces a periodic waveform between its scheduled start
// and stop instants. An oscillator is single-use: once stopped it never
// produces signal again.
type OscillatorNode interface {
	AudioNode
	Start(at float64)
	Stop(at float64)
}

// GainNode scales the sum of its inputs by its gain parameter.
type GainNode interface {
	AudioNode
	Gain() AudioParam
}

// SynthBackend is the external synthesis engine the scheduler drives. Its
// clock is the source of truth for timing: instructions take effect at
// future absolute instants on that clock, so issuance is non-blocking.
type SynthBackend interface {
	// Activate brings the output path up. It must be called before any
	// node is audible and may fail if no output device is available.
	Activate() error
	Active() bool
	// Now returns the current absolute backend clock time in seconds.
	Now() float64
	NewOscillator(wave Waveform, frequency float64) OscillatorNode
	NewGain(value float64) GainNode
	// Destination is the final mix point all signal must reach.
	Destination() AudioNode
	Close()
}

// AudioOutput is the physical (or null) output driver a SynthEngine renders
// into. The driver pulls samples; the engine side is passive.
type AudioOutput interface {
	SetEngine(eng *SynthEngine)
	Start()
	Stop()
	Close()
	IsStarted() bool
}

// NewSynthBackend builds a synthesis engine wired to the selected output
// driver.
func NewSynthBackend(backend int) (SynthBackend, error) {
	eng := NewSynthEngine(SAMPLE_RATE)
	switch backend {
	case AUDIO_BACKEND_OTO:
		out, err := NewOtoOutput(SAMPLE_RATE)
		if err != nil {
			return nil, err
		}
		eng.AttachOutput(out)
	case AUDIO_BACKEND_NULL:
		eng.AttachOutput(NewNullOutput(SAMPLE_RATE))
	default:
		return nil, fmt.Errorf("unknown audio backend: %d", backend)
	}
	return eng, nil
}

// VolumeToDb converts a [0,1] channel volume to decibels. Zero (and mute)
// is negative infinity.
func VolumeToDb(v float64) float64 {
	if !(v > 0) {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

// DbToGain converts decibels to a linear gain factor.
func DbToGain(db float64) float64 {
	if math.IsInf(db, -1) {
		return 0
	}
	return math.Pow(10, db/20)
}

// GainToDb converts a linear gain factor to decibels.
func GainToDb(g float64) float64 {
	if !(g > 0) {
		return math.Inf(-1)
	}
	return 20 * math.Log10(g)
}
