// audio_backend_oto.go - OTO v3 audio output driver

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
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

type OtoOutput struct {
	ctx       *oto.Context
	player    *oto.Player
	eng       atomic.Pointer[SynthEngine] // Atomic for lock-free Read()
	sampleBuf []float32                   // Pre-allocated sample buffer
	started   bool
	mutex     sync.Mutex // Only for setup/control operations
}

func NewOtoOutput(sampleRate int) (*OtoOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoOutput{
		ctx:     ctx,
		started: false,
	}, nil
}

func (o *OtoOutput) SetEngine(eng *SynthEngine) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.eng.Store(eng)
	o.player = o.ctx.NewPlayer(o)
	// Pre-allocate for typical oto pull sizes (4096 bytes = 1024 float32 samples)
	o.sampleBuf = make([]float32, 4096)
}

func (o *OtoOutput) Read(p []byte) (n int, err error) {
	// Load engine pointer atomically - no lock needed for the hot path
	eng := o.eng.Load()
	if eng == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	numSamples := len(p) / 4

	// Ensure our pre-allocated buffer is large enough
	// This should rarely happen after initial SetEngine
	if len(o.sampleBuf) < numSamples {
		o.sampleBuf = make([]float32, numSamples)
	}
	samples := o.sampleBuf[:numSamples]

	for i := 0; i < numSamples; i++ {
		samples[i] = eng.ReadSample()
	}

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

func (o *OtoOutput) Start() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !o.started && o.player != nil {
		o.player.Play()
		o.started = true
	}
}

func (o *OtoOutput) Stop() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.started && o.player != nil {
		o.player.Pause()
		o.started = false
	}
}

func (o *OtoOutput) Close() {
	o.Stop()
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
}

func (o *OtoOutput) IsStarted() bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.started
}
