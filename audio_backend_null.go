// audio_backend_null.go - Silent output driver for headless runs and tests

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
	"time"
)

// NullOutput discards samples but still pulls them at roughly real-time
// pace, so the engine clock advances the way it does against a sound card.
// Selected with -backend null; also what CI runs against.
type NullOutput struct {
	mutex      sync.Mutex
	eng        *SynthEngine
	sampleRate int
	started    bool
	stopCh     chan struct{}
	done       chan struct{}
}

func NewNullOutput(sampleRate int) *NullOutput {
	return &NullOutput{sampleRate: sampleRate}
}

func (o *NullOutput) SetEngine(eng *SynthEngine) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.eng = eng
}

func (o *NullOutput) Start() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.started || o.eng == nil {
		return
	}
	o.started = true
	o.stopCh = make(chan struct{})
	o.done = make(chan struct{})

	eng := o.eng
	stop := o.stopCh
	done := o.done
	chunk := o.sampleRate / 100 // 10ms of samples per tick

	go func() {
		defer close(done)
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				for i := 0; i < chunk; i++ {
					eng.ReadSample()
				}
			}
		}
	}()
}

func (o *NullOutput) Stop() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if !o.started {
		return
	}
	close(o.stopCh)
	<-o.done
	o.started = false
}

func (o *NullOutput) Close() {
	o.Stop()
}

func (o *NullOutput) IsStarted() bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.started
}
