// synth_engine.go - Scriptable synthesis engine: oscillator/gain node graph
// with absolute-time scheduled automation, rendered on a sample clock

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
	"math"
	"sync"
	"sync/atomic"
)

const (
	MAX_SAMPLE = 1.0
	MIN_SAMPLE = -1.0
)

// renderNode is the internal pull interface of the graph. render is called
// exactly once per node per sample, in tree order from the sink down.
type renderNode interface {
	render(t, dt float64) float64
}

// signalSink is implemented by nodes that accept upstream inputs.
type signalSink interface {
	addInput(n renderNode)
	removeInput(n renderNode)
}

// SynthEngine implements SynthBackend over a monotonic sample clock. The
// output driver pulls one sample at a time via ReadSample; the clock is the
// number of samples rendered so far. Graph mutations take the write lock,
// the render path takes the read lock, mirroring parameter-write versus
// sample-generation separation.
type SynthEngine struct {
	mu         sync.RWMutex
	sampleRate int
	cursor     atomic.Int64
	active     bool
	output     AudioOutput
	sink       *sinkNode
}

func NewSynthEngine(sampleRate int) *SynthEngine {
	return &SynthEngine{
		sampleRate: sampleRate,
		sink:       &sinkNode{},
	}
}

// AttachOutput wires an output driver to this engine. The driver starts
// pulling samples only after Activate.
func (e *SynthEngine) AttachOutput(out AudioOutput) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out.SetEngine(e)
	e.output = out
}

func (e *SynthEngine) Activate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		return nil
	}
	if e.output == nil {
		return ErrBackendNotReady
	}
	e.output.Start()
	e.active = true
	return nil
}

func (e *SynthEngine) Active() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

func (e *SynthEngine) Now() float64 {
	return float64(e.cursor.Load()) / float64(e.sampleRate)
}

func (e *SynthEngine) SampleRate() int {
	return e.sampleRate
}

func (e *SynthEngine) NewOscillator(wave Waveform, frequency float64) OscillatorNode {
	return &oscNode{eng: e, wave: wave, freq: math.Max(0, sanitizeNumber(frequency))}
}

func (e *SynthEngine) NewGain(value float64) GainNode {
	return &gainNode{eng: e, gain: &automation{eng: e, initial: sanitizeNumber(value)}}
}

func (e *SynthEngine) Destination() AudioNode {
	return e.sink
}

// Close deactivates the engine and shuts the output driver down. The driver
// is stopped outside the engine lock: its render goroutine may be blocked in
// ReadSample waiting for that same lock, and Stop waits for the goroutine to
// exit, so stopping under the lock would deadlock.
func (e *SynthEngine) Close() {
	e.mu.Lock()
	out := e.output
	e.active = false
	e.mu.Unlock()
	if out != nil {
		out.Stop()
		out.Close()
	}
}

// ReadSample renders the next output sample and advances the clock. Called
// by exactly one output driver goroutine.
func (e *SynthEngine) ReadSample() float32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	dt := 1.0 / float64(e.sampleRate)
	t := float64(e.cursor.Load()) * dt
	s := e.sink.render(t, dt)
	e.cursor.Add(1)
	if s > MAX_SAMPLE {
		s = MAX_SAMPLE
	} else if s < MIN_SAMPLE {
		s = MIN_SAMPLE
	}
	return float32(s)
}

// ----- automation -----

type automationEvent struct {
	time  float64
	value float64
	ramp  bool // linear ramp from the previous point; otherwise a step
}

// automation is the scheduled value curve behind a gain parameter. Events
// are kept sorted by time; equal timestamps keep insertion order so the
// later instruction wins.
type automation struct {
	eng     *SynthEngine
	mu      sync.Mutex
	initial float64
	events  []automationEvent
}

func (a *automation) insert(ev automationEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := len(a.events)
	for i > 0 && a.events[i-1].time > ev.time {
		i--
	}
	a.events = append(a.events, automationEvent{})
	copy(a.events[i+1:], a.events[i:])
	a.events[i] = ev
}

func (a *automation) SetValueAtTime(value, at float64) {
	a.insert(automationEvent{time: at, value: sanitizeNumber(value)})
}

func (a *automation) LinearRampToValueAtTime(value, at float64) {
	a.insert(automationEvent{time: at, value: sanitizeNumber(value), ramp: true})
}

func (a *automation) CancelScheduledValues(from float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.events[:0]
	for _, ev := range a.events {
		if ev.time < from {
			kept = append(kept, ev)
		}
	}
	a.events = kept
}

func (a *automation) Value() float64 {
	return a.valueAt(a.eng.Now())
}

// valueAt evaluates the curve: hold the initial value before the first
// event, interpolate linearly inside a ramp segment, hold the last passed
// value otherwise.
func (a *automation) valueAt(t float64) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	prevTime := 0.0
	prevValue := a.initial
	for _, ev := range a.events {
		if ev.time > t {
			if ev.ramp {
				span := ev.time - prevTime
				if span <= 0 {
					return ev.value
				}
				frac := (t - prevTime) / span
				if frac < 0 {
					frac = 0
				}
				return prevValue + (ev.value-prevValue)*frac
			}
			return prevValue
		}
		prevTime = ev.time
		prevValue = ev.value
	}
	return prevValue
}

// ----- oscillator node -----

type oscNode struct {
	eng     *SynthEngine
	wave    Waveform
	freq    float64
	phase   float64
	startAt float64
	stopAt  float64
	started bool
	stopped bool
	dest    signalSink
}

func (o *oscNode) Connect(dst AudioNode) {
	sink, ok := dst.(signalSink)
	if !ok {
		return
	}
	o.eng.mu.Lock()
	defer o.eng.mu.Unlock()
	if o.dest != nil {
		o.dest.removeInput(o)
	}
	sink.addInput(o)
	o.dest = sink
}

func (o *oscNode) Disconnect() {
	o.eng.mu.Lock()
	defer o.eng.mu.Unlock()
	if o.dest != nil {
		o.dest.removeInput(o)
		o.dest = nil
	}
}

func (o *oscNode) Start(at float64) {
	o.eng.mu.Lock()
	defer o.eng.mu.Unlock()
	if o.started {
		return
	}
	o.started = true
	o.startAt = at
}

// Stop schedules (or forces, when at is the current time or earlier) the end
// of the oscillator's window. A later Stop overrides an earlier one, which
// is how immediate cancellation preempts a scheduled natural end.
func (o *oscNode) Stop(at float64) {
	o.eng.mu.Lock()
	defer o.eng.mu.Unlock()
	o.stopped = true
	o.stopAt = at
}

func (o *oscNode) render(t, dt float64) float64 {
	if !o.started || t < o.startAt {
		return 0
	}
	if o.stopped && t >= o.stopAt {
		return 0
	}
	if o.freq <= 0 {
		return 0
	}
	o.phase += o.freq * dt
	o.phase -= math.Floor(o.phase)
	switch o.wave {
	case WAVE_SINE:
		return math.Sin(2 * math.Pi * o.phase)
	case WAVE_TRIANGLE:
		return 2*math.Abs(2*o.phase-1) - 1
	case WAVE_SQUARE:
		if o.phase < 0.5 {
			return 1
		}
		return -1
	case WAVE_SAWTOOTH:
		return 2*o.phase - 1
	}
	return 0
}

// ----- gain node -----

type gainNode struct {
	eng    *SynthEngine
	gain   *automation
	inputs []renderNode
	dest   signalSink
}

func (g *gainNode) Gain() AudioParam {
	return g.gain
}

func (g *gainNode) Connect(dst AudioNode) {
	sink, ok := dst.(signalSink)
	if !ok {
		return
	}
	g.eng.mu.Lock()
	defer g.eng.mu.Unlock()
	if g.dest != nil {
		g.dest.removeInput(g)
	}
	sink.addInput(g)
	g.dest = sink
}

func (g *gainNode) Disconnect() {
	g.eng.mu.Lock()
	defer g.eng.mu.Unlock()
	if g.dest != nil {
		g.dest.removeInput(g)
		g.dest = nil
	}
}

func (g *gainNode) addInput(n renderNode) {
	g.inputs = append(g.inputs, n)
}

func (g *gainNode) removeInput(n renderNode) {
	for i, in := range g.inputs {
		if in == n {
			g.inputs = append(g.inputs[:i], g.inputs[i+1:]...)
			return
		}
	}
}

func (g *gainNode) render(t, dt float64) float64 {
	sum := 0.0
	for _, in := range g.inputs {
		sum += in.render(t, dt)
	}
	return sum * g.gain.valueAt(t)
}

// ----- destination sink -----

type sinkNode struct {
	inputs []renderNode
}

func (s *sinkNode) Connect(dst AudioNode) {}
func (s *sinkNode) Disconnect()           {}

func (s *sinkNode) addInput(n renderNode) {
	s.inputs = append(s.inputs, n)
}

func (s *sinkNode) removeInput(n renderNode) {
	for i, in := range s.inputs {
		if in == n {
			s.inputs = append(s.inputs[:i], s.inputs[i+1:]...)
			return
		}
	}
}

func (s *sinkNode) render(t, dt float64) float64 {
	sum := 0.0
	for _, in := range s.inputs {
		sum += in.render(t, dt)
	}
	return sum
}
