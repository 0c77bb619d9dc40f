// scheduler.go - Playback scheduler: walks channel block stores and drives
// the synthesis backend with absolute-time start/stop/ramp instructions

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
	"sync"
	"time"
)

const (
	// START_DELAY is the fixed lead time between issuing instructions and
	// the first audible sample, absorbing scheduling jitter.
	START_DELAY = 0.1
	// SCHED_EPSILON pads the end-of-sequence timer past the last scheduled
	// instant so the final release always completes.
	SCHED_EPSILON = 0.05
)

type PlayState int

const (
	STATE_IDLE PlayState = iota
	STATE_SCHEDULED
	STATE_PLAYING
)

func (s PlayState) String() string {
	switch s {
	case STATE_IDLE:
		return "idle"
	case STATE_SCHEDULED:
		return "scheduled"
	case STATE_PLAYING:
		return "playing"
	}
	return "unknown"
}

// ChannelSource hands the scheduler a consistent snapshot of all channels.
type ChannelSource interface {
	Channels() []*Channel
}

// voice is the synthesis resources owned by one scheduled tone block:
// exactly one oscillator and one envelope gain node for the lifetime of
// its window.
type voice struct {
	osc OscillatorNode
	env GainNode
}

// PlaybackScheduler owns the play/stop/loop state machine. All mutation
// happens under one mutex; the end-of-sequence timer callback re-enters
// through the same lock and a generation counter, so a stale timer can
// never race a newer play() or stop().
type PlaybackScheduler struct {
	mu      sync.Mutex
	backend SynthBackend
	mixer   *ChannelMixer
	source  ChannelSource

	state         PlayState
	looping       bool
	generation    uint64
	endTimer      *time.Timer
	playbackStart float64
	stoppedAt     float64
	lastDuration  float64

	// arena holds every live voice of the current generation, keyed by
	// channel id. drained atomically by stop(); raw handles never escape.
	arena map[uint64][]voice
}

func NewPlaybackScheduler(backend SynthBackend, mixer *ChannelMixer, source ChannelSource) *PlaybackScheduler {
	return &PlaybackScheduler{
		backend: backend,
		mixer:   mixer,
		source:  source,
		arena:   make(map[uint64][]voice),
	}
}

// Play schedules the whole timeline against the backend clock and starts
// playback. If playback is already in progress it is fully stopped and
// drained first; two generations of nodes never overlap.
func (s *PlaybackScheduler) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked()
}

func (s *PlaybackScheduler) playLocked() error {
	if s.state != STATE_IDLE {
		s.stopLocked()
	}

	if err := s.backend.Activate(); err != nil {
		return fmt.Errorf("activate synthesis backend: %w", err)
	}
	if _, err := s.mixer.EnsureMaster(); err != nil {
		return err
	}

	s.state = STATE_SCHEDULED
	base := s.backend.Now() + START_DELAY

	maxOverall := 0.0
	for _, ch := range s.source.Channels() {
		dur := s.scheduleChannel(ch, base)
		if dur > maxOverall {
			maxOverall = dur
		}
	}

	if maxOverall <= 0 {
		// Nothing to play. Drop whatever buses were opened and go home.
		s.drainLocked()
		s.state = STATE_IDLE
		return nil
	}

	s.lastDuration = maxOverall
	s.playbackStart = s.backend.Now()
	s.stoppedAt = 0
	s.generation++
	gen := s.generation
	wait := maxOverall + START_DELAY + SCHED_EPSILON
	s.endTimer = time.AfterFunc(secondsToDuration(wait), func() {
		s.onSequenceEnd(gen)
	})
	s.state = STATE_PLAYING
	return nil
}

// scheduleChannel walks one channel's blocks with an absolute time cursor
// starting at base and returns the channel's total duration. Thermal
// channels and muted or empty audio channels contribute duration only; no
// synthesis instructions are issued for them.
func (s *PlaybackScheduler) scheduleChannel(ch *Channel, base float64) float64 {
	if ch.Kind != CHANNEL_AUDIO || ch.Muted || len(ch.Blocks) == 0 {
		return ch.TotalDuration()
	}

	bus := s.mixer.OpenChannelBus(ch.ID, ch.Volume, ch.Muted)
	cursor := base
	for _, b := range ch.Blocks {
		d := sanitizeDuration(b.Duration)
		if b.Kind != BLOCK_TONE || d <= 0 || !(sanitizeNumber(b.Frequency) > 0) {
			cursor += d
			continue
		}

		nb := NormalizeEnvelope(*b)
		start := cursor
		end := start + d
		attackEnd := start + nb.Attack
		decayEnd := attackEnd + nb.Decay
		releaseStart := start + d - nb.Release

		osc := s.backend.NewOscillator(nb.Waveform, nb.Frequency)
		env := s.backend.NewGain(0)
		osc.Connect(env)
		env.Connect(bus)

		g := env.Gain()
		if nb.Attack > 0 {
			g.SetValueAtTime(0, start)
			g.LinearRampToValueAtTime(1, attackEnd)
		} else {
			g.SetValueAtTime(1, start)
		}
		if nb.Decay > 0 {
			g.LinearRampToValueAtTime(nb.SustainLevel, decayEnd)
		} else {
			g.SetValueAtTime(nb.SustainLevel, decayEnd)
		}
		if releaseStart > decayEnd+envEpsilon {
			// Explicit hold point: without it a later ramp would
			// recalculate from decay's endpoint instead of sustaining.
			g.SetValueAtTime(nb.SustainLevel, releaseStart)
		}
		if nb.Release > 0 {
			g.LinearRampToValueAtTime(0, end)
		} else {
			g.SetValueAtTime(0, end)
		}

		osc.Start(start)
		osc.Stop(end)
		s.arena[ch.ID] = append(s.arena[ch.ID], voice{osc: osc, env: env})
		cursor += d
	}
	return cursor - base
}

// Stop cancels the end timer, silences and disposes every live node, and
// returns to idle. Safe to call from idle; always completes before a
// subsequent Play can issue instructions.
func (s *PlaybackScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *PlaybackScheduler) stopLocked() {
	if s.endTimer != nil {
		s.endTimer.Stop()
		s.endTimer = nil
	}
	s.drainLocked()
	s.stoppedAt = 0
	s.state = STATE_IDLE
}

// drainLocked disposes the whole voice arena and releases channel buses.
// Cancellation is immediate and total; there is no graceful fade-out.
func (s *PlaybackScheduler) drainLocked() {
	now := s.backend.Now()
	for id, voices := range s.arena {
		for _, v := range voices {
			v.env.Gain().CancelScheduledValues(0)
			v.osc.Stop(now)
			v.osc.Disconnect()
			v.env.Disconnect()
		}
		delete(s.arena, id)
	}
	s.mixer.ReleaseChannelBuses()
}

// onSequenceEnd fires once per generation when the timeline has run its
// course. Looping is a state transition back through playLocked, never
// recursion into a live generation.
func (s *PlaybackScheduler) onSequenceEnd(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != STATE_PLAYING {
		return
	}
	s.stopLocked()
	if s.looping {
		_ = s.playLocked()
	}
}

// CurrentTime is the playhead position: elapsed backend time since play
// while playing, the last stopped value (0 after Stop) otherwise. Intended
// to be polled once per display refresh.
func (s *PlaybackScheduler) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == STATE_PLAYING {
		return s.backend.Now() - s.playbackStart
	}
	return s.stoppedAt
}

func (s *PlaybackScheduler) State() PlayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *PlaybackScheduler) SetLooping(loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.looping = loop
}

func (s *PlaybackScheduler) Looping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.looping
}

// Duration reports the longest channel duration of the last scheduled
// generation.
func (s *PlaybackScheduler) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDuration
}

// Generation reports how many times a sequence has been scheduled. Loop
// restarts increment it.
func (s *PlaybackScheduler) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
