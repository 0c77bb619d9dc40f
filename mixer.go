// mixer.go - Channel and master volume mixing onto live bus nodes

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

import "sync"

// MIXER_RAMP_TIME is the fixed gain ramp applied to live nodes on volume
// and mute changes, short enough to be inaudible as a fade but long enough
// to avoid clicks.
const MIXER_RAMP_TIME = 0.05

// ChannelMixer maps channel volume/mute state onto live bus gain nodes and
// owns the master bus. The master bus node is created lazily once the
// backend is active and lives until Shutdown; channel buses live for one
// play() generation.
type ChannelMixer struct {
	mu           sync.Mutex
	backend      SynthBackend
	master       GainNode
	masterVolume float64
	buses        map[uint64]GainNode
}

func NewChannelMixer(backend SynthBackend) *ChannelMixer {
	return &ChannelMixer{
		backend:      backend,
		masterVolume: 1.0,
		buses:        make(map[uint64]GainNode),
	}
}

// EnsureMaster returns the master bus node, creating it on first use.
// Fails with ErrBackendNotReady when the backend output is not active.
func (m *ChannelMixer) EnsureMaster() (GainNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.backend.Active() {
		return nil, ErrBackendNotReady
	}
	if m.master == nil {
		m.master = m.backend.NewGain(m.masterVolume)
		m.master.Connect(m.backend.Destination())
	}
	return m.master, nil
}

// channelGain maps volume/mute state to the linear gain of a bus node.
func channelGain(volume float64, muted bool) float64 {
	if muted {
		return 0
	}
	return DbToGain(VolumeToDb(clampFloat(sanitizeNumber(volume), 0, 1)))
}

// OpenChannelBus creates the output bus node for one channel and connects
// it to the master bus. The caller must hold a master from EnsureMaster
// first. Buses are registered so later volume changes can ramp them live.
func (m *ChannelMixer) OpenChannelBus(channelID uint64, volume float64, muted bool) GainNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	bus := m.backend.NewGain(channelGain(volume, muted))
	if m.master != nil {
		bus.Connect(m.master)
	}
	m.buses[channelID] = bus
	return bus
}

// ReleaseChannelBuses disconnects and forgets every live bus. Called from
// the scheduler's drain path only.
func (m *ChannelMixer) ReleaseChannelBuses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, bus := range m.buses {
		bus.Disconnect()
		delete(m.buses, id)
	}
}

// UpdateChannelGain ramps a channel's live bus (if playback is in progress)
// to match new volume/mute state. With no live bus this is a no-op: the
// stored channel state alone decides the gain of the next play().
func (m *ChannelMixer) UpdateChannelGain(channelID uint64, volume float64, muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bus, ok := m.buses[channelID]
	if !ok {
		return
	}
	m.rampGain(bus, channelGain(volume, muted))
}

// SetMasterVolume stores the master volume and ramps the live master bus.
func (m *ChannelMixer) SetMasterVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clampFloat(sanitizeNumber(v), 0, 1)
	if m.master != nil {
		m.rampGain(m.master, m.masterVolume)
	}
}

func (m *ChannelMixer) MasterVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.masterVolume
}

// Shutdown releases the master bus. Buses must already be drained.
func (m *ChannelMixer) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.master != nil {
		m.master.Disconnect()
		m.master = nil
	}
}

// rampGain replaces any pending automation with a short linear ramp from
// the parameter's current value to the target, avoiding audible clicks.
func (m *ChannelMixer) rampGain(node GainNode, target float64) {
	now := m.backend.Now()
	p := node.Gain()
	current := p.Value()
	p.CancelScheduledValues(now)
	p.SetValueAtTime(current, now)
	p.LinearRampToValueAtTime(target, now+MIXER_RAMP_TIME)
}
