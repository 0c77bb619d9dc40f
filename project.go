// project.go - Project facade: channel/block editing operations wired to the
// mixer and playback scheduler

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
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrBackendNotReady reports a synthesis operation attempted before the
	// backend output path was activated.
	ErrBackendNotReady = errors.New("synthesis backend not ready")
	// ErrActuatorUnavailable reports a thermal write with no connected
	// peripheral. Retryable once the link comes back.
	ErrActuatorUnavailable = errors.New("thermal actuator unavailable")
	// ErrUnknownCommand reports a thermal type/intensity combination with no
	// wire frame.
	ErrUnknownCommand = errors.New("unknown thermal command")
	// ErrLastChannel reports an attempt to delete the only channel.
	ErrLastChannel   = errors.New("cannot delete the last channel")
	ErrNoSuchChannel = errors.New("no such channel")
	ErrNoSuchBlock   = errors.New("no such block")
	// ErrChannelKind reports a block added to a channel of the wrong kind.
	ErrChannelKind = errors.New("block kind does not match channel kind")
)

// ToneParams are the user-supplied fields of a new tone block, before
// normalization.
type ToneParams struct {
	Duration     float64
	Waveform     Waveform
	Frequency    float64
	Attack       float64
	Decay        float64
	SustainLevel float64
	Release      float64
}

// BlockEdit is a partial update: nil fields are left alone. Editing the
// duration of a tone block rescales the envelope fields that are not set
// in the same edit, so the envelope keeps its shape.
type BlockEdit struct {
	Duration     *float64
	Waveform     *Waveform
	Frequency    *float64
	Attack       *float64
	Decay        *float64
	SustainLevel *float64
	Release      *float64
	ThermalType  *ThermalType
	Intensity    *ThermalIntensity
}

// Project owns the channels and hands consistent snapshots to the playback
// scheduler. Edit operations take p.mu; playback operations delegate to the
// scheduler WITHOUT holding p.mu, because the scheduler calls back into
// Channels() under its own lock (including from its end timer goroutine).
type Project struct {
	mu            sync.Mutex
	channels      []*Channel
	nextChannelID uint64
	nextBlockID   uint64

	backend   SynthBackend
	mixer     *ChannelMixer
	scheduler *PlaybackScheduler
}

// NewProject builds a project with one default audio channel, the way a
// fresh document opens with somewhere to put blocks.
func NewProject(backend SynthBackend) *Project {
	p := &Project{
		backend:       backend,
		nextChannelID: 1,
		nextBlockID:   1,
	}
	p.mixer = NewChannelMixer(backend)
	p.scheduler = NewPlaybackScheduler(backend, p.mixer, p)
	p.channels = []*Channel{{
		ID:     p.takeChannelID(),
		Name:   "Channel 1",
		Kind:   CHANNEL_AUDIO,
		Volume: 1.0,
	}}
	return p
}

func (p *Project) takeChannelID() uint64 {
	id := p.nextChannelID
	p.nextChannelID++
	return id
}

func (p *Project) takeBlockID() uint64 {
	id := p.nextBlockID
	p.nextBlockID++
	return id
}

// Channels returns deep copies of all channels in display order. This is
// the scheduler's snapshot source; the copies are free of aliasing so a
// concurrent edit can never race a scheduling walk.
func (p *Project) Channels() []*Channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Channel, len(p.channels))
	for i, ch := range p.channels {
		out[i] = ch.clone()
	}
	return out
}

func (p *Project) findChannel(id uint64) (*Channel, error) {
	for _, ch := range p.channels {
		if ch.ID == id {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrNoSuchChannel, id)
}

// AddChannel appends a channel of the given kind and returns its id.
func (p *Project) AddChannel(kind ChannelKind, name string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.takeChannelID()
	if name == "" {
		name = fmt.Sprintf("Channel %d", id)
	}
	p.channels = append(p.channels, &Channel{
		ID:     id,
		Name:   name,
		Kind:   kind,
		Volume: 1.0,
	})
	return id
}

// DeleteChannel removes a channel and everything on it. The last remaining
// channel cannot be deleted.
func (p *Project) DeleteChannel(id uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.channels) <= 1 {
		return ErrLastChannel
	}
	for i, ch := range p.channels {
		if ch.ID == id {
			p.channels = append(p.channels[:i], p.channels[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrNoSuchChannel, id)
}

// AddToneBlock appends a normalized tone block to an audio channel and
// returns the block id.
func (p *Project) AddToneBlock(channelID uint64, params ToneParams) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.findChannel(channelID)
	if err != nil {
		return 0, err
	}
	if ch.Kind != CHANNEL_AUDIO {
		return 0, fmt.Errorf("%w: tone on %s channel %d", ErrChannelKind, ch.Kind, ch.ID)
	}
	b := NormalizeEnvelope(Block{
		ID:           p.takeBlockID(),
		Kind:         BLOCK_TONE,
		Duration:     params.Duration,
		Waveform:     params.Waveform,
		Frequency:    sanitizeNumber(params.Frequency),
		Attack:       params.Attack,
		Decay:        params.Decay,
		SustainLevel: params.SustainLevel,
		Release:      params.Release,
	})
	ch.Blocks = append(ch.Blocks, &b)
	ch.Blocks = Relayout(ch.Blocks)
	return b.ID, nil
}

// AddSilenceBlock appends a silence block to an audio channel.
func (p *Project) AddSilenceBlock(channelID uint64, duration float64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.findChannel(channelID)
	if err != nil {
		return 0, err
	}
	if ch.Kind != CHANNEL_AUDIO {
		return 0, fmt.Errorf("%w: silence on %s channel %d", ErrChannelKind, ch.Kind, ch.ID)
	}
	b := &Block{
		ID:       p.takeBlockID(),
		Kind:     BLOCK_SILENCE,
		Duration: sanitizeDuration(duration),
	}
	ch.Blocks = append(ch.Blocks, b)
	ch.Blocks = Relayout(ch.Blocks)
	return b.ID, nil
}

// AddThermalBlock appends a thermal block to a thermal channel. The
// type/intensity combination is validated against the command table up
// front so an unplayable block never reaches the timeline.
func (p *Project) AddThermalBlock(channelID uint64, duration float64, kind ThermalType, intensity ThermalIntensity) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.findChannel(channelID)
	if err != nil {
		return 0, err
	}
	if ch.Kind != CHANNEL_THERMAL {
		return 0, fmt.Errorf("%w: thermal on %s channel %d", ErrChannelKind, ch.Kind, ch.ID)
	}
	if _, err := MapThermalCommand(kind, intensity); err != nil {
		return 0, err
	}
	b := &Block{
		ID:               p.takeBlockID(),
		Kind:             BLOCK_THERMAL,
		Duration:         sanitizeDuration(duration),
		ThermalType:      kind,
		ThermalIntensity: intensity,
	}
	ch.Blocks = append(ch.Blocks, b)
	ch.Blocks = Relayout(ch.Blocks)
	return b.ID, nil
}

// UpdateBlock applies a partial edit to one block, then re-normalizes and
// re-lays-out the channel. A duration edit on a tone block rescales the
// envelope fields not set in the same edit by the duration ratio.
func (p *Project) UpdateBlock(channelID, blockID uint64, edit BlockEdit) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.findChannel(channelID)
	if err != nil {
		return err
	}
	_, b := ch.FindBlock(blockID)
	if b == nil {
		return fmt.Errorf("%w: %d", ErrNoSuchBlock, blockID)
	}

	if edit.ThermalType != nil || edit.Intensity != nil {
		if b.Kind != BLOCK_THERMAL {
			return fmt.Errorf("%w: thermal fields on %v block %d", ErrChannelKind, b.Kind, b.ID)
		}
		kind := b.ThermalType
		intensity := b.ThermalIntensity
		if edit.ThermalType != nil {
			kind = *edit.ThermalType
		}
		if edit.Intensity != nil {
			intensity = *edit.Intensity
		}
		if _, err := MapThermalCommand(kind, intensity); err != nil {
			return err
		}
		b.ThermalType = kind
		b.ThermalIntensity = intensity
	}

	if edit.Waveform != nil {
		b.Waveform = *edit.Waveform
	}
	if edit.Frequency != nil {
		b.Frequency = sanitizeNumber(*edit.Frequency)
	}
	if edit.Attack != nil {
		b.Attack = *edit.Attack
	}
	if edit.Decay != nil {
		b.Decay = *edit.Decay
	}
	if edit.SustainLevel != nil {
		b.SustainLevel = *edit.SustainLevel
	}
	if edit.Release != nil {
		b.Release = *edit.Release
	}

	if edit.Duration != nil {
		oldDuration := b.Duration
		b.Duration = sanitizeDuration(sanitizeNumber(*edit.Duration))
		if b.Kind == BLOCK_TONE {
			*b = ScaleEnvelopeForDuration(*b, oldDuration, EnvelopeEdits{
				Attack:  edit.Attack != nil,
				Decay:   edit.Decay != nil,
				Release: edit.Release != nil,
			})
		}
	}

	if b.Kind == BLOCK_TONE {
		*b = NormalizeEnvelope(*b)
	}
	ch.Blocks = Relayout(ch.Blocks)
	return nil
}

// DeleteBlock removes one block and closes the gap it leaves.
func (p *Project) DeleteBlock(channelID, blockID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.findChannel(channelID)
	if err != nil {
		return err
	}
	i, b := ch.FindBlock(blockID)
	if b == nil {
		return fmt.Errorf("%w: %d", ErrNoSuchBlock, blockID)
	}
	ch.removeBlockAt(i)
	ch.Blocks = Relayout(ch.Blocks)
	return nil
}

// ReorderBlock moves a block to a new position in its channel. Out-of-range
// targets are clamped to the ends.
func (p *Project) ReorderBlock(channelID, blockID uint64, to int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.findChannel(channelID)
	if err != nil {
		return err
	}
	from, b := ch.FindBlock(blockID)
	if b == nil {
		return fmt.Errorf("%w: %d", ErrNoSuchBlock, blockID)
	}
	ch.moveBlock(from, to)
	ch.Blocks = Relayout(ch.Blocks)
	return nil
}

// SetChannelVolume stores the channel volume and, if the channel has a live
// bus, ramps it immediately.
func (p *Project) SetChannelVolume(channelID uint64, volume float64) error {
	p.mu.Lock()
	ch, err := p.findChannel(channelID)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	ch.Volume = clampFloat(sanitizeNumber(volume), 0, 1)
	v, muted := ch.Volume, ch.Muted
	p.mu.Unlock()
	p.mixer.UpdateChannelGain(channelID, v, muted)
	return nil
}

// SetChannelMuted stores the mute flag and, if the channel has a live bus,
// ramps it immediately. Unmuting restores the stored volume.
func (p *Project) SetChannelMuted(channelID uint64, muted bool) error {
	p.mu.Lock()
	ch, err := p.findChannel(channelID)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	ch.Muted = muted
	v := ch.Volume
	p.mu.Unlock()
	p.mixer.UpdateChannelGain(channelID, v, muted)
	return nil
}

func (p *Project) SetMasterVolume(v float64) { p.mixer.SetMasterVolume(v) }
func (p *Project) MasterVolume() float64     { return p.mixer.MasterVolume() }

// Play schedules and starts the whole timeline. Delegates to the scheduler
// without holding p.mu; the scheduler pulls its own snapshot.
func (p *Project) Play() error { return p.scheduler.Play() }

// Stop cancels playback and returns to idle.
func (p *Project) Stop() { p.scheduler.Stop() }

func (p *Project) SetLooping(loop bool) { p.scheduler.SetLooping(loop) }
func (p *Project) Looping() bool        { return p.scheduler.Looping() }
func (p *Project) State() PlayState     { return p.scheduler.State() }
func (p *Project) CurrentTime() float64 { return p.scheduler.CurrentTime() }

// SequenceDuration is the length of the longest channel, which is how long
// one pass of the sequence plays for.
func (p *Project) SequenceDuration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	max := 0.0
	for _, ch := range p.channels {
		if d := ch.TotalDuration(); d > max {
			max = d
		}
	}
	return max
}

// Close stops playback and tears down the mixer and backend.
func (p *Project) Close() {
	p.scheduler.Stop()
	p.mixer.Shutdown()
	p.backend.Close()
}
