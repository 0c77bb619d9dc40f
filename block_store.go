// block_store.go - Channel and block data model for the Tactone sequencer

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

type ChannelKind int

const (
	CHANNEL_AUDIO ChannelKind = iota
	CHANNEL_THERMAL
)

func (k ChannelKind) String() string {
	switch k {
	case CHANNEL_AUDIO:
		return "audio"
	case CHANNEL_THERMAL:
		return "thermal"
	}
	return "unknown"
}

type BlockKind int

const (
	BLOCK_TONE BlockKind = iota
	BLOCK_SILENCE
	BLOCK_THERMAL
)

func (k BlockKind) String() string {
	switch k {
	case BLOCK_TONE:
		return "tone"
	case BLOCK_SILENCE:
		return "silence"
	case BLOCK_THERMAL:
		return "thermal"
	}
	return "unknown"
}

type Waveform int

const (
	WAVE_SINE Waveform = iota
	WAVE_TRIANGLE
	WAVE_SQUARE
	WAVE_SAWTOOTH
)

func (w Waveform) String() string {
	switch w {
	case WAVE_SINE:
		return "sine"
	case WAVE_TRIANGLE:
		return "triangle"
	case WAVE_SQUARE:
		return "square"
	case WAVE_SAWTOOTH:
		return "sawtooth"
	}
	return "unknown"
}

// ParseWaveform maps a waveform name to its constant. The boolean reports
// whether the name was recognised.
func ParseWaveform(name string) (Waveform, bool) {
	switch name {
	case "sine":
		return WAVE_SINE, true
	case "triangle":
		return WAVE_TRIANGLE, true
	case "square":
		return WAVE_SQUARE, true
	case "sawtooth":
		return WAVE_SAWTOOTH, true
	}
	return WAVE_SINE, false
}

// Block is the atomic timeline unit. Rather than an interface hierarchy a
// block is a flat struct with a Kind tag; only the fields for its kind are
// meaningful. Blocks are never shared across channels.
//
// StartTime is derived state: it always equals the sum of the durations of
// the blocks before it in the same channel, and only Relayout writes it.
type Block struct {
	ID        uint64
	Kind      BlockKind
	Duration  float64
	StartTime float64

	// Tone fields
	Waveform     Waveform
	Frequency    float64
	Attack       float64
	Decay        float64
	SustainLevel float64
	Release      float64

	// Thermal fields
	ThermalType      ThermalType
	ThermalIntensity ThermalIntensity
}

// Channel is an independent sequential track of blocks with its own volume,
// mute state and (while playing) output bus.
type Channel struct {
	ID     uint64
	Name   string
	Kind   ChannelKind
	Volume float64
	Muted  bool
	Blocks []*Block
}

// TotalDuration sums the channel's block durations. Silent and muted content
// counts the same as audible content; this is the channel's contribution to
// the overall sequence length.
func (c *Channel) TotalDuration() float64 {
	total := 0.0
	for _, b := range c.Blocks {
		total += sanitizeDuration(b.Duration)
	}
	return total
}

// FindBlock returns the index and block for the given id, or -1 and nil.
func (c *Channel) FindBlock(id uint64) (int, *Block) {
	for i, b := range c.Blocks {
		if b.ID == id {
			return i, b
		}
	}
	return -1, nil
}

// removeBlockAt splices the block at index i out of the channel. The caller
// must run Relayout afterwards.
func (c *Channel) removeBlockAt(i int) {
	c.Blocks = append(c.Blocks[:i], c.Blocks[i+1:]...)
}

// moveBlock moves the block at index from to index to, preserving the order
// of the remaining blocks. Out-of-range targets are clamped. The caller must
// run Relayout afterwards.
func (c *Channel) moveBlock(from, to int) {
	if to < 0 {
		to = 0
	}
	if to >= len(c.Blocks) {
		to = len(c.Blocks) - 1
	}
	if from == to {
		return
	}
	b := c.Blocks[from]
	c.removeBlockAt(from)
	c.Blocks = append(c.Blocks, nil)
	copy(c.Blocks[to+1:], c.Blocks[to:])
	c.Blocks[to] = b
}

// clone returns a deep copy of the channel and its blocks. The scheduler
// walks snapshots so that concurrent edits never race with playback.
func (c *Channel) clone() *Channel {
	dup := *c
	dup.Blocks = make([]*Block, len(c.Blocks))
	for i, b := range c.Blocks {
		nb := *b
		dup.Blocks[i] = &nb
	}
	return &dup
}
