// project_test.go - End-to-end editing operation tests on the project facade

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
	"testing"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()
	proj := NewProject(newTraceBackend())
	t.Cleanup(proj.Close)
	return proj
}

func firstChannelID(t *testing.T, proj *Project) uint64 {
	t.Helper()
	chs := proj.Channels()
	if len(chs) == 0 {
		t.Fatal("project has no channels")
	}
	return chs[0].ID
}

func findChannelByID(t *testing.T, proj *Project, id uint64) *Channel {
	t.Helper()
	for _, ch := range proj.Channels() {
		if ch.ID == id {
			return ch
		}
	}
	t.Fatalf("channel %d not found", id)
	return nil
}

func TestProject_StartsWithOneAudioChannel(t *testing.T) {
	proj := newTestProject(t)
	chs := proj.Channels()
	if len(chs) != 1 {
		t.Fatalf("fresh project: got %d channels, want 1", len(chs))
	}
	if chs[0].Kind != CHANNEL_AUDIO || chs[0].Volume != 1.0 || chs[0].Muted {
		t.Errorf("default channel state: %+v", chs[0])
	}
}

func TestProject_AddBlocksRelayout(t *testing.T) {
	t.Log("=== PROJECT: APPENDED BLOCKS TAKE CUMULATIVE START OFFSETS ===")

	proj := newTestProject(t)
	ch := firstChannelID(t, proj)

	if _, err := proj.AddToneBlock(ch, ToneParams{Duration: 1.5, Frequency: 440}); err != nil {
		t.Fatalf("add tone: %v", err)
	}
	if _, err := proj.AddSilenceBlock(ch, 0.5); err != nil {
		t.Fatalf("add silence: %v", err)
	}
	if _, err := proj.AddToneBlock(ch, ToneParams{Duration: 2, Frequency: 220}); err != nil {
		t.Fatalf("add tone: %v", err)
	}

	blocks := findChannelByID(t, proj, ch).Blocks
	want := []float64{0, 1.5, 2.0}
	for i, b := range blocks {
		if !approxEq(b.StartTime, want[i]) {
			t.Errorf("block %d start: got %v, want %v", i, b.StartTime, want[i])
		}
	}
	if d := proj.SequenceDuration(); !approxEq(d, 4.0) {
		t.Errorf("sequence duration: got %v, want 4.0", d)
	}
}

func TestProject_ChannelKindEnforced(t *testing.T) {
	t.Log("=== PROJECT: BLOCK KIND MUST MATCH CHANNEL KIND ===")

	proj := newTestProject(t)
	audio := firstChannelID(t, proj)
	thermal := proj.AddChannel(CHANNEL_THERMAL, "warmth")

	if _, err := proj.AddToneBlock(thermal, ToneParams{Duration: 1, Frequency: 440}); !errors.Is(err, ErrChannelKind) {
		t.Errorf("tone on thermal channel: got %v, want ErrChannelKind", err)
	}
	if _, err := proj.AddThermalBlock(audio, 1, THERMAL_COOL, THERMAL_LOW); !errors.Is(err, ErrChannelKind) {
		t.Errorf("thermal on audio channel: got %v, want ErrChannelKind", err)
	}
	if _, err := proj.AddThermalBlock(thermal, 1, THERMAL_HOT, THERMAL_RAPID); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unmappable thermal block: got %v, want ErrUnknownCommand", err)
	}
	if _, err := proj.AddThermalBlock(thermal, 1, THERMAL_HOT, THERMAL_HIGH); err != nil {
		t.Errorf("valid thermal block: %v", err)
	}
}

func TestProject_DeleteLastChannelRejected(t *testing.T) {
	proj := newTestProject(t)
	ch := firstChannelID(t, proj)

	if err := proj.DeleteChannel(ch); !errors.Is(err, ErrLastChannel) {
		t.Errorf("deleting the only channel: got %v, want ErrLastChannel", err)
	}

	second := proj.AddChannel(CHANNEL_AUDIO, "")
	if err := proj.DeleteChannel(second); err != nil {
		t.Errorf("deleting a spare channel: %v", err)
	}
	if err := proj.DeleteChannel(99); !errors.Is(err, ErrNoSuchChannel) {
		t.Errorf("deleting a missing channel: got %v, want ErrNoSuchChannel", err)
	}
}

func TestProject_DurationEditRescalesEnvelope(t *testing.T) {
	t.Log("=== PROJECT: DURATION EDIT KEEPS ENVELOPE PROPORTIONS ===")

	proj := newTestProject(t)
	ch := firstChannelID(t, proj)
	id, err := proj.AddToneBlock(ch, ToneParams{
		Duration: 2, Frequency: 440,
		Attack: 0.2, Decay: 0.3, SustainLevel: 0.7, Release: 0.2,
	})
	if err != nil {
		t.Fatalf("add tone: %v", err)
	}

	newDur := 1.0
	if err := proj.UpdateBlock(ch, id, BlockEdit{Duration: &newDur}); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, b := findChannelByID(t, proj, ch).FindBlock(id)
	if !approxEq(b.Attack, 0.1) || !approxEq(b.Decay, 0.15) || !approxEq(b.Release, 0.1) {
		t.Errorf("expected 0.1/0.15/0.1 after halving, got %v/%v/%v", b.Attack, b.Decay, b.Release)
	}
	if !approxEq(b.SustainLevel, 0.7) {
		t.Errorf("sustain level must not scale: %v", b.SustainLevel)
	}
}

func TestProject_DurationEditKeepsExplicitOverride(t *testing.T) {
	proj := newTestProject(t)
	ch := firstChannelID(t, proj)
	id, err := proj.AddToneBlock(ch, ToneParams{
		Duration: 2, Frequency: 440,
		Attack: 0.2, Decay: 0.3, SustainLevel: 0.7, Release: 0.2,
	})
	if err != nil {
		t.Fatalf("add tone: %v", err)
	}

	newDur, newAttack := 1.0, 0.25
	if err := proj.UpdateBlock(ch, id, BlockEdit{Duration: &newDur, Attack: &newAttack}); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, b := findChannelByID(t, proj, ch).FindBlock(id)
	if !approxEq(b.Attack, 0.25) {
		t.Errorf("explicit attack must survive the duration edit: %v", b.Attack)
	}
	if !approxEq(b.Decay, 0.15) || !approxEq(b.Release, 0.1) {
		t.Errorf("untouched fields must scale: %v/%v", b.Decay, b.Release)
	}
}

func TestProject_DeleteBlockClosesGap(t *testing.T) {
	proj := newTestProject(t)
	ch := firstChannelID(t, proj)

	a, _ := proj.AddToneBlock(ch, ToneParams{Duration: 1, Frequency: 440})
	b, _ := proj.AddToneBlock(ch, ToneParams{Duration: 2, Frequency: 440})
	c, _ := proj.AddToneBlock(ch, ToneParams{Duration: 3, Frequency: 440})
	_ = a

	if err := proj.DeleteBlock(ch, b); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, last := findChannelByID(t, proj, ch).FindBlock(c)
	if !approxEq(last.StartTime, 1.0) {
		t.Errorf("block after deletion must slide left: got start %v, want 1.0", last.StartTime)
	}
	if err := proj.DeleteBlock(ch, b); !errors.Is(err, ErrNoSuchBlock) {
		t.Errorf("double delete: got %v, want ErrNoSuchBlock", err)
	}
}

func TestProject_ReorderBlock(t *testing.T) {
	proj := newTestProject(t)
	ch := firstChannelID(t, proj)

	a, _ := proj.AddToneBlock(ch, ToneParams{Duration: 1, Frequency: 440})
	b, _ := proj.AddToneBlock(ch, ToneParams{Duration: 2, Frequency: 440})
	_ = b

	if err := proj.ReorderBlock(ch, a, 1); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	blocks := findChannelByID(t, proj, ch).Blocks
	if blocks[0].ID != b || blocks[1].ID != a {
		t.Errorf("order after move: %d,%d want %d,%d", blocks[0].ID, blocks[1].ID, b, a)
	}
	if !approxEq(blocks[1].StartTime, 2.0) {
		t.Errorf("moved block start: got %v, want 2.0", blocks[1].StartTime)
	}
}

func TestProject_VolumeAndMuteStored(t *testing.T) {
	proj := newTestProject(t)
	ch := firstChannelID(t, proj)

	if err := proj.SetChannelVolume(ch, 0.3); err != nil {
		t.Fatalf("set volume: %v", err)
	}
	if err := proj.SetChannelMuted(ch, true); err != nil {
		t.Fatalf("set muted: %v", err)
	}
	got := findChannelByID(t, proj, ch)
	if !approxEq(got.Volume, 0.3) || !got.Muted {
		t.Errorf("stored state: volume %v muted %v", got.Volume, got.Muted)
	}

	// Unmuting keeps the stored volume.
	if err := proj.SetChannelMuted(ch, false); err != nil {
		t.Fatalf("unmute: %v", err)
	}
	if got := findChannelByID(t, proj, ch); !approxEq(got.Volume, 0.3) || got.Muted {
		t.Errorf("state after unmute: volume %v muted %v", got.Volume, got.Muted)
	}

	if err := proj.SetChannelVolume(99, 0.5); !errors.Is(err, ErrNoSuchChannel) {
		t.Errorf("volume on missing channel: got %v, want ErrNoSuchChannel", err)
	}
}

func TestProject_SnapshotsAreIsolated(t *testing.T) {
	t.Log("=== PROJECT: CHANNEL SNAPSHOTS NEVER ALIAS LIVE STATE ===")

	proj := newTestProject(t)
	ch := firstChannelID(t, proj)
	id, _ := proj.AddToneBlock(ch, ToneParams{Duration: 1, Frequency: 440})

	snap := findChannelByID(t, proj, ch)
	_, b := snap.FindBlock(id)
	b.Duration = 999 // scribbling on a snapshot must not reach the project

	_, live := findChannelByID(t, proj, ch).FindBlock(id)
	if !approxEq(live.Duration, 1.0) {
		t.Errorf("snapshot mutation leaked into the project: %v", live.Duration)
	}
}

func TestProject_PlayStopRoundTrip(t *testing.T) {
	proj := newTestProject(t)
	ch := firstChannelID(t, proj)
	if _, err := proj.AddToneBlock(ch, ToneParams{Duration: 5, Frequency: 440}); err != nil {
		t.Fatalf("add tone: %v", err)
	}

	if err := proj.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if s := proj.State(); s != STATE_PLAYING {
		t.Errorf("state: got %v, want playing", s)
	}
	proj.Stop()
	if s := proj.State(); s != STATE_IDLE {
		t.Errorf("state after stop: got %v, want idle", s)
	}
}
