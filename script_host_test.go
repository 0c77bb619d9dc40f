// script_host_test.go - Lua binding tests for the project API

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
	"strings"
	"testing"
)

func newTestScriptHost(t *testing.T) (*ScriptHost, *Project) {
	t.Helper()
	proj := NewProject(newTraceBackend())
	host := NewScriptHost(proj)
	t.Cleanup(func() {
		host.Close()
		proj.Close()
	})
	return host, proj
}

func TestScriptHost_BuildTimeline(t *testing.T) {
	t.Log("=== SCRIPT HOST: A SCRIPT BUILDS THE SAME STATE AS THE GO API ===")

	host, proj := newTestScriptHost(t)
	err := host.RunString(`
		local ch = tactone.add_channel("audio", "lead")
		tactone.add_tone(ch, { duration = 1.0, waveform = "square",
		                       frequency = 440, attack = 0.05, decay = 0.1,
		                       sustain = 0.7, release = 0.2 })
		tactone.add_silence(ch, 0.5)
		tactone.add_tone(ch, { duration = 2.0, frequency = 220 })

		local th = tactone.add_channel("thermal", "warmth")
		tactone.add_thermal(th, { duration = 3.0, type = "hot", intensity = "high" })

		tactone.set_volume(ch, 0.8)
		tactone.master_volume(0.9)
	`)
	if err != nil {
		t.Fatalf("script: %v", err)
	}

	chs := proj.Channels()
	if len(chs) != 3 { // default channel plus the two scripted ones
		t.Fatalf("channel count: got %d, want 3", len(chs))
	}

	lead := chs[1]
	if lead.Name != "lead" || len(lead.Blocks) != 3 {
		t.Fatalf("lead channel: %+v", lead)
	}
	if !approxEq(lead.Volume, 0.8) {
		t.Errorf("lead volume: %v", lead.Volume)
	}
	tone := lead.Blocks[0]
	if tone.Waveform != WAVE_SQUARE || !approxEq(tone.Frequency, 440) || !approxEq(tone.SustainLevel, 0.7) {
		t.Errorf("first tone: %+v", tone)
	}
	if !approxEq(lead.Blocks[2].StartTime, 1.5) {
		t.Errorf("third block start: %v", lead.Blocks[2].StartTime)
	}

	warmth := chs[2]
	if warmth.Kind != CHANNEL_THERMAL || len(warmth.Blocks) != 1 {
		t.Fatalf("thermal channel: %+v", warmth)
	}
	if warmth.Blocks[0].ThermalType != THERMAL_HOT || warmth.Blocks[0].ThermalIntensity != THERMAL_HIGH {
		t.Errorf("thermal block: %+v", warmth.Blocks[0])
	}

	if !approxEq(proj.MasterVolume(), 0.9) {
		t.Errorf("master volume: %v", proj.MasterVolume())
	}
	if !approxEq(proj.SequenceDuration(), 3.5) {
		t.Errorf("sequence duration: %v", proj.SequenceDuration())
	}
}

func TestScriptHost_UpdateAndDelete(t *testing.T) {
	host, proj := newTestScriptHost(t)
	err := host.RunString(`
		local ch = tactone.add_channel("audio", "edit")
		local a = tactone.add_tone(ch, { duration = 1.0, frequency = 440 })
		local b = tactone.add_tone(ch, { duration = 2.0, frequency = 220 })
		tactone.update_block(ch, a, { frequency = 110, duration = 4.0 })
		tactone.reorder_block(ch, a, 2)
		tactone.delete_block(ch, b)
	`)
	if err != nil {
		t.Fatalf("script: %v", err)
	}

	ch := proj.Channels()[1]
	if len(ch.Blocks) != 1 {
		t.Fatalf("block count: %d", len(ch.Blocks))
	}
	if !approxEq(ch.Blocks[0].Frequency, 110) || !approxEq(ch.Blocks[0].Duration, 4.0) {
		t.Errorf("edited block: %+v", ch.Blocks[0])
	}
}

func TestScriptHost_GoErrorsBecomeLuaErrors(t *testing.T) {
	t.Log("=== SCRIPT HOST: PROJECT ERRORS SURFACE AT THE LUA CALL SITE ===")

	host, _ := newTestScriptHost(t)

	cases := []struct {
		name   string
		script string
		want   string
	}{
		{"last channel", `tactone.delete_channel(1)`, "last channel"},
		{"unknown waveform", `tactone.add_tone(1, { waveform = "noise" })`, "unknown waveform"},
		{"unknown channel kind", `tactone.add_channel("video")`, "unknown channel kind"},
		{"kind mismatch", `tactone.add_thermal(1, { type = "cool", intensity = "low" })`, "does not match"},
		{"hot rapid", `
			local th = tactone.add_channel("thermal")
			tactone.add_thermal(th, { type = "hot", intensity = "rapid" })`, "unknown thermal command"},
	}
	for _, tc := range cases {
		err := host.RunString(tc.script)
		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestScriptHost_DurationQuery(t *testing.T) {
	host, _ := newTestScriptHost(t)
	err := host.RunString(`
		tactone.add_silence(1, 2.5)
		if tactone.duration() ~= 2.5 then
			error("duration mismatch: " .. tactone.duration())
		end
	`)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
}
