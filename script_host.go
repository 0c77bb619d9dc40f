// script_host.go - Lua scripting interface for building and driving projects

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
	lua "github.com/yuin/gopher-lua"
)

// ScriptHost exposes the project to Lua under a global "tactone" table.
// Scripts build timelines declaratively and may start playback; every Go
// error surfaces as a Lua error at the call site.
//
//	local ch = tactone.add_channel("audio", "lead")
//	tactone.add_tone(ch, { duration = 1.0, waveform = "square",
//	                       frequency = 440, attack = 0.05, decay = 0.1,
//	                       sustain = 0.7, release = 0.2 })
//	tactone.play()
type ScriptHost struct {
	proj *Project
	L    *lua.LState
}

func NewScriptHost(proj *Project) *ScriptHost {
	h := &ScriptHost{
		proj: proj,
		L:    lua.NewState(),
	}
	h.register()
	return h
}

func (h *ScriptHost) Close() {
	h.L.Close()
}

// RunFile executes a script file against the project.
func (h *ScriptHost) RunFile(path string) error {
	return h.L.DoFile(path)
}

// RunString executes script source against the project.
func (h *ScriptHost) RunString(src string) error {
	return h.L.DoString(src)
}

func (h *ScriptHost) register() {
	mod := h.L.NewTable()
	h.L.SetFuncs(mod, map[string]lua.LGFunction{
		"add_channel":    h.luaAddChannel,
		"delete_channel": h.luaDeleteChannel,
		"add_tone":       h.luaAddTone,
		"add_silence":    h.luaAddSilence,
		"add_thermal":    h.luaAddThermal,
		"update_block":   h.luaUpdateBlock,
		"delete_block":   h.luaDeleteBlock,
		"reorder_block":  h.luaReorderBlock,
		"set_volume":     h.luaSetVolume,
		"set_muted":      h.luaSetMuted,
		"master_volume":  h.luaMasterVolume,
		"loop":           h.luaLoop,
		"play":           h.luaPlay,
		"stop":           h.luaStop,
		"duration":       h.luaDuration,
	})
	h.L.SetGlobal("tactone", mod)
}

func (h *ScriptHost) luaAddChannel(L *lua.LState) int {
	kindName := L.CheckString(1)
	name := L.OptString(2, "")
	var kind ChannelKind
	switch kindName {
	case "audio":
		kind = CHANNEL_AUDIO
	case "thermal":
		kind = CHANNEL_THERMAL
	default:
		L.RaiseError("unknown channel kind %q", kindName)
		return 0
	}
	id := h.proj.AddChannel(kind, name)
	L.Push(lua.LNumber(id))
	return 1
}

func (h *ScriptHost) luaDeleteChannel(L *lua.LState) int {
	id := uint64(L.CheckNumber(1))
	if err := h.proj.DeleteChannel(id); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// tableNumber pulls a numeric field from an options table, with default.
func tableNumber(L *lua.LState, t *lua.LTable, key string, def float64) float64 {
	v := L.GetField(t, key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

func (h *ScriptHost) luaAddTone(L *lua.LState) int {
	id := uint64(L.CheckNumber(1))
	t := L.CheckTable(2)

	wave := WAVE_SINE
	if s, ok := L.GetField(t, "waveform").(lua.LString); ok {
		w, known := ParseWaveform(string(s))
		if !known {
			L.RaiseError("unknown waveform %q", string(s))
			return 0
		}
		wave = w
	}

	blockID, err := h.proj.AddToneBlock(id, ToneParams{
		Duration:     tableNumber(L, t, "duration", 1.0),
		Waveform:     wave,
		Frequency:    tableNumber(L, t, "frequency", 440),
		Attack:       tableNumber(L, t, "attack", 0),
		Decay:        tableNumber(L, t, "decay", 0),
		SustainLevel: tableNumber(L, t, "sustain", 1),
		Release:      tableNumber(L, t, "release", 0),
	})
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LNumber(blockID))
	return 1
}

func (h *ScriptHost) luaAddSilence(L *lua.LState) int {
	id := uint64(L.CheckNumber(1))
	dur := float64(L.CheckNumber(2))
	blockID, err := h.proj.AddSilenceBlock(id, dur)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LNumber(blockID))
	return 1
}

func (h *ScriptHost) luaAddThermal(L *lua.LState) int {
	id := uint64(L.CheckNumber(1))
	t := L.CheckTable(2)

	kindName := "cool"
	if s, ok := L.GetField(t, "type").(lua.LString); ok {
		kindName = string(s)
	}
	kind, known := ParseThermalType(kindName)
	if !known {
		L.RaiseError("unknown thermal type %q", kindName)
		return 0
	}

	levelName := "low"
	if s, ok := L.GetField(t, "intensity").(lua.LString); ok {
		levelName = string(s)
	}
	intensity, known := ParseThermalIntensity(levelName)
	if !known {
		L.RaiseError("unknown thermal intensity %q", levelName)
		return 0
	}

	blockID, err := h.proj.AddThermalBlock(id, tableNumber(L, t, "duration", 1.0), kind, intensity)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LNumber(blockID))
	return 1
}

func (h *ScriptHost) luaUpdateBlock(L *lua.LState) int {
	chID := uint64(L.CheckNumber(1))
	blockID := uint64(L.CheckNumber(2))
	t := L.CheckTable(3)

	var edit BlockEdit
	setNum := func(key string, dst **float64) {
		if n, ok := L.GetField(t, key).(lua.LNumber); ok {
			v := float64(n)
			*dst = &v
		}
	}
	setNum("duration", &edit.Duration)
	setNum("frequency", &edit.Frequency)
	setNum("attack", &edit.Attack)
	setNum("decay", &edit.Decay)
	setNum("sustain", &edit.SustainLevel)
	setNum("release", &edit.Release)

	if s, ok := L.GetField(t, "waveform").(lua.LString); ok {
		w, known := ParseWaveform(string(s))
		if !known {
			L.RaiseError("unknown waveform %q", string(s))
			return 0
		}
		edit.Waveform = &w
	}
	if s, ok := L.GetField(t, "type").(lua.LString); ok {
		k, known := ParseThermalType(string(s))
		if !known {
			L.RaiseError("unknown thermal type %q", string(s))
			return 0
		}
		edit.ThermalType = &k
	}
	if s, ok := L.GetField(t, "intensity").(lua.LString); ok {
		i, known := ParseThermalIntensity(string(s))
		if !known {
			L.RaiseError("unknown thermal intensity %q", string(s))
			return 0
		}
		edit.Intensity = &i
	}

	if err := h.proj.UpdateBlock(chID, blockID, edit); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *ScriptHost) luaDeleteBlock(L *lua.LState) int {
	chID := uint64(L.CheckNumber(1))
	blockID := uint64(L.CheckNumber(2))
	if err := h.proj.DeleteBlock(chID, blockID); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *ScriptHost) luaReorderBlock(L *lua.LState) int {
	chID := uint64(L.CheckNumber(1))
	blockID := uint64(L.CheckNumber(2))
	// Lua positions are 1-based.
	to := int(L.CheckNumber(3)) - 1
	if err := h.proj.ReorderBlock(chID, blockID, to); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *ScriptHost) luaSetVolume(L *lua.LState) int {
	chID := uint64(L.CheckNumber(1))
	if err := h.proj.SetChannelVolume(chID, float64(L.CheckNumber(2))); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *ScriptHost) luaSetMuted(L *lua.LState) int {
	chID := uint64(L.CheckNumber(1))
	if err := h.proj.SetChannelMuted(chID, L.CheckBool(2)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *ScriptHost) luaMasterVolume(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LNumber(h.proj.MasterVolume()))
		return 1
	}
	h.proj.SetMasterVolume(float64(L.CheckNumber(1)))
	return 0
}

func (h *ScriptHost) luaLoop(L *lua.LState) int {
	h.proj.SetLooping(L.CheckBool(1))
	return 0
}

func (h *ScriptHost) luaPlay(L *lua.LState) int {
	if err := h.proj.Play(); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *ScriptHost) luaStop(L *lua.LState) int {
	h.proj.Stop()
	return 0
}

func (h *ScriptHost) luaDuration(L *lua.LState) int {
	L.Push(lua.LNumber(h.proj.SequenceDuration()))
	return 1
}
