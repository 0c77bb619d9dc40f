// envelope_test.go - Normalization and duration-scaling tests for ADSR envelopes

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
	"testing"
)

func toneBlock(dur, atk, dec, sus, rel float64) Block {
	return Block{
		Kind:         BLOCK_TONE,
		Duration:     dur,
		Waveform:     WAVE_SINE,
		Frequency:    440,
		Attack:       atk,
		Decay:        dec,
		SustainLevel: sus,
		Release:      rel,
	}
}

func approxEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestNormalizeEnvelope_ValidEnvelopeUnchanged(t *testing.T) {
	t.Log("=== ENVELOPE NORMALIZATION: WELL-FORMED INPUT ===")

	b := NormalizeEnvelope(toneBlock(2.0, 0.2, 0.3, 0.7, 0.2))
	if !approxEq(b.Attack, 0.2) || !approxEq(b.Decay, 0.3) || !approxEq(b.Release, 0.2) {
		t.Errorf("well-formed envelope was altered: A=%v D=%v R=%v", b.Attack, b.Decay, b.Release)
	}
	if !approxEq(b.SustainLevel, 0.7) {
		t.Errorf("sustain level altered: %v", b.SustainLevel)
	}
}

func TestNormalizeEnvelope_ProportionalShrink(t *testing.T) {
	t.Log("=== ENVELOPE NORMALIZATION: PROPORTIONAL SHRINK ===")
	t.Log("A/D/R overrunning the sustain window must shrink together, keeping shape")

	// Sum 1.0 over a 1s block leaves no sustain window; the budget is 0.95.
	b := NormalizeEnvelope(toneBlock(1.0, 0.4, 0.4, 0.5, 0.2))
	if !approxEq(b.Attack, 0.38) || !approxEq(b.Decay, 0.38) || !approxEq(b.Release, 0.19) {
		t.Errorf("expected 0.38/0.38/0.19, got %v/%v/%v", b.Attack, b.Decay, b.Release)
	}
	// Ratios survive the shrink.
	if !approxEq(b.Attack/b.Decay, 1.0) || !approxEq(b.Attack/b.Release, 2.0) {
		t.Errorf("shrink did not preserve envelope shape: %v/%v/%v", b.Attack, b.Decay, b.Release)
	}
}

func TestNormalizeEnvelope_TightDuration(t *testing.T) {
	t.Log("=== ENVELOPE NORMALIZATION: BLOCK SHORTER THAN SUSTAIN WINDOW ===")

	// 30ms block cannot host any attack/decay; release survives clamped.
	b := NormalizeEnvelope(toneBlock(0.03, 0.01, 0.01, 1.0, 0.01))
	if b.Attack != 0 || b.Decay != 0 {
		t.Errorf("attack/decay should collapse to zero, got %v/%v", b.Attack, b.Decay)
	}
	if !approxEq(b.Release, 0.01) {
		t.Errorf("release should survive, got %v", b.Release)
	}

	// Oversized release is clamped to the whole block.
	b = NormalizeEnvelope(toneBlock(0.03, 0, 0, 1.0, 0.1))
	if !approxEq(b.Release, 0.03) {
		t.Errorf("release should clamp to duration, got %v", b.Release)
	}
}

func TestNormalizeEnvelope_GarbageInput(t *testing.T) {
	t.Log("=== ENVELOPE NORMALIZATION: NaN/Inf/NEGATIVE COERCION ===")

	cases := []struct {
		name  string
		block Block
	}{
		{"NaN attack", toneBlock(1, math.NaN(), 0.1, 0.5, 0.1)},
		{"Inf decay", toneBlock(1, 0.1, math.Inf(1), 0.5, 0.1)},
		{"negative release", toneBlock(1, 0.1, 0.1, 0.5, -3)},
		{"NaN sustain", toneBlock(1, 0.1, 0.1, math.NaN(), 0.1)},
		{"negative duration", toneBlock(-1, 0.1, 0.1, 0.5, 0.1)},
		{"Inf duration", toneBlock(math.Inf(1), 0.1, 0.1, 0.5, 0.1)},
	}
	for _, tc := range cases {
		b := NormalizeEnvelope(tc.block)
		for name, v := range map[string]float64{
			"duration": b.Duration, "attack": b.Attack, "decay": b.Decay,
			"sustain": b.SustainLevel, "release": b.Release,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				t.Errorf("%s: %s not coerced to a finite non-negative value: %v", tc.name, name, v)
			}
		}
		if b.SustainLevel > 1 {
			t.Errorf("%s: sustain above 1: %v", tc.name, b.SustainLevel)
		}
	}
}

func TestNormalizeEnvelope_ZeroDuration(t *testing.T) {
	b := NormalizeEnvelope(toneBlock(0, 0.2, 0.2, 0.5, 0.2))
	if b.Attack != 0 || b.Decay != 0 || b.Release != 0 {
		t.Errorf("zero duration must force zero envelope, got %v/%v/%v", b.Attack, b.Decay, b.Release)
	}
}

func TestNormalizeEnvelope_Idempotent(t *testing.T) {
	t.Log("=== ENVELOPE NORMALIZATION: IDEMPOTENCE ===")
	t.Log("Normalizing an already-normalized block must be a no-op")

	cases := []Block{
		toneBlock(2.0, 0.2, 0.3, 0.7, 0.2),
		toneBlock(1.0, 0.5, 0.5, 0.5, 0.5),
		toneBlock(0.03, 0.01, 0.01, 1.0, 0.01),
		toneBlock(1.0, math.NaN(), math.Inf(1), -2, 100),
		toneBlock(0.05, 0.05, 0.05, 0.5, 0.05),
		toneBlock(10, 9, 9, 0.123456, 9),
	}
	for i, in := range cases {
		once := NormalizeEnvelope(in)
		twice := NormalizeEnvelope(once)
		if once != twice {
			t.Errorf("case %d not idempotent:\n once: %+v\ntwice: %+v", i, once, twice)
		}
	}
}

func TestNormalizeEnvelope_SustainWindowInvariant(t *testing.T) {
	cases := []Block{
		toneBlock(1.0, 0.9, 0.9, 0.5, 0.9),
		toneBlock(0.2, 0.1, 0.1, 0.5, 0.1),
		toneBlock(5.0, 2, 2, 0.5, 2),
	}
	for i, in := range cases {
		b := NormalizeEnvelope(in)
		maxAllowed := math.Max(0, b.Duration-MIN_SUSTAIN_TIME)
		// 3-decimal rounding of three fields can overshoot by up to 1.5ms.
		if sum := b.Attack + b.Decay + b.Release; sum > maxAllowed+0.002 {
			t.Errorf("case %d: A+D+R=%v exceeds sustain budget %v", i, sum, maxAllowed)
		}
	}
}

func TestNormalizeEnvelope_NonToneUntouched(t *testing.T) {
	in := Block{Kind: BLOCK_SILENCE, Duration: 1.5, Attack: 99}
	if out := NormalizeEnvelope(in); out != in {
		t.Errorf("non-tone block was modified: %+v", out)
	}
}

func TestScaleEnvelopeForDuration_UneditedFieldsScale(t *testing.T) {
	t.Log("=== DURATION EDIT: ENVELOPE KEEPS ITS PROPORTIONS ===")

	// Halving a 2s block halves every untouched envelope field.
	b := toneBlock(1.0, 0.2, 0.3, 0.7, 0.2)
	out := ScaleEnvelopeForDuration(b, 2.0, EnvelopeEdits{})
	if !approxEq(out.Attack, 0.1) || !approxEq(out.Decay, 0.15) || !approxEq(out.Release, 0.1) {
		t.Errorf("expected 0.1/0.15/0.1, got %v/%v/%v", out.Attack, out.Decay, out.Release)
	}
	if !approxEq(out.SustainLevel, 0.7) {
		t.Errorf("sustain level must never scale, got %v", out.SustainLevel)
	}
}

func TestScaleEnvelopeForDuration_ExplicitOverrideKept(t *testing.T) {
	// Attack was set in the same edit; only decay and release scale.
	b := toneBlock(1.0, 0.25, 0.3, 0.7, 0.2)
	out := ScaleEnvelopeForDuration(b, 2.0, EnvelopeEdits{Attack: true})
	if !approxEq(out.Attack, 0.25) {
		t.Errorf("explicit attack must not rescale, got %v", out.Attack)
	}
	if !approxEq(out.Decay, 0.15) || !approxEq(out.Release, 0.1) {
		t.Errorf("expected decay/release 0.15/0.1, got %v/%v", out.Decay, out.Release)
	}
}

func TestScaleEnvelopeForDuration_DegenerateOldDuration(t *testing.T) {
	b := toneBlock(1.0, 0.2, 0.2, 0.5, 0.2)
	if out := ScaleEnvelopeForDuration(b, 0, EnvelopeEdits{}); out != b {
		t.Errorf("zero old duration must leave the block alone: %+v", out)
	}
	if out := ScaleEnvelopeForDuration(b, math.NaN(), EnvelopeEdits{}); out != b {
		t.Errorf("NaN old duration must leave the block alone: %+v", out)
	}
}
