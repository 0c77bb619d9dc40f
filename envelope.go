// envelope.go - ADSR envelope parameter normalization

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

import "math"

// MIN_SUSTAIN_TIME is the sustain-phase window a tone block must keep free
// whenever it is long enough to host one. Attack, decay and release together
// may never eat into it.
const MIN_SUSTAIN_TIME = 0.05

// envEpsilon absorbs float rounding when comparing envelope sums against
// their budget, so that an already-normalized block is a fixed point.
const envEpsilon = 1e-9

func sanitizeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// NormalizeEnvelope returns a copy of the tone block with a valid
// (attack, decay, sustain, release) tuple. Pure, deterministic and
// idempotent: normalizing a normalized block is a no-op.
//
// Guarantees after the call, for duration > 0:
//
//	attack+decay+release <= max(0, duration-MIN_SUSTAIN_TIME)
//	0 <= sustainLevel <= 1
//	each of attack, decay, release within [0, duration]
//
// and for duration <= 0 all three are forced to 0. The proportional shrink
// preserves the relative shape of the envelope; the second uniform clamp
// exists only for floating-point edge effects. The order of the two passes
// is deliberate and must not change.
func NormalizeEnvelope(b Block) Block {
	if b.Kind != BLOCK_TONE {
		return b
	}

	d := sanitizeDuration(sanitizeNumber(b.Duration))
	atk := math.Max(0, sanitizeNumber(b.Attack))
	dec := math.Max(0, sanitizeNumber(b.Decay))
	rel := math.Max(0, sanitizeNumber(b.Release))
	sus := clampFloat(sanitizeNumber(b.SustainLevel), 0, 1)

	atk = clampFloat(atk, 0, d)
	dec = clampFloat(dec, 0, d)
	rel = clampFloat(rel, 0, d)

	if d <= 0 {
		atk, dec, rel = 0, 0, 0
	} else {
		maxAllowed := math.Max(0, d-MIN_SUSTAIN_TIME)
		sum := atk + dec + rel
		if sum > maxAllowed+envEpsilon {
			if maxAllowed > 0 && sum > 0 {
				scale := maxAllowed / sum
				atk *= scale
				dec *= scale
				rel *= scale
			} else {
				// Too short to host any A/D/R: the whole block becomes a
				// single fade governed by release (or no envelope at all).
				atk, dec = 0, 0
				rel = math.Min(rel, d)
			}
		}
		if sum := atk + dec + rel; sum > d+envEpsilon && sum > 0 {
			scale := d / sum
			atk *= scale
			dec *= scale
			rel *= scale
		}
	}

	b.Duration = d
	b.Attack = round3(atk)
	b.Decay = round3(dec)
	b.Release = round3(rel)
	b.SustainLevel = round2(sus)
	return b
}

// EnvelopeEdits records which envelope fields were explicitly set in the
// same edit as a duration change. Explicit values are the user's override
// and must not be rescaled.
type EnvelopeEdits struct {
	Attack  bool
	Decay   bool
	Release bool
}

// ScaleEnvelopeForDuration rescales the envelope fields that were untouched
// in a duration edit by the duration ratio, so the envelope keeps its
// proportions when the block is stretched or compressed. The result still
// needs NormalizeEnvelope before use.
func ScaleEnvelopeForDuration(b Block, oldDuration float64, edited EnvelopeEdits) Block {
	if b.Kind != BLOCK_TONE {
		return b
	}
	newDuration := sanitizeDuration(sanitizeNumber(b.Duration))
	oldDuration = sanitizeDuration(sanitizeNumber(oldDuration))
	if oldDuration <= 0 || newDuration == oldDuration {
		return b
	}
	ratio := newDuration / oldDuration
	if !edited.Attack {
		b.Attack = sanitizeNumber(b.Attack) * ratio
	}
	if !edited.Decay {
		b.Decay = sanitizeNumber(b.Decay) * ratio
	}
	if !edited.Release {
		b.Release = sanitizeNumber(b.Release) * ratio
	}
	return b
}
