// timeline_layout.go - Derived start-offset recomputation for block timelines

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

// sanitizeDuration corrects a corrupt duration to 0. NaN, infinities and
// negative values must never propagate into the schedule.
func sanitizeDuration(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}

// Relayout recomputes every block's StartTime from the cumulative durations
// of the blocks before it in the list. O(n), idempotent. A block whose stored
// duration is not a finite non-negative number is treated as duration 0 and
// its stored duration is corrected as well.
//
// Every structural or duration change to a channel's block list must be
// followed by this pass; no StartTime is valid input to scheduling otherwise.
func Relayout(blocks []*Block) []*Block {
	cursor := 0.0
	for _, b := range blocks {
		d := sanitizeDuration(b.Duration)
		b.Duration = d
		b.StartTime = cursor
		cursor += d
	}
	return blocks
}
