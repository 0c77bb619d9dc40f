//go:build windows

// transport_console_windows.go - Interactive transport control, Windows stdin

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
	"os"
	"time"

	"github.com/hako/durafmt"
	"golang.org/x/term"
)

// TransportConsole drives a project from raw-mode stdin. Only instantiated
// in main.go for interactive use — never in tests.
//
// Keys: space play/stop, l toggle loop, +/- master volume, q quit.
// Windows stdin has no nonblocking mode, so reads block in their own
// goroutine and quit is signalled through done.
type TransportConsole struct {
	proj         *Project
	done         chan struct{}
	fd           int
	oldTermState *term.State
}

func NewTransportConsole(proj *Project) *TransportConsole {
	return &TransportConsole{
		proj: proj,
		done: make(chan struct{}),
	}
}

// Run puts the terminal in raw mode and blocks until the user quits. The
// terminal state is always restored on return.
func (c *TransportConsole) Run() error {
	c.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(c.fd)
	if err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	c.oldTermState = oldState
	defer c.restore()

	go c.readKeys()

	fmt.Printf("sequence length %s\r\n", durafmt.Parse(secondsToDuration(c.proj.SequenceDuration())).LimitFirstN(2))
	fmt.Printf("[space] play/stop  [l] loop  [+/-] volume  [q] quit\r\n")

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			fmt.Printf("\r\n")
			return nil
		case <-ticker.C:
			c.printStatus()
		}
	}
}

func (c *TransportConsole) restore() {
	if c.oldTermState != nil {
		_ = term.Restore(c.fd, c.oldTermState)
		c.oldTermState = nil
	}
}

func (c *TransportConsole) readKeys() {
	defer close(c.done)
	buf := make([]byte, 1)

	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			if quit := c.handleKey(buf[0]); quit {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (c *TransportConsole) handleKey(b byte) bool {
	switch b {
	case ' ':
		if c.proj.State() == STATE_IDLE {
			if err := c.proj.Play(); err != nil {
				fmt.Printf("\r\nplay: %v\r\n", err)
			}
		} else {
			c.proj.Stop()
		}
	case 'l':
		c.proj.SetLooping(!c.proj.Looping())
	case '+', '=':
		c.proj.SetMasterVolume(c.proj.MasterVolume() + 0.05)
	case '-', '_':
		c.proj.SetMasterVolume(c.proj.MasterVolume() - 0.05)
	case 'q', 3: // q or Ctrl-C
		c.proj.Stop()
		return true
	}
	return false
}

func (c *TransportConsole) printStatus() {
	loop := " "
	if c.proj.Looping() {
		loop = "L"
	}
	fmt.Printf("\r%-9s [%s] %6.2fs / %.2fs  vol %3.0f%%   ",
		c.proj.State(), loop, c.proj.CurrentTime(), c.proj.SequenceDuration(),
		c.proj.MasterVolume()*100)
}
