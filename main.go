// main.go - Main entry point for the Tactone sequencer

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
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m▄▄▄█████▓ ▄▄▄       ▄████▄  ▄▄▄█████▓ ▒█████   ███▄    █ ▓█████\033[0m\n\033[38;2;255;60;147m▓  ██▒ ▓▒▒████▄    ▒██▀ ▀█  ▓  ██▒ ▓▒▒██▒  ██▒ ██ ▀█   █ ▓█   ▀\033[0m\n\033[38;2;255;100;147m▒ ▓██░ ▒░▒██  ▀█▄  ▒▓█    ▄ ▒ ▓██░ ▒░▒██░  ██▒▓██  ▀█ ██▒▒███\033[0m\n\033[38;2;255;140;147m░ ▓██▓ ░ ░██▄▄▄▄██ ▒▓▓▄ ▄██▒░ ▓██▓ ░ ▒██   ██░▓██▒  ▐▌██▒▒▓█  ▄\033[0m\n\033[38;2;255;180;147m  ▒██▒ ░  ▓█   ▓██▒▒ ▓███▀ ░  ▒██▒ ░ ░ ████▓▒░▒██░   ▓██░░▒████▒\033[0m\n\033[38;2;255;220;147m  ▒ ░░    ▒▒   ▓▒█░░ ░▒ ▒  ░  ▒ ░░   ░ ▒░▒░▒░ ░ ▒░   ▒ ▒ ░░ ▒░ ░\033[0m\n\033[38;2;255;255;147m    ░      ▒   ▒▒ ░  ░  ▒       ░      ░ ▒ ▒░ ░ ░░   ░ ▒░ ░ ░  ░\033[0m")
	fmt.Println("\nA multi-channel tone and thermal timeline sequencer.")
	fmt.Println("(c) 2025 - 2026 Tactone Project")
	fmt.Println("https://github.com/tactone/tactone")
	fmt.Println("License: GPLv3 or later")
}

func parseAudioBackend(name string) (int, error) {
	switch name {
	case "oto":
		return AUDIO_BACKEND_OTO, nil
	case "null":
		return AUDIO_BACKEND_NULL, nil
	}
	return 0, fmt.Errorf("unknown audio backend %q (want oto or null)", name)
}

func main() {
	boilerPlate()

	var (
		backendName string
		scriptPath  string
		loop        bool
		quiet       bool
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&backendName, "backend", "oto", "Audio backend: oto or null")
	flagSet.StringVar(&scriptPath, "script", "", "Lua script to run against the project")
	flagSet.BoolVar(&loop, "loop", false, "Loop the sequence")
	flagSet.BoolVar(&quiet, "quiet", false, "No interactive console; play once and exit")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./tactone [-backend oto|null] [-loop] [-quiet] -script file.lua")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		flagSet.Usage()
		os.Exit(1)
	}

	backendID, err := parseAudioBackend(backendName)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	backend, err := NewSynthBackend(backendID)
	if err != nil {
		fmt.Printf("Failed to initialize audio: %v\n", err)
		os.Exit(1)
	}

	proj := NewProject(backend)
	defer proj.Close()
	proj.SetLooping(loop)

	host := NewScriptHost(proj)
	defer host.Close()

	if scriptPath != "" {
		if err := host.RunFile(scriptPath); err != nil {
			fmt.Printf("Script error: %v\n", err)
			os.Exit(1)
		}
	}

	if quiet {
		if proj.State() == STATE_IDLE {
			if err := proj.Play(); err != nil {
				fmt.Printf("Failed to start playback: %v\n", err)
				os.Exit(1)
			}
		}
		for proj.State() != STATE_IDLE {
			time.Sleep(50 * time.Millisecond)
		}
		return
	}

	console := NewTransportConsole(proj)
	if err := console.Run(); err != nil {
		fmt.Printf("Console error: %v\n", err)
		os.Exit(1)
	}
}
