// thermal.go - Thermal actuator command mapping and driver interface

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
	"sync"
)

type ThermalType int

const (
	THERMAL_COOL ThermalType = iota
	THERMAL_HOT
)

func (t ThermalType) String() string {
	switch t {
	case THERMAL_COOL:
		return "cool"
	case THERMAL_HOT:
		return "hot"
	}
	return "unknown"
}

func ParseThermalType(name string) (ThermalType, bool) {
	switch name {
	case "cool":
		return THERMAL_COOL, true
	case "hot":
		return THERMAL_HOT, true
	}
	return THERMAL_COOL, false
}

type ThermalIntensity int

const (
	THERMAL_LOW ThermalIntensity = iota
	THERMAL_MID
	THERMAL_HIGH
	THERMAL_RAPID
)

func (i ThermalIntensity) String() string {
	switch i {
	case THERMAL_LOW:
		return "low"
	case THERMAL_MID:
		return "mid"
	case THERMAL_HIGH:
		return "high"
	case THERMAL_RAPID:
		return "rapid"
	}
	return "unknown"
}

func ParseThermalIntensity(name string) (ThermalIntensity, bool) {
	switch name {
	case "low":
		return THERMAL_LOW, true
	case "mid":
		return THERMAL_MID, true
	case "high":
		return THERMAL_HIGH, true
	case "rapid":
		return THERMAL_RAPID, true
	}
	return THERMAL_LOW, false
}

// Peripheral addressing: the actuator exposes one writable characteristic
// on a fixed service. Discovery and the wireless link itself live in the
// host's driver, not here.
const (
	THERMAL_SERVICE_UUID    = "7a0e9d40-51c3-4f11-9b2e-c4de0a6b3f01"
	THERMAL_WRITE_CHAR_UUID = "7a0e9d41-51c3-4f11-9b2e-c4de0a6b3f01"
)

// Command frames are 16 ASCII-hex characters plus CR/LF, 18 bytes on the
// wire. Layout: F0 header, opcode (00 off / 01 on / 02 set), type
// (01 cool / 02 hot), level (01 low / 02 mid / 03 high / 04 rapid), three
// reserved zero bytes, XOR checksum of the preceding seven. Writes are
// fire-and-forget; the protocol has no response frame.
const (
	thermalFrameOff       = "F0000000000000F0"
	thermalFrameOn        = "F0010000000000F1"
	thermalFrameCoolLow   = "F0020101000000F2"
	thermalFrameCoolMid   = "F0020102000000F1"
	thermalFrameCoolHigh  = "F0020103000000F0"
	thermalFrameCoolRapid = "F0020104000000F7"
	thermalFrameHotLow    = "F0020201000000F1"
	thermalFrameHotMid    = "F0020202000000F2"
	thermalFrameHotHigh   = "F0020203000000F3"
)

type thermalKey struct {
	kind      ThermalType
	intensity ThermalIntensity
}

// The mapping is a fixed lookup table. HotRapid does not exist on the
// device; requesting it is a client error.
var thermalFrames = map[thermalKey]string{
	{THERMAL_COOL, THERMAL_LOW}:   thermalFrameCoolLow,
	{THERMAL_COOL, THERMAL_MID}:   thermalFrameCoolMid,
	{THERMAL_COOL, THERMAL_HIGH}:  thermalFrameCoolHigh,
	{THERMAL_COOL, THERMAL_RAPID}: thermalFrameCoolRapid,
	{THERMAL_HOT, THERMAL_LOW}:    thermalFrameHotLow,
	{THERMAL_HOT, THERMAL_MID}:    thermalFrameHotMid,
	{THERMAL_HOT, THERMAL_HIGH}:   thermalFrameHotHigh,
}

func frameBytes(frame string) []byte {
	return []byte(frame + "\r\n")
}

// MapThermalCommand translates (type, intensity) into the wire frame for
// the actuator. Unknown combinations return ErrUnknownCommand.
func MapThermalCommand(kind ThermalType, intensity ThermalIntensity) ([]byte, error) {
	frame, ok := thermalFrames[thermalKey{kind, intensity}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownCommand, kind, intensity)
	}
	return frameBytes(frame), nil
}

// ThermalOnFrame and ThermalOffFrame are the power commands surrounding a
// sequence of set commands.
func ThermalOnFrame() []byte  { return frameBytes(thermalFrameOn) }
func ThermalOffFrame() []byte { return frameBytes(thermalFrameOff) }

// ActuatorDriver is the host-provided transport to the peripheral's write
// characteristic.
type ActuatorDriver interface {
	Write(frame []byte) error
	Connected() bool
}

// ThermalActuator fronts the driver with command mapping and a disconnect
// observer. It shares no state with the playback scheduler; actuator
// failures never affect audio scheduling.
type ThermalActuator struct {
	mu           sync.Mutex
	driver       ActuatorDriver
	onDisconnect func(error)
}

func NewThermalActuator(driver ActuatorDriver) *ThermalActuator {
	return &ThermalActuator{driver: driver}
}

// SetDisconnectHandler registers the single observer for peripheral
// disconnect events. A later registration replaces the earlier one.
func (a *ThermalActuator) SetDisconnectHandler(fn func(error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onDisconnect = fn
}

// NotifyDisconnect is called by the driver host when the peripheral drops.
func (a *ThermalActuator) NotifyDisconnect(err error) {
	a.mu.Lock()
	fn := a.onDisconnect
	a.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (a *ThermalActuator) Available() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.driver != nil && a.driver.Connected()
}

// Send maps and writes one set command. Retryable on
// ErrActuatorUnavailable; ErrUnknownCommand means the command was dropped.
func (a *ThermalActuator) Send(kind ThermalType, intensity ThermalIntensity) error {
	frame, err := MapThermalCommand(kind, intensity)
	if err != nil {
		return err
	}
	return a.write(frame)
}

func (a *ThermalActuator) On() error  { return a.write(ThermalOnFrame()) }
func (a *ThermalActuator) Off() error { return a.write(ThermalOffFrame()) }

func (a *ThermalActuator) write(frame []byte) error {
	a.mu.Lock()
	driver := a.driver
	a.mu.Unlock()
	if driver == nil || !driver.Connected() {
		return ErrActuatorUnavailable
	}
	if err := driver.Write(frame); err != nil {
		return fmt.Errorf("%w: %v", ErrActuatorUnavailable, err)
	}
	return nil
}

// ThermalEvent is one actuation window on the shared timeline. Timing
// comes from the same Relayout pass as audio; executing the window is the
// host driver's job.
type ThermalEvent struct {
	At        float64
	Duration  float64
	Frame     []byte
	Kind      ThermalType
	Intensity ThermalIntensity
}

// ThermalSchedule extracts the actuation windows of a thermal channel.
// Blocks with unknown command combinations are skipped.
func ThermalSchedule(ch *Channel) []ThermalEvent {
	if ch.Kind != CHANNEL_THERMAL {
		return nil
	}
	var events []ThermalEvent
	for _, b := range ch.Blocks {
		if b.Kind != BLOCK_THERMAL {
			continue
		}
		frame, err := MapThermalCommand(b.ThermalType, b.ThermalIntensity)
		if err != nil {
			continue
		}
		events = append(events, ThermalEvent{
			At:        b.StartTime,
			Duration:  b.Duration,
			Frame:     frame,
			Kind:      b.ThermalType,
			Intensity: b.ThermalIntensity,
		})
	}
	return events
}
