package serialmux

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/gesturelock/internal/gesture"
)

const (
	EventTypeMotion  = "motion"
	EventTypeButton  = "button"
	EventTypeSwitch  = "switch"
	EventTypeConfig  = "config"
	EventTypeUnknown = "unknown"
)

// ErrMalformedLine is returned for a line whose prefix was recognised but
// whose fields could not be parsed.
var ErrMalformedLine = errors.New("malformed line")

// ClassifyPayload inspects a line from the board and returns its event type
// token. Classification only looks at the prefix; the field checks happen in
// ParseMotion and ParseInput.
func ClassifyPayload(payload string) string {
	switch {
	case strings.HasPrefix(payload, "A,"):
		return EventTypeMotion
	case strings.HasPrefix(payload, "B,"):
		return EventTypeButton
	case strings.HasPrefix(payload, "S,"):
		return EventTypeSwitch
	case strings.HasPrefix(payload, "{"):
		return EventTypeConfig
	}
	return EventTypeUnknown
}

// ParseMotion parses an "A,<ax>,<ay>,<az>" line.
func ParseMotion(line string) (gesture.Sample, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 4 || fields[0] != "A" {
		return gesture.Sample{}, fmt.Errorf("%w: want A,<ax>,<ay>,<az>, got %q", ErrMalformedLine, line)
	}
	var axes [3]float64
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return gesture.Sample{}, fmt.Errorf("%w: axis %d: %v", ErrMalformedLine, i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return gesture.Sample{}, fmt.Errorf("%w: axis %d is not finite", ErrMalformedLine, i)
		}
		axes[i] = v
	}
	return gesture.Sample{AX: axes[0], AY: axes[1], AZ: axes[2]}, nil
}

// FormatMotion renders a sample the way the board sends it.
func FormatMotion(s gesture.Sample) string {
	return fmt.Sprintf("A,%.3f,%.3f,%.3f", s.AX, s.AY, s.AZ)
}

// Button identifies one of the board's push buttons.
type Button byte

const (
	ButtonLeft  Button = 'L' // enroll
	ButtonRight Button = 'R' // unlock
)

// InputEvent is a parsed button or switch line.
type InputEvent struct {
	Type    string // EventTypeButton or EventTypeSwitch
	Button  Button
	Engaged bool
}

// ParseInput parses a "B,L", "B,R", "S,1" or "S,0" line.
func ParseInput(line string) (InputEvent, error) {
	line = strings.TrimSpace(line)
	switch line {
	case "B,L":
		return InputEvent{Type: EventTypeButton, Button: ButtonLeft}, nil
	case "B,R":
		return InputEvent{Type: EventTypeButton, Button: ButtonRight}, nil
	case "S,1":
		return InputEvent{Type: EventTypeSwitch, Engaged: true}, nil
	case "S,0":
		return InputEvent{Type: EventTypeSwitch, Engaged: false}, nil
	}
	return InputEvent{}, fmt.Errorf("%w: unknown input %q", ErrMalformedLine, line)
}
