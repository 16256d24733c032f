package serialmux

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/banshee-data/gesturelock/internal/gesture"
	"github.com/banshee-data/gesturelock/internal/monitoring"
)

var logf = monitoring.Component("serial")

// ErrNoSample is returned by DeviceMotion.ReadAxes before the board has sent
// its first reading.
var ErrNoSample = errors.New("no motion sample received yet")

// DeviceMotion is a gesture.MotionSource backed by the board's A lines.
// ReadAxes returns the most recent reading.
type DeviceMotion struct {
	mu     sync.Mutex
	latest gesture.Sample
	have   bool
	count  uint64
}

// Update stores s as the latest reading.
func (m *DeviceMotion) Update(s gesture.Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = s
	m.have = true
	m.count++
}

// ReadAxes implements gesture.MotionSource.
func (m *DeviceMotion) ReadAxes() (gesture.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.have {
		return gesture.Sample{}, ErrNoSample
	}
	return m.latest, nil
}

// Received returns how many readings have arrived.
func (m *DeviceMotion) Received() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// DeviceInput is a lock.Input backed by the board's B and S lines. Each
// button latches one pending press that the next poll consumes; the switch
// reports its current level.
type DeviceInput struct {
	mu       sync.Mutex
	enroll   bool
	unlock   bool
	override bool
}

// Press latches a press of b.
func (d *DeviceInput) Press(b Button) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch b {
	case ButtonLeft:
		d.enroll = true
	case ButtonRight:
		d.unlock = true
	}
}

// SetSwitch records the slide switch level.
func (d *DeviceInput) SetSwitch(engaged bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.override = engaged
}

func (d *DeviceInput) EnrollRequested() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	hit := d.enroll
	d.enroll = false
	return hit
}

func (d *DeviceInput) UnlockRequested() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	hit := d.unlock
	d.unlock = false
	return hit
}

func (d *DeviceInput) OverrideEngaged() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.override
}

// Device routes board lines to its Motion and Input and keeps the merged
// device config the board reports.
type Device struct {
	Motion *DeviceMotion
	Input  *DeviceInput

	mu     sync.Mutex
	config map[string]any
}

// NewDevice returns a Device with no readings and no pending input.
func NewDevice() *Device {
	return &Device{
		Motion: &DeviceMotion{},
		Input:  &DeviceInput{},
		config: make(map[string]any),
	}
}

// HandleLine applies a single line from the board. Unknown lines are
// ignored; malformed known lines are returned as errors.
func (d *Device) HandleLine(line string) error {
	switch ClassifyPayload(line) {
	case EventTypeMotion:
		s, err := ParseMotion(line)
		if err != nil {
			return err
		}
		d.Motion.Update(s)
	case EventTypeButton, EventTypeSwitch:
		ev, err := ParseInput(line)
		if err != nil {
			return err
		}
		if ev.Type == EventTypeButton {
			d.Input.Press(ev.Button)
		} else {
			d.Input.SetSwitch(ev.Engaged)
		}
	case EventTypeConfig:
		var values map[string]any
		if err := json.Unmarshal([]byte(line), &values); err != nil {
			return err
		}
		d.mu.Lock()
		for k, v := range values {
			d.config[k] = v
		}
		d.mu.Unlock()
	}
	return nil
}

// Config returns a copy of the config values reported by the board.
func (d *Device) Config() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]any, len(d.config))
	for k, v := range d.config {
		out[k] = v
	}
	return out
}

// Listen subscribes to mux and applies every line until ctx is done or the
// mux closes the subscription.
func (d *Device) Listen(ctx context.Context, mux SerialMuxInterface) error {
	id, lines := mux.Subscribe()
	defer mux.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := d.HandleLine(line); err != nil {
				logf("ignoring line %q: %v", line, err)
			}
		}
	}
}
