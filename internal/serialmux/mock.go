package serialmux

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/banshee-data/gesturelock/internal/gesture"
)

// MockSerialPort simulates the motion board. Readings from its source are
// streamed as A lines; B and S lines written to it are echoed back so that
// the admin send-command page can press buttons in dev mode.
type MockSerialPort struct {
	r *io.PipeReader
	w *io.PipeWriter

	writeMu  sync.Mutex
	mu       sync.Mutex
	commands []string
	done     chan struct{}
	once     sync.Once
}

func (m *MockSerialPort) Read(p []byte) (int, error) {
	return m.r.Read(p)
}

// Write records host commands and echoes board lines back to the reader.
func (m *MockSerialPort) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch ClassifyPayload(line) {
		case EventTypeButton, EventTypeSwitch, EventTypeMotion:
			if err := m.Inject(line); err != nil {
				return 0, err
			}
		default:
			m.mu.Lock()
			m.commands = append(m.commands, line)
			m.mu.Unlock()
		}
	}
	return len(p), nil
}

// Inject writes a line to the read side as if the board had sent it.
func (m *MockSerialPort) Inject(line string) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_, err := io.WriteString(m.w, line+"\n")
	return err
}

// Commands returns the host commands written so far.
func (m *MockSerialPort) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

func (m *MockSerialPort) Close() error {
	m.once.Do(func() {
		close(m.done)
		m.w.Close()
		m.r.Close()
	})
	return nil
}

// NewMockSerialPort returns a MockSerialPort that emits one reading from
// src every interval until closed.
func NewMockSerialPort(src gesture.MotionSource, interval time.Duration) *MockSerialPort {
	r, w := io.Pipe()
	m := &MockSerialPort{r: r, w: w, done: make(chan struct{})}
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.done:
				return
			case <-ticker.C:
			}
			s, err := src.ReadAxes()
			if err != nil {
				continue
			}
			if err := m.Inject(FormatMotion(s)); err != nil {
				return
			}
		}
	}()

	return m
}

// NewMockSerialMux creates a SerialMux instance backed by a MockSerialPort.
func NewMockSerialMux(src gesture.MotionSource, interval time.Duration) (*SerialMux[*MockSerialPort], *MockSerialPort) {
	port := NewMockSerialPort(src, interval)
	return NewSerialMux(port), port
}

// TestableSerialPort implements SerialPorter with configurable behaviour for testing.
type TestableSerialPort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port
	WriteBuffer *bytes.Buffer

	// ReadLatency adds a delay to each Read call
	ReadLatency time.Duration

	// WriteLatency adds a delay to each Write call
	WriteLatency time.Duration

	// ReadError is returned by the next Read call if set
	ReadError error

	// WriteError is returned by the next Write call if set
	WriteError error

	// CloseError is returned by Close if set
	CloseError error

	// Closed indicates whether Close was called
	Closed bool

	// ReadCalls records the number of Read calls
	ReadCalls int

	// WriteCalls records the number of Write calls
	WriteCalls int

	// BlockReads causes Read to block until data is added or Close is called
	BlockReads bool

	// readCond is used to signal blocked readers
	readCond *sync.Cond
}

// NewTestableSerialPort creates a new TestableSerialPort for testing.
func NewTestableSerialPort() *TestableSerialPort {
	tsp := &TestableSerialPort{
		ReadBuffer:  bytes.NewBuffer(nil),
		WriteBuffer: bytes.NewBuffer(nil),
	}
	tsp.readCond = sync.NewCond(&tsp.mu)
	return tsp
}

// Read reads from the read buffer, optionally simulating latency and errors.
func (t *TestableSerialPort) Read(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadCalls++

	if t.Closed {
		return 0, errors.New("serial port closed")
	}

	if t.ReadError != nil {
		err := t.ReadError
		t.ReadError = nil
		return 0, err
	}

	if t.ReadLatency > 0 {
		t.mu.Unlock()
		time.Sleep(t.ReadLatency)
		t.mu.Lock()
	}

	// If blocking reads are enabled and buffer is empty, wait for data
	if t.BlockReads && t.ReadBuffer.Len() == 0 {
		for !t.Closed && t.ReadBuffer.Len() == 0 {
			t.readCond.Wait()
		}
		if t.Closed {
			return 0, errors.New("serial port closed")
		}
	}

	return t.ReadBuffer.Read(p)
}

// Write writes to the write buffer, optionally simulating latency and errors.
func (t *TestableSerialPort) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.WriteCalls++

	if t.Closed {
		return 0, errors.New("serial port closed")
	}

	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}

	if t.WriteLatency > 0 {
		t.mu.Unlock()
		time.Sleep(t.WriteLatency)
		t.mu.Lock()
	}

	return t.WriteBuffer.Write(p)
}

// Close marks the port as closed.
func (t *TestableSerialPort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Closed = true
	t.readCond.Broadcast() // Wake up any blocked readers

	return t.CloseError
}

// AddReadData adds data to be returned by subsequent Read calls.
func (t *TestableSerialPort) AddReadData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadBuffer.Write(data)
	t.readCond.Signal() // Wake up a blocked reader
}

// GetWrittenData returns all data written to the port.
func (t *TestableSerialPort) GetWrittenData() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.WriteBuffer.Bytes()
}

// Reset clears all buffers and resets state.
func (t *TestableSerialPort) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadBuffer.Reset()
	t.WriteBuffer.Reset()
	t.ReadCalls = 0
	t.WriteCalls = 0
	t.Closed = false
	t.ReadError = nil
	t.WriteError = nil
	t.CloseError = nil
	t.ReadLatency = 0
	t.WriteLatency = 0
}
