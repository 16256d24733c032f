package serialmux

import (
	"context"
	"testing"
	"time"

	"github.com/banshee-data/gesturelock/internal/gesture"
)

func TestMockSerialMux_StreamsMotion(t *testing.T) {
	src := gesture.NewScriptedSource(gesture.Sample{AX: 1, AY: 2, AZ: 3})
	src.Hold = true
	mux, _ := NewMockSerialMux(src, time.Millisecond)
	defer mux.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d := NewDevice()
	go mux.Monitor(ctx)
	go d.Listen(ctx, mux)

	for d.Motion.Received() == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("no motion sample received from mock port")
		case <-time.After(5 * time.Millisecond):
		}
	}
	got, err := d.Motion.ReadAxes()
	if err != nil {
		t.Fatalf("ReadAxes() error = %v", err)
	}
	if want := (gesture.Sample{AX: 1, AY: 2, AZ: 3}); got != want {
		t.Errorf("ReadAxes() = %v, want %v", got, want)
	}
}

func TestMockSerialPort_RecordsCommandsAndEchoesInput(t *testing.T) {
	src := gesture.NewScriptedSource()
	mux, port := NewMockSerialMux(src, time.Hour)
	defer mux.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, lines := mux.Subscribe()
	go mux.Monitor(ctx)

	if err := mux.Initialize(20 * time.Millisecond); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	want := StartupCommands(20 * time.Millisecond)
	got := port.Commands()
	if len(got) != len(want) {
		t.Fatalf("Commands() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, got[i], want[i])
		}
	}

	if err := mux.SendCommand("B,L"); err != nil {
		t.Fatalf("SendCommand(B,L) error = %v", err)
	}
	select {
	case line := <-lines:
		if line != "B,L" {
			t.Errorf("echoed line = %q, want B,L", line)
		}
	case <-ctx.Done():
		t.Fatal("B,L was not echoed back")
	}
}

func TestTestableSerialPort(t *testing.T) {
	port := NewTestableSerialPort()
	port.AddReadData([]byte("A,1,1,1\n"))

	buf := make([]byte, 64)
	n, err := port.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := string(buf[:n]); got != "A,1,1,1\n" {
		t.Errorf("Read() = %q", got)
	}

	port.Write([]byte("RESET\n"))
	if got := string(port.GetWrittenData()); got != "RESET\n" {
		t.Errorf("GetWrittenData() = %q", got)
	}
	if port.ReadCalls != 1 || port.WriteCalls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", port.ReadCalls, port.WriteCalls)
	}

	port.Close()
	if _, err := port.Write([]byte("x")); err == nil {
		t.Error("Write after Close should fail")
	}

	port.Reset()
	if port.Closed || port.ReadCalls != 0 {
		t.Error("Reset did not clear state")
	}
}
