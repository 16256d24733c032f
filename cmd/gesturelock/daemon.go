package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/banshee-data/gesturelock/internal/api"
	"github.com/banshee-data/gesturelock/internal/config"
	"github.com/banshee-data/gesturelock/internal/db"
	"github.com/banshee-data/gesturelock/internal/gesture"
	"github.com/banshee-data/gesturelock/internal/lock"
	"github.com/banshee-data/gesturelock/internal/serialmux"
	"github.com/banshee-data/gesturelock/internal/timeutil"
)

type mode string

const (
	modeSerial   mode = "serial"
	modeDev      mode = "dev"
	modeDisabled mode = "disabled"
)

func selectMode(dev, disabled bool) mode {
	switch {
	case disabled:
		return modeDisabled
	case dev:
		return modeDev
	}
	return modeSerial
}

type daemonOptions struct {
	LockConfig          *config.LockConfig
	Mode                mode
	PortPath            string
	Port                serialmux.PortOptions
	DBPath              string
	AllowRemoteOverride bool
	Verbose             bool
	Clock               timeutil.Clock
}

// daemon is everything main runs, wired together.
type daemon struct {
	mode    mode
	mux     serialmux.SerialMuxInterface
	device  *serialmux.Device
	journal *db.DB
	ctrl    *lock.Controller
	runner  *lock.Runner
	board   *lock.StatusBoard
	remote  *api.RemoteInput
	trace   *api.TraceRecorder
}

func newDaemon(o daemonOptions) (*daemon, error) {
	if o.LockConfig == nil {
		o.LockConfig = config.EmptyLockConfig()
	}
	if o.Clock == nil {
		o.Clock = timeutil.RealClock{}
	}
	settings, err := o.LockConfig.LockSettings()
	if err != nil {
		return nil, fmt.Errorf("invalid lock settings: %w", err)
	}

	d := &daemon{
		mode:   o.Mode,
		device: serialmux.NewDevice(),
		board:  &lock.StatusBoard{},
		remote: api.NewRemoteInput(o.AllowRemoteOverride),
		trace:  &api.TraceRecorder{},
	}

	var source gesture.MotionSource = d.device.Motion
	var synthetic *gesture.SyntheticSource
	switch o.Mode {
	case modeDisabled:
		d.mux = serialmux.NewDisabledSerialMux()
		synthetic = gesture.NewSyntheticSource(o.Clock)
		source = synthetic
	case modeDev:
		synthetic = gesture.NewSyntheticSource(o.Clock)
		d.mux, _ = serialmux.NewMockSerialMux(synthetic, settings.Capture.SampleInterval)
	default:
		board, err := serialmux.NewRealSerialMux(o.PortPath, o.Port)
		if err != nil {
			return nil, fmt.Errorf("failed to open motion board: %w", err)
		}
		d.mux = board
	}
	if err := d.mux.Initialize(settings.Capture.SampleInterval); err != nil {
		d.mux.Close()
		return nil, fmt.Errorf("failed to initialize motion board: %w", err)
	}

	if d.journal, err = db.NewDB(o.DBPath); err != nil {
		d.mux.Close()
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	status := &lock.StatusSink{Board: d.board}
	sinks := lock.MultiSink{
		&lock.LogSink{Verbose: o.Verbose},
		db.NewJournal(d.journal),
		d.trace,
		status,
	}
	if synthetic != nil {
		sinks = append(sinks, rewindOnCapture{synthetic})
	}
	d.ctrl, err = lock.NewController(settings, source, lock.WithClock(o.Clock), lock.WithSink(sinks))
	if err != nil {
		d.Close()
		return nil, err
	}
	status.Controller = d.ctrl

	opts := o.LockConfig.RunnerOptions()
	opts.Clock = o.Clock
	opts.Board = d.board
	d.runner = lock.NewRunner(d.ctrl, lock.MultiInput{d.device.Input, d.remote}, opts)
	return d, nil
}

// ServeMux returns the API routes plus the serial and journal admin routes.
func (d *daemon) ServeMux() (*http.ServeMux, error) {
	mux := api.NewServer(d.board, d.journal, d.remote, d.trace).ServeMux()
	d.mux.AttachAdminRoutes(mux)
	if err := d.journal.AttachAdminRoutes(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

func (d *daemon) Close() error {
	var firstErr error
	if d.mux != nil {
		firstErr = d.mux.Close()
	}
	if d.journal != nil {
		if err := d.journal.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type rewinder interface {
	Rewind()
}

// rewindOnCapture restarts a simulated gesture whenever a capture begins,
// so enrollment and unlock attempts both read it from phase zero.
type rewindOnCapture struct {
	src rewinder
}

func (r rewindOnCapture) Emit(e lock.Event) {
	if e.Kind == lock.EventRecordingStarted || e.Kind == lock.EventCheckingStarted {
		r.src.Rewind()
	}
}

// startupBanner describes the effective settings.
func startupBanner(s lock.Config) string {
	return fmt.Sprintf("capture=%d samples/%v every %v threshold=%.2f tolerance=%.2f attempts=%d lockout=%v",
		s.Capture.Capacity, s.Capture.MaxDuration, s.Capture.SampleInterval,
		s.AcceptThreshold, s.Tolerance, s.MaxAttempts, s.LockoutDuration.Round(time.Second))
}
