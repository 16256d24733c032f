package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/gesturelock/internal/api"
	"github.com/banshee-data/gesturelock/internal/config"
	"github.com/banshee-data/gesturelock/internal/serialmux"
	"github.com/banshee-data/gesturelock/internal/version"
)

var (
	configPath          = flag.String("config", "", "Path to a lock config JSON file (defaults built in)")
	listen              = flag.String("listen", ":8080", "Listen address")
	port                = flag.String("port", "/dev/ttyACM0", "Serial port of the motion board (ignored in dev mode)")
	baud                = flag.Int("baud", serialmux.DefaultBaudRate, "Serial baud rate")
	devMode             = flag.Bool("dev", false, "Run in dev mode with a simulated motion board")
	dbPath              = flag.String("db", ":memory:", "Event journal sqlite path")
	allowRemoteOverride = flag.Bool("allow-remote-override", false, "Allow POST /api/override to force the lock open")
	disableSerial       = flag.Bool("disable-serial", false, "Run without a motion board, reading a synthetic gesture")
	verbose             = flag.Bool("verbose", false, "Log every captured sample")
	showVersion         = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("gesturelock %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if !*devMode && !*disableSerial && *port == "" {
		log.Fatal("Serial port is required")
	}

	lockCfg := config.EmptyLockConfig()
	if *configPath != "" {
		var err error
		if lockCfg, err = config.LoadLockConfig(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	d, err := newDaemon(daemonOptions{
		LockConfig:          lockCfg,
		Mode:                selectMode(*devMode, *disableSerial),
		PortPath:            *port,
		Port:                serialmux.PortOptions{BaudRate: *baud},
		DBPath:              *dbPath,
		AllowRemoteOverride: *allowRemoteOverride,
		Verbose:             *verbose,
	})
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer d.Close()

	log.Printf("gesturelock %s starting (mode=%s, journal=%s)", version.Version, d.mode, d.journal.Path())
	log.Printf("lock settings: %s", startupBanner(d.ctrl.Config()))

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the monitor routine to manage IO on the serial port
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.mux.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("failed to monitor serial port: %v", err)
		}
		log.Print("monitor routine terminated")
	}()

	// route board lines to the device motion source and buttons
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.device.Listen(ctx, d.mux); err != nil && err != context.Canceled {
			log.Printf("device listener stopped: %v", err)
		}
		log.Print("device routine terminated")
	}()

	// the lock's polling loop
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.runner.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("lock loop stopped: %v", err)
		}
		log.Print("lock routine terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux, err := d.ServeMux()
		if err != nil {
			log.Printf("failed to build routes: %v", err)
			stop()
			return
		}

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
