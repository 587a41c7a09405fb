package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/1broseidon/winsettle/internal/config"
	"github.com/1broseidon/winsettle/internal/debounce"
	"github.com/1broseidon/winsettle/internal/platform"
	"github.com/1broseidon/winsettle/internal/window"
)

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsettle watch [--window ID] [--quiet DURATION] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Follow one window and print its geometry each time it settles.")
		fmt.Fprintln(os.Stderr, "Defaults to the active window. Output is JSON lines when stdout is not a terminal.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	windowFlag := fs.String("window", "", "Window ID (decimal or 0x hex); default: active window")
	quiet := fs.Duration("quiet", 0, "Quiet period (default: quiet_period from config)")
	jsonOut := fs.Bool("json", false, "Force JSON lines output")
	verbose := fs.Bool("v", false, "Log debouncer decisions to stderr")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "watch takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	quietPeriod := cfg.QuietPeriod
	if *quiet != 0 {
		if *quiet < 0 || *quiet > config.MaxQuietPeriod {
			fmt.Fprintf(os.Stderr, "--quiet must be between 0 and %s\n", config.MaxQuietPeriod)
			return 2
		}
		quietPeriod = *quiet
	}

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer backend.Disconnect()

	var id platform.WindowID
	if *windowFlag == "" {
		id, err = backend.ActiveWindow()
	} else {
		id, err = parseWindowID(*windowFlag)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	win, err := backend.Window(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	watch, err := backend.Watch(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer watch.Close()

	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if *verbose {
		level.Set(slog.LevelDebug)
	}
	d := debounce.New(debounce.Config{QuietPeriod: quietPeriod, Logger: newLogger(level)})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go backend.EventLoop()
	defer backend.Quit()

	asJSON := *jsonOut || !term.IsTerminal(int(os.Stdout.Fd()))
	if !asJSON {
		fmt.Fprintf(os.Stderr, "watching 0x%08x %q (%s), quiet period %s\n", uint32(win.ID), win.Title, win.AppID, d.QuietPeriod())
	}

	for ev := range d.Process(ctx, watch.Events()) {
		if err := writeEvent(os.Stdout, time.Now(), win.ID, ev, asJSON); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}

func parseWindowID(s string) (platform.WindowID, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window ID %q: %w", s, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("invalid window ID %q", s)
	}
	return platform.WindowID(v), nil
}

type settledRecord struct {
	Time     time.Time `json:"time"`
	WindowID uint32    `json:"window_id"`
	Type     string    `json:"type"`
	X        *int      `json:"x,omitempty"`
	Y        *int      `json:"y,omitempty"`
	Width    *uint     `json:"width,omitempty"`
	Height   *uint     `json:"height,omitempty"`
}

func writeEvent(w io.Writer, at time.Time, id platform.WindowID, ev window.Event, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintf(w, "%s  %s\n", at.Format("15:04:05.000"), ev)
		return err
	}

	rec := settledRecord{Time: at, WindowID: uint32(id)}
	switch e := ev.(type) {
	case window.Moved:
		rec.Type = "moved"
		rec.X, rec.Y = &e.Position.X, &e.Position.Y
	case window.Resized:
		rec.Type = "resized"
		rec.Width, rec.Height = &e.Size.Width, &e.Size.Height
	default:
		rec.Type = ev.String()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
