package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winsettle/internal/config"
	"github.com/1broseidon/winsettle/internal/daemon"
	"github.com/1broseidon/winsettle/internal/hotkeys"
	"github.com/1broseidon/winsettle/internal/ipc"
	"github.com/1broseidon/winsettle/internal/platform"
	"github.com/1broseidon/winsettle/internal/runtimepath"
	"github.com/1broseidon/winsettle/internal/store"
	"github.com/1broseidon/winsettle/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: winsettle daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: winsettle daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "geometry":
		os.Exit(runGeometry(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winsettle <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the winsettle daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  watch               Print settled move/resize events for one window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  geometry list       List stored window geometry")
	fmt.Fprintln(w, "  geometry forget     Forget stored geometry for a window key")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Write a default config file")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive dashboard")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winsettle <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsettle status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	jsonOut := fs.Bool("json", false, "Output status as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	fmt.Printf("quiet_period:    %s\n", time.Duration(status.QuietPeriodMS)*time.Millisecond)
	fmt.Printf("store_file:      %s\n", status.StoreFile)
	fmt.Printf("stored_windows:  %d\n", status.StoredCount)
	fmt.Printf("tracked_windows: %d\n", len(status.Tracked))
	for _, tw := range status.Tracked {
		fmt.Printf("  0x%08x  %-20s %s\n", uint32(tw.ID), tw.Key, tw.Title)
	}
	return 0
}

func printGeometryUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  winsettle geometry list [--json]")
	fmt.Fprintln(w, "  winsettle geometry forget <key>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Both commands read the store file directly when the daemon is not running.")
}

func runGeometry(args []string) int {
	if len(args) == 0 {
		printGeometryUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printGeometryUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		jsonOut := fs.Bool("json", false, "Output entries as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		entries, err := client.ListGeometry()
		if err != nil {
			st, storeErr := configuredStore()
			if storeErr != nil {
				fmt.Fprintln(os.Stderr, storeErr)
				return 1
			}
			entries = st.List()
		}
		if *jsonOut {
			return printJSON(entries)
		}
		if len(entries) == 0 {
			fmt.Println("no stored geometry")
			return 0
		}
		for _, e := range entries {
			g := e.Geometry
			fmt.Printf("%-24s %5d,%-5d %5dx%-5d %s\n",
				e.Key, g.Position.X, g.Position.Y, g.Size.Width, g.Size.Height,
				e.UpdatedAt.Local().Format(time.DateTime))
		}
		return 0

	case "forget":
		fs := flag.NewFlagSet("forget", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "geometry forget requires <key>")
			return 2
		}
		key := fs.Arg(0)

		removed, err := client.ForgetGeometry(key)
		if err != nil {
			st, storeErr := configuredStore()
			if storeErr != nil {
				fmt.Fprintln(os.Stderr, storeErr)
				return 1
			}
			removed = st.Delete(key)
			if removed {
				if err := st.Save(); err != nil {
					fmt.Fprintln(os.Stderr, err)
					return 1
				}
			}
		}
		if !removed {
			fmt.Fprintf(os.Stderr, "no stored geometry for %q\n", key)
			return 1
		}
		fmt.Printf("forgot %s\n", key)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown geometry subcommand: %s\n\n", args[0])
		printGeometryUsage(os.Stderr)
		return 2
	}
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  winsettle config init [--force]")
		fmt.Fprintln(os.Stderr, "  winsettle config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  winsettle config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  winsettle config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		force := fs.Bool("force", false, "Overwrite an existing config file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if _, err := os.Stat(path); err == nil && !*force {
			fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", path)
			return 1
		}
		if err := config.DefaultConfig().Save(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("wrote %s\n", path)
		return 0

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winsettle/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winsettle/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		_ = printEffective // default
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			if res.File != "" {
				fmt.Printf("# file: %s\n", res.File)
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/winsettle/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsettle tui")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive view of tracked windows, stored geometry and settings.")
		fmt.Fprintln(os.Stderr, "Works against the store file when the daemon is not running.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab, 1-3  Switch tabs")
		fmt.Fprintln(os.Stderr, "  ↑/↓       Select stored geometry")
		fmt.Fprintln(os.Stderr, "  x         Forget selected geometry")
		fmt.Fprintln(os.Stderr, "  e         Edit settings (config tab)")
		fmt.Fprintln(os.Stderr, "  r         Refresh")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	st, err := openStore(cfg.StateFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := tui.Run(ipc.NewClient(), st.Path(), cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}

// openStore opens the geometry store at override, or the default location.
func openStore(override string) (*store.Store, error) {
	path := override
	if path == "" {
		var err error
		path, err = runtimepath.GeometryStorePath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}

// configuredStore opens the store named by state_file, or the default one
// when the config cannot be loaded.
func configuredStore() (*store.Store, error) {
	override := ""
	if cfg, err := config.Load(); err == nil {
		override = cfg.StateFile
	}
	return openStore(override)
}

// printJSON writes v indented when stdout is a terminal and compact otherwise.
func printJSON(v any) int {
	var (
		data []byte
		err  error
	)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}

func newLogger(level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func reconcilerConfig(cfg *config.Config, logger *slog.Logger) daemon.ReconcilerConfig {
	return daemon.ReconcilerConfig{
		Interval:    cfg.RescanInterval,
		QuietPeriod: cfg.QuietPeriod,
		Restore:     cfg.RestoreOnStart,
		Windows:     cfg.Windows,
		Logger:      logger,
	}
}

// restartRequired lists the keys that differ between prev and next and are
// only read at daemon startup.
func restartRequired(prev, next *config.Config) []string {
	var keys []string
	if prev.Display != next.Display {
		keys = append(keys, "display")
	}
	if prev.StateFile != next.StateFile {
		keys = append(keys, "state_file")
	}
	if prev.RestoreHotkey != next.RestoreHotkey {
		keys = append(keys, "restore_hotkey")
	}
	return keys
}

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (quiet period: %s, %d window rules)", cfg.QuietPeriod, len(cfg.Windows))

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := newLogger(level)

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	st, err := openStore(cfg.StateFile)
	if err != nil {
		log.Fatalf("Failed to open geometry store: %v", err)
	}
	log.Printf("Geometry store: %s (%d entries)", st.Path(), len(st.List()))

	reconciler := daemon.NewReconciler(reconcilerConfig(cfg, logger), backend, st)

	if cfg.RestoreHotkey != "" {
		hotkeyHandler := hotkeys.NewHandler(backend, daemon.ActiveRestorer{Backend: backend, Store: st})
		if err := hotkeyHandler.Register(cfg.RestoreHotkey); err != nil {
			log.Printf("Warning: Failed to register restore hotkey: %v", err)
		} else {
			log.Printf("Restore hotkey registered: %s", cfg.RestoreHotkey)
		}
	}

	reloadChan := make(chan struct{}, 1)

	ipcServer, err := ipc.NewServer(cfg, reconciler, st, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	reconcilerCtx, reconcilerCancel := context.WithCancel(context.Background())
	defer reconcilerCancel()
	reconcilerDone := make(chan struct{})
	go func() {
		reconciler.Run(reconcilerCtx)
		close(reconcilerDone)
	}()

	// applied is only touched from the signal goroutine below.
	applied := cfg
	applyConfig := func(newCfg *config.Config) {
		for _, key := range restartRequired(applied, newCfg) {
			log.Printf("%s changed; restart the daemon to apply", key)
		}
		applied = newCfg
		level.Set(newCfg.SlogLevel())
		reconciler.UpdateConfig(reconcilerConfig(newCfg, logger))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := config.Load()
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					ipcServer.UpdateConfig(newCfg)
					applyConfig(newCfg)
					log.Println("Config reloaded successfully")

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down winsettle daemon...")
					reconcilerCancel()
					<-reconcilerDone
					if err := st.Save(); err != nil {
						log.Printf("Failed to save geometry store: %v", err)
					}
					ipcServer.Stop()
					os.Exit(0)
				}

			case <-reloadChan:
				applyConfig(ipcServer.GetConfig())
			}
		}
	}()

	log.Println("Entering event loop...")
	backend.EventLoop()
}
