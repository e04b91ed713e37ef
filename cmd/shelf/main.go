package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/five82/shelf/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/shelf/config.toml)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	dev := flag.Bool("dev", false, "write human-readable log lines")
	refreshSeconds := flag.Int("refresh", 0, "catalog refresh interval in seconds (optional, defaults to 15s)")
	reset := flag.Bool("reset", false, "clear saved cart, wishlist, session and local products before starting")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:  *configPath,
		PrefsPath:   *prefsPath,
		LogLevel:    *logLevel,
		Development: *dev,
		Reset:       *reset,
	}
	if secs := *refreshSeconds; secs > 0 {
		opts.RefreshEvery = time.Duration(secs) * time.Second
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "shelf: %v\n", err)
		return 1
	}
	return 0
}
