// Command gbbridge runs a cartridge headless on the synthetic pattern engine,
// polling frames the way a frontend would. Frames can be captured to PNG
// and streamed to a browser.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	emucore "github.com/user-none/gbbridge/api"
	"github.com/user-none/gbbridge/bridge"
	"github.com/user-none/gbbridge/engine/pattern"
	"github.com/user-none/gbbridge/inputmap"
	"github.com/user-none/gbbridge/screenshot"
	"github.com/user-none/gbbridge/statsview"
	"github.com/user-none/gbbridge/storage"
	"github.com/user-none/gbbridge/webui"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, log.Default()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "gbbridge: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	frames        int
	screenshot    string
	snapshot      bool
	scale         int
	web           string
	config        string
	statsview     bool
	hold          string
	stepsPerFrame int
	cartridge     string
}

func parseFlags(args []string, out io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("gbbridge", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.IntVar(&o.frames, "frames", 0, "stop after N polled frames (0 runs until interrupted)")
	fs.StringVar(&o.screenshot, "screenshot", "", "write the last polled frame to this PNG file (or into this directory)")
	fs.BoolVar(&o.snapshot, "snapshot", false, "write the last polled frame into the configured screenshot directory")
	fs.IntVar(&o.scale, "scale", 0, "screenshot scale factor (overrides config)")
	fs.StringVar(&o.web, "web", "", "serve the browser frontend on this address (overrides config)")
	fs.StringVar(&o.config, "config", "", "config file (default <data dir>/config.json)")
	fs.BoolVar(&o.statsview, "statsview", false, "launch the runtime statistics server")
	fs.StringVar(&o.hold, "hold", "", "comma separated buttons held down for the whole run")
	fs.IntVar(&o.stepsPerFrame, "steps-per-frame", pattern.DefaultStepsPerFrame, "engine steps per completed frame")
	fs.Usage = func() {
		fmt.Fprintln(out, "usage: gbbridge [flags] <cartridge>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected one cartridge path, got %d arguments", fs.NArg())
	}
	o.cartridge = fs.Arg(0)
	return &o, nil
}

// parseHold splits a -hold value into buttons.
func parseHold(s string) ([]emucore.Button, error) {
	if s == "" {
		return nil, nil
	}
	var buttons []emucore.Button
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		b, ok := emucore.ParseButton(name)
		if !ok {
			return nil, fmt.Errorf("unknown button %q", name)
		}
		buttons = append(buttons, b)
	}
	return buttons, nil
}

func loadConfig(path string, info emucore.SystemInfo, logger *log.Logger) *storage.Config {
	var (
		config *storage.Config
		err    error
	)
	if path != "" {
		config, err = storage.LoadConfigFrom(path)
	} else {
		config, err = storage.LoadConfig()
	}
	if err != nil {
		logger.Printf("Failed to load config, using defaults: %v", err)
		config = storage.DefaultConfig()
	}

	if errs := storage.ValidateConfig(config); len(errs) > 0 {
		logger.Printf("Warning: invalid config values reset to defaults: %s", strings.Join(errs, "; "))
		storage.CorrectConfig(config)
	}

	validButton := func(name string) bool {
		for _, b := range info.Buttons {
			if b.Name == name {
				return true
			}
		}
		return false
	}
	validKey := func(name string) bool {
		k, ok := inputmap.ParseKey(name)
		return ok && !inputmap.IsReservedKey(k)
	}
	if errs := storage.ValidateInputConfig(config, validButton, validKey); len(errs) > 0 {
		logger.Printf("Warning: ignoring key bindings: %s", strings.Join(errs, "; "))
		storage.CorrectInputConfig(config, validButton, validKey)
	}

	return config
}

func run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) error {
	o, err := parseFlags(args, out)
	if err != nil {
		return err
	}
	hold, err := parseHold(o.hold)
	if err != nil {
		return err
	}

	info := emucore.GameBoy()
	storage.Init(info.DataDirName)
	config := loadConfig(o.config, info, logger)
	if o.scale > 0 {
		config.Screenshot.Scale = o.scale
	}
	if o.web != "" {
		config.Web.Listen = o.web
	}

	keys, err := inputmap.BuildMappingFromConfig(info.Buttons, config.Input.Keyboard)
	if err != nil {
		logger.Printf("Warning: %v", err)
	}

	session := bridge.NewSession(
		pattern.New(pattern.WithStepsPerFrame(o.stepsPerFrame)),
		bridge.WithLogger(logger),
		bridge.WithExtensions(info.Extensions...),
	)

	if report := session.LoadCartridge(o.cartridge); !report.OK() {
		session.Destroy()
		return fmt.Errorf("failed to load cartridge: %s", report.Message)
	}
	header := session.Cartridge()
	fmt.Fprintf(out, "Loaded %q (%s, %d KiB ROM)\n", header.Title, header.Type, header.ROMSize/1024)

	for _, b := range hold {
		session.SetButton(b, true)
	}

	var srv *webui.Server
	if config.Web.Listen != "" {
		srv = webui.NewServer(config.Web.Listen, session, keys,
			webui.WithTitle(header.Title),
			webui.WithLogger(logger))
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				logger.Printf("Failed to serve web frontend: %v", err)
			}
		}()
		fmt.Fprintf(out, "Web frontend at http://%s/\n", srv.Addr())
	}

	if o.statsview {
		statsview.Launch("", out)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	session.Start()
	polled := pollFrames(ctx, session, srv, time.Duration(config.Poll.IntervalMs)*time.Millisecond, o.frames)

	// Nothing may touch the session once Destroy has run.
	if srv != nil {
		srv.Close()
	}
	published, dropped := session.FrameStats()
	destroyErr := session.Destroy()

	fmt.Fprintf(out, "Polled %d frames (%d published, %d replaced before polling)\n", polled.count, published, dropped)

	if o.screenshot != "" || o.snapshot {
		if polled.count == 0 {
			return errors.New("no frame to capture")
		}
		path, err := saveScreenshot(o, config, polled.last)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %s\n", path)
	}

	return destroyErr
}

// screenshotDir returns the configured screenshot directory, falling back
// to the one under the data directory.
func screenshotDir(config *storage.Config) (string, error) {
	if config.Screenshot.Dir != "" {
		return config.Screenshot.Dir, nil
	}
	return storage.GetScreenshotDir()
}

// saveScreenshot writes frame to the -screenshot file, into the -screenshot
// directory, or into the configured directory for -snapshot.
func saveScreenshot(o *options, config *storage.Config, frame []byte) (string, error) {
	scale := config.Screenshot.Scale
	if o.screenshot != "" {
		if info, err := os.Stat(o.screenshot); err == nil && info.IsDir() {
			return screenshot.Save(o.screenshot, frame, scale)
		}
		if err := screenshot.WriteFile(o.screenshot, frame, scale); err != nil {
			return "", err
		}
		return o.screenshot, nil
	}

	dir, err := screenshotDir(config)
	if err != nil {
		return "", fmt.Errorf("failed to get screenshot directory: %w", err)
	}
	return screenshot.Save(dir, frame, scale)
}

type pollResult struct {
	count int
	last  []byte
}

// pollFrames is the presentation loop: it drains the frame slot on every
// tick until ctx ends, the engine exits or limit frames have been seen.
func pollFrames(ctx context.Context, session *bridge.Session, srv *webui.Server, interval time.Duration, limit int) pollResult {
	res := pollResult{last: emucore.NewFrame()}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return res
		case <-session.Done():
			return res
		case <-ticker.C:
		}

		if !session.PollFrameInto(res.last) {
			continue
		}
		res.count++
		if srv != nil {
			srv.Publish(res.last)
		}
		if limit > 0 && res.count >= limit {
			return res
		}
	}
}
