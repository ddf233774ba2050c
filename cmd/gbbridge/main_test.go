package main

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	emucore "github.com/user-none/gbbridge/api"
	"github.com/user-none/gbbridge/internal/testrom"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRunCapturesScreenshot(t *testing.T) {
	dir := t.TempDir()
	rom := testrom.WriteFile(t, "game.gb", testrom.Valid())
	shot := filepath.Join(dir, "shot.png")
	config := filepath.Join(dir, "config.json")
	if err := os.WriteFile(config, []byte(`{"poll":{"intervalMs":1}}`), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-config", config,
		"-frames", "3",
		"-screenshot", shot,
		"-scale", "2",
		"-hold", "right, a",
		"-steps-per-frame", "4",
		rom,
	}, &out, quietLogger())
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out.String())
	}

	for _, want := range []string{`Loaded "TEST"`, "Polled 3 frames", "Saved " + shot} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	f, err := os.Open(shot)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("screenshot is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != emucore.FrameWidth*2 || b.Dy() != emucore.FrameHeight*2 {
		t.Errorf("screenshot size %dx%d", b.Dx(), b.Dy())
	}
}

func pngFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestRunSnapshotConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	shots := filepath.Join(dir, "shots")
	rom := testrom.WriteFile(t, "game.rom", testrom.Valid())
	config := filepath.Join(dir, "config.json")
	data := `{"poll":{"intervalMs":1},"screenshot":{"dir":` + strconv.Quote(shots) + `}}`
	if err := os.WriteFile(config, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := run(context.Background(), []string{"-config", config, "-frames", "1", "-snapshot", rom}, &out, quietLogger())
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out.String())
	}
	if files := pngFiles(t, shots); len(files) != 1 {
		t.Fatalf("expected one PNG in %s, got %v", shots, files)
	}
}

func TestRunSnapshotDefaultDir(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG_DATA_HOME only applies on Unix-like systems")
	}
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	rom := testrom.WriteFile(t, "game.gb", testrom.Valid())
	config := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(config, []byte(`{"poll":{"intervalMs":1}}`), 0644); err != nil {
		t.Fatal(err)
	}

	err := run(context.Background(), []string{"-config", config, "-frames", "1", "-snapshot", rom}, io.Discard, quietLogger())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	shots := filepath.Join(dataHome, emucore.GameBoy().DataDirName, "screenshots")
	if files := pngFiles(t, shots); len(files) != 1 {
		t.Fatalf("expected one PNG in %s, got %v", shots, files)
	}
}

func TestRunScreenshotIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	rom := testrom.WriteFile(t, "game.gb", testrom.Valid())
	config := filepath.Join(dir, "config.json")
	if err := os.WriteFile(config, []byte(`{"poll":{"intervalMs":1}}`), 0644); err != nil {
		t.Fatal(err)
	}
	shots := t.TempDir()

	err := run(context.Background(), []string{"-config", config, "-frames", "1", "-screenshot", shots, rom}, io.Discard, quietLogger())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if files := pngFiles(t, shots); len(files) != 1 {
		t.Fatalf("expected one PNG in %s, got %v", shots, files)
	}
}

func TestRunMissingCartridge(t *testing.T) {
	dir := t.TempDir()
	err := run(context.Background(), []string{
		"-config", filepath.Join(dir, "config.json"),
		filepath.Join(dir, "missing.gb"),
	}, io.Discard, quietLogger())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error %q should mention not found", err)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	rom := testrom.WriteFile(t, "game.gb", testrom.Valid())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, []string{"-config", filepath.Join(dir, "config.json"), rom}, &out, quietLogger())
	if err != nil {
		t.Fatalf("cancelled run should exit cleanly, got %v", err)
	}
	if !strings.Contains(out.String(), "Polled") {
		t.Errorf("expected summary line, got:\n%s", out.String())
	}
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no cartridge", nil},
		{"two cartridges", []string{"a.gb", "b.gb"}},
		{"bad hold", []string{"-hold", "turbo", "a.gb"}},
		{"unknown flag", []string{"-nope", "a.gb"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := run(context.Background(), tc.args, io.Discard, quietLogger()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseHold(t *testing.T) {
	buttons, err := parseHold("Right,a , START")
	if err != nil {
		t.Fatal(err)
	}
	want := []emucore.Button{emucore.ButtonRight, emucore.ButtonA, emucore.ButtonStart}
	if len(buttons) != len(want) {
		t.Fatalf("got %v, want %v", buttons, want)
	}
	for i := range want {
		if buttons[i] != want[i] {
			t.Errorf("button %d = %v, want %v", i, buttons[i], want[i])
		}
	}

	if b, err := parseHold(""); err != nil || b != nil {
		t.Errorf("empty hold = %v, %v", b, err)
	}
}

func TestLoadConfigCorrectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"poll":{"intervalMs":-4},"input":{"keyboard":{"A":"J","B":"Escape","Turbo":"K"}}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	config := loadConfig(path, emucore.GameBoy(), quietLogger())
	if config.Poll.IntervalMs != 16 {
		t.Errorf("interval not corrected: %d", config.Poll.IntervalMs)
	}
	if len(config.Input.Keyboard) != 1 || config.Input.Keyboard["A"] != "J" {
		t.Errorf("keyboard = %v", config.Input.Keyboard)
	}
}
