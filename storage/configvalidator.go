package storage

import (
	"encoding/json"
	"fmt"
	"net"
)

// detectPresentKeys unmarshals JSON bytes to determine which config keys
// are explicitly present in the file. Returns a flat set of dotted-path keys
// (e.g., "poll.intervalMs", "screenshot.scale").
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	if _, ok := raw["version"]; ok {
		present["version"] = true
	}

	nested := map[string][]string{
		"poll":       {"intervalMs"},
		"web":        {"listen"},
		"screenshot": {"scale"},
	}
	for section, keys := range nested {
		sectionRaw, ok := raw[section]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(sectionRaw, &fields) != nil {
			continue
		}
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				present[section+"."+k] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults sets default values for config fields that are absent
// from the JSON file. Zero values that were written explicitly are kept so
// that validation can report them.
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["poll.intervalMs"] {
		config.Poll.IntervalMs = defaults.Poll.IntervalMs
	}
	if !presentKeys["web.listen"] {
		config.Web.Listen = defaults.Web.Listen
	}
	if !presentKeys["screenshot.scale"] {
		config.Screenshot.Scale = defaults.Screenshot.Scale
	}
}

func validListen(addr string) bool {
	if addr == "" {
		return true
	}
	_, _, err := net.SplitHostPort(addr)
	return err == nil
}

// ValidateConfig checks all config fields against valid ranges and returns
// human-readable error descriptions. An empty slice means the config is valid.
func ValidateConfig(config *Config) []string {
	var errors []string

	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}

	if config.Poll.IntervalMs < MinPollIntervalMs || config.Poll.IntervalMs > MaxPollIntervalMs {
		errors = append(errors, fmt.Sprintf("poll.intervalMs: %d (valid: %d-%d)", config.Poll.IntervalMs, MinPollIntervalMs, MaxPollIntervalMs))
	}

	if !validListen(config.Web.Listen) {
		errors = append(errors, fmt.Sprintf("web.listen: %q (valid: host:port or empty)", config.Web.Listen))
	}

	if config.Screenshot.Scale < MinScale || config.Screenshot.Scale > MaxScale {
		errors = append(errors, fmt.Sprintf("screenshot.scale: %d (valid: %d-%d)", config.Screenshot.Scale, MinScale, MaxScale))
	}

	return errors
}

// CorrectConfig resets any invalid fields to their defaults from DefaultConfig().
// Valid fields are preserved.
func CorrectConfig(config *Config) *Config {
	defaults := DefaultConfig()

	if config.Version != 1 {
		config.Version = defaults.Version
	}
	if config.Poll.IntervalMs < MinPollIntervalMs || config.Poll.IntervalMs > MaxPollIntervalMs {
		config.Poll.IntervalMs = defaults.Poll.IntervalMs
	}
	if !validListen(config.Web.Listen) {
		config.Web.Listen = defaults.Web.Listen
	}
	if config.Screenshot.Scale < MinScale || config.Screenshot.Scale > MaxScale {
		config.Screenshot.Scale = defaults.Screenshot.Scale
	}

	return config
}

// ValidateInputConfig checks keyboard overrides. validButton and validKey
// report whether a button or key name is known.
func ValidateInputConfig(config *Config, validButton, validKey func(string) bool) []string {
	var errors []string
	for button, key := range config.Input.Keyboard {
		if !validButton(button) {
			errors = append(errors, fmt.Sprintf("input.keyboard: unknown button %q", button))
			continue
		}
		if !validKey(key) {
			errors = append(errors, fmt.Sprintf("input.keyboard.%s: %q (unknown key)", button, key))
		}
	}
	return errors
}

// CorrectInputConfig removes keyboard overrides that ValidateInputConfig
// would report.
func CorrectInputConfig(config *Config, validButton, validKey func(string) bool) {
	for button, key := range config.Input.Keyboard {
		if !validButton(button) || !validKey(key) {
			delete(config.Input.Keyboard, button)
		}
	}
}
