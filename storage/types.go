package storage

// Config represents the runner configuration stored in config.json
type Config struct {
	Version    int              `json:"version"`
	Poll       PollConfig       `json:"poll"`
	Input      InputConfig      `json:"input"`
	Web        WebConfig        `json:"web"`
	Screenshot ScreenshotConfig `json:"screenshot"`
}

// PollConfig controls how often the presentation side polls for frames.
type PollConfig struct {
	IntervalMs int `json:"intervalMs"` // 1-1000, default 16
}

// InputConfig contains keyboard binding overrides.
// A nil map means "use defaults." Only user overrides are stored.
type InputConfig struct {
	Keyboard map[string]string `json:"keyboard,omitempty"` // button name -> key name override
}

// WebConfig configures the browser frontend.
type WebConfig struct {
	Listen string `json:"listen"` // host:port, empty disables
}

// ScreenshotConfig configures PNG capture.
type ScreenshotConfig struct {
	Scale int    `json:"scale"`         // 1-8, default 1
	Dir   string `json:"dir,omitempty"` // empty means <base>/screenshots
}

const (
	MinPollIntervalMs = 1
	MaxPollIntervalMs = 1000
	MinScale          = 1
	MaxScale          = 8
)

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Poll: PollConfig{
			IntervalMs: 16,
		},
		Input: InputConfig{},
		Web:   WebConfig{},
		Screenshot: ScreenshotConfig{
			Scale: 1,
		},
	}
}
