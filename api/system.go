package emucore

// ButtonInfo describes a button for frontend configuration.
type ButtonInfo struct {
	Button     Button
	Name       string
	DefaultKey string // Default keyboard key name (e.g., "D", "Enter")
}

// SystemInfo describes the emulated system for frontend configuration.
type SystemInfo struct {
	Name         string
	ConsoleName  string
	Extensions   []string
	ScreenWidth  int
	ScreenHeight int
	AspectRatio  float64
	Buttons      []ButtonInfo
	DataDirName  string
}

// GameBoy returns the system description used by the bridge. Default keys
// are WASD for the d-pad, Space and Ctrl for A and B, Shift for Select and
// Enter for Start.
func GameBoy() SystemInfo {
	return SystemInfo{
		Name:         "gb",
		ConsoleName:  "Game Boy",
		Extensions:   []string{".gb", ".gbc"},
		ScreenWidth:  FrameWidth,
		ScreenHeight: FrameHeight,
		AspectRatio:  DisplayAspectRatio(FrameWidth, FrameHeight, 1.0),
		Buttons: []ButtonInfo{
			{Button: ButtonRight, Name: "Right", DefaultKey: "D"},
			{Button: ButtonLeft, Name: "Left", DefaultKey: "A"},
			{Button: ButtonUp, Name: "Up", DefaultKey: "W"},
			{Button: ButtonDown, Name: "Down", DefaultKey: "S"},
			{Button: ButtonA, Name: "A", DefaultKey: "Space"},
			{Button: ButtonB, Name: "B", DefaultKey: "Control"},
			{Button: ButtonSelect, Name: "Select", DefaultKey: "Shift"},
			{Button: ButtonStart, Name: "Start", DefaultKey: "Enter"},
		},
		DataDirName: "gbbridge",
	}
}

// DisplayAspectRatio returns the display aspect ratio for a frame of the
// given size with the given pixel aspect ratio.
func DisplayAspectRatio(width, height int, par float64) float64 {
	return float64(width) / float64(height) * par
}
