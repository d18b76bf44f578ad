// Package driver runs external controller drivers. A driver is an executable
// that receives one command per invocation as JSON on stdin and answers with
// a JSON Response on stdout, which lets boards without a serial or network
// link (an I2C servo hat, for instance) be driven by a small script.
package driver

import "encoding/json"

// ManifestFile is the name of the manifest each driver directory carries.
const ManifestFile = "driver.json"

// Manifest describes a driver's metadata.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Commands     []string        `json:"commands,omitempty"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Accepts reports whether the driver wants command. An empty Commands list accepts all.
func (m Manifest) Accepts(command string) bool {
	if len(m.Commands) == 0 {
		return true
	}
	for _, c := range m.Commands {
		if c == command {
			return true
		}
	}
	return false
}

// Request is written to the driver's stdin.
type Request struct {
	Command   string          `json:"command"`
	LeftHand  string          `json:"left_hand"`
	RightHand string          `json:"right_hand"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Response is read from the driver's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Driver is a discovered driver with its manifest and location.
type Driver struct {
	Manifest   Manifest
	Path       string
	Executable string
}
