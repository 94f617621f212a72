package config

import (
	"os"
	"path/filepath"
)

const Name = "x-disper"

var DefaultConfig = Config{
	Displays:      "auto",
	Resolution:    "auto",
	Direction:     "right",
	Scaling:       "default",
	Hooks:         "user",
	CycleStages:   "clone:single:secondary",
	ReverseCycles: false,
}

// Config holds defaults for flags that were not given on the command line.
type Config struct {
	Displays      string `json:"displays" yaml:"displays"`
	Resolution    string `json:"resolution" yaml:"resolution"`
	Direction     string `json:"direction" yaml:"direction"`
	Scaling       string `json:"scaling" yaml:"scaling"`
	Hooks         string `json:"hooks" yaml:"hooks"`
	CycleStages   string `json:"cycle_stages" yaml:"cycle_stages"`
	ReverseCycles bool   `json:"reverse_cycles" yaml:"reverse_cycles"`
}

// DefaultCycleState makes the first cycle start at the first stage.
var DefaultCycleState = CycleState{Stage: -1}

// CycleState is the index of the last stage the cycle action switched to.
type CycleState struct {
	Stage int `json:"stage" yaml:"stage"`
}

// Dir returns $XDG_CONFIG_HOME/x-disper, falling back to ~/.config/x-disper.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, Name), nil
}

// CyclePath returns the cycle state file that lives next to the config file.
func CyclePath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "cycle.yaml")
}
