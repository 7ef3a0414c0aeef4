package consts

import (
	"os"
	"path/filepath"
)

const homeDirName = ".agentdeck"

// HomeDir returns the agentdeck data directory (~/.agentdeck). Falls back to
// the current directory when the user home cannot be resolved.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return homeDirName
	}
	return filepath.Join(home, homeDirName)
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// DefaultTriggerStorePath returns the default trigger store file location.
func DefaultTriggerStorePath() string {
	return filepath.Join(HomeDir(), "triggers", "triggers.json")
}
