package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DaemonSettings is written by a starting daemon and read back by CLI
// invocations so they address the same socket, model and delivery mode the
// daemon was started with.
type DaemonSettings struct {
	Model        string `json:"model,omitempty"`
	SocketPath   string `json:"socket_path,omitempty"`
	UseClipboard *bool  `json:"use_clipboard,omitempty"`
}

// WriteDaemonSettings publishes the daemon's effective settings.
func WriteDaemonSettings(path string, s DaemonSettings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling daemon settings: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// RemoveDaemonSettings deletes the settings file on daemon shutdown.
func RemoveDaemonSettings(path string) {
	os.Remove(path)
}

func readDaemonSettings(path string) *DaemonSettings {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var s DaemonSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return &s
}
