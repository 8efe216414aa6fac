// Package prefs keeps small user choices that outlive a session.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const prefsFile = "prefs.json"

// Prefs are remembered between runs. Zero values mean "use the configured
// default".
type Prefs struct {
	SnoozeHours  float64 `json:"snooze_hours,omitempty"`
	LastCategory string  `json:"last_category,omitempty"`
}

func prefsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "triage")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, prefsFile), nil
}

func Save(p Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the saved prefs, or zero Prefs when none were saved.
func Load() (Prefs, error) {
	path, err := prefsPath()
	if err != nil {
		return Prefs{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Prefs{}, nil
		}
		return Prefs{}, err
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, err
	}
	return p, nil
}

// Update loads the prefs, applies fn and saves the result.
func Update(fn func(*Prefs)) error {
	p, err := Load()
	if err != nil {
		return err
	}
	fn(&p)
	return Save(p)
}
