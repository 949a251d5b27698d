// Package storage persists game ledgers so finished and abandoned games can
// be listed and replayed.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessh"

// DataDir is where the server keeps its state, under the user's data home.
func DataDir() (string, error) {
	base, err := dataHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

func dataHome() (string, error) {
	env, fallback := "XDG_DATA_HOME", []string{".local", "share"}
	switch runtime.GOOS {
	case "darwin":
		env, fallback = "", []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	}
	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// DefaultDir returns the BadgerDB directory, creating it if needed.
func DefaultDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return "", err
	}
	return dbDir, nil
}
