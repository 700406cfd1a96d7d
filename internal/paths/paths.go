// Package paths resolves the configuration and data directories used by
// the dynobject CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName is the directory name used under platform config and data roots.
const appName = "dynobject"

// DefaultDataDirName is the CWD-relative data directory.
const DefaultDataDirName = ".dynobject-data"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "DYNOBJECT_CONFIG_DIR"
	EnvDataDir   = "DYNOBJECT_DATA_DIR"
)

// File names inside the resolved directories.
const (
	ConfigFileName  = "config.yaml"
	JournalFileName = "journal.db"
	ExportFileName  = "runs.jsonl"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/dynobject (fallback ~/.config/dynobject)
// macOS:   ~/Library/Application Support/dynobject
// Windows: %APPDATA%/dynobject
func DefaultConfigDir() (string, error) {
	return platformAppDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/dynobject (fallback ~/.local/share/dynobject)
// macOS:   ~/Library/Application Support/dynobject
// Windows: %APPDATA%/dynobject
func DefaultDataDir() (string, error) {
	return platformAppDir("XDG_DATA_HOME", ".local", "share")
}

// platformAppDir joins appName onto the XDG root named by xdgEnv on Linux,
// falling back to $HOME/<homeRel...>, and onto os.UserConfigDir elsewhere.
func platformAppDir(xdgEnv string, homeRel ...string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, homeRel...)
	return filepath.Join(append(parts, appName)...), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > DYNOBJECT_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > DYNOBJECT_DATA_DIR env > $(CWD)/.dynobject-data,
// falling back to DefaultDataDir when the working directory is unknown.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultDataDir()
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the config.yaml path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// JournalFile returns the run journal database path inside dataDir.
func JournalFile(dataDir string) string {
	return filepath.Join(dataDir, JournalFileName)
}

// ExportFile returns the default JSONL export path in dataDir.
func ExportFile(dataDir string) string {
	return filepath.Join(dataDir, ExportFileName)
}
