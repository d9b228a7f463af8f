package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names a config file explicitly
	EnvConfigPath = "MIBWALK_CONFIG"
	// ConfigFileName is looked for in the working directory
	ConfigFileName = "mibwalk.yaml"
	// ConfigFileNameTOML is the TOML spelling of ConfigFileName
	ConfigFileNameTOML = "mibwalk.toml"
	// ConfigDirName is the directory under the user and system config roots
	ConfigDirName = "mibwalk"
)

var dirFileNames = []string{"config.yaml", "config.toml"}

// FindConfigPath returns the first existing file among $MIBWALK_CONFIG,
// ./mibwalk.{yaml,toml}, the user config dir ($XDG_CONFIG_HOME or
// ~/.config) and /etc/mibwalk, or "" when there is none.
func FindConfigPath() string {
	for _, path := range searchPaths() {
		if !fileExists(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

func searchPaths() []string {
	var paths []string
	if env := os.Getenv(EnvConfigPath); env != "" {
		paths = append(paths, env)
	}
	paths = append(paths, ConfigFileName, ConfigFileNameTOML)

	dirs := []string{filepath.Join("/etc", ConfigDirName)}
	if user := userConfigDir(); user != "" {
		dirs = append([]string{user}, dirs...)
	}
	for _, dir := range dirs {
		for _, name := range dirFileNames {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

// userConfigDir is $XDG_CONFIG_HOME/mibwalk, else ~/.config/mibwalk
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, ConfigDirName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName)
	}
	return ""
}

// DefaultConfigPath is where a new config file is written
func DefaultConfigPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return ConfigFileName
}

// EnsureConfigDir creates the directory holding configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
