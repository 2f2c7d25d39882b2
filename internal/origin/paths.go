package origin

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.fiberglass, or $FIBERGLASS_HOME when set.
func BaseDir() string {
	if dir := os.Getenv("FIBERGLASS_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".fiberglass")
}

// Dir returns the origin-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "origins", name)
}

// DBPath returns the origin's site.db path.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "site.db")
}

// LogDir returns the log directory for an origin.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the log file path for a component.
func LogPath(name, component string) string {
	return filepath.Join(LogDir(name), component+".log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the origin directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
