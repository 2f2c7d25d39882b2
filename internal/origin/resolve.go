package origin

import "github.com/matheus3301/fiberglass/internal/config"

const DefaultName = "main"

// Resolve determines the active origin name using precedence:
// 1. flagOverride (--origin flag)
// 2. config.toml default_origin
// 3. "main"
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	cfg, err := config.Load(ConfigPath())
	if err == nil && cfg.DefaultOrigin != "" {
		return cfg.DefaultOrigin
	}
	return DefaultName
}
