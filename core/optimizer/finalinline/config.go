package finalinline

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config carries the recognized pass options.
type Config struct {
	// ReplaceEncodableClinits enables converting constant-only class
	// initializers into encoded static values.
	ReplaceEncodableClinits bool `toml:"replace_encodable_clinits"`

	// PropagateStaticFinals enables cross-class constant propagation along
	// initializer dependency chains.
	PropagateStaticFinals bool `toml:"propagate_static_finals"`

	// RemoveClassMembers lists class-name fragments whose classes are
	// eligible for forced field removal even when otherwise non-deletable.
	RemoveClassMembers []string `toml:"remove_class_members"`

	// KeepClassMembers lists bare field names exempt from removal,
	// matched exactly and regardless of owning class.
	KeepClassMembers []string `toml:"keep_class_members"`
}

func DefaultConfig() Config {
	return Config{
		ReplaceEncodableClinits: true,
		PropagateStaticFinals:   true,
	}
}

// LoadConfig reads a TOML config file. Options absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
