package nativebuf

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/agiangrant/nativebuf/internal/ffi"
)

// DefaultConfigFile is the file name LoadConfig and SaveConfig use when no
// path is given.
const DefaultConfigFile = "nativebuf.toml"

// EnvLibPath overrides library.path from the configuration file.
const EnvLibPath = "NATIVEBUF_LIB_PATH"

// Allocator names accepted in ObjectConfig.Allocator.
const (
	AllocatorLibc = "libc"
	AllocatorMmap = "mmap"
)

// Config selects the target library, its revision and how objects are
// stored. It is resolved once and handed to Open.
type Config struct {
	Library LibraryConfig `toml:"library"`
	Target  TargetConfig  `toml:"target"`
	Object  ObjectConfig  `toml:"object"`
	// Symbols overrides decorated names, keyed by op name
	// ("constructor", "lock", ...).
	Symbols map[string]string `toml:"symbols,omitempty"`
}

type LibraryConfig struct {
	// Path of the graphics library. NATIVEBUF_LIB_PATH overrides it.
	Path string `toml:"path"`
	// Libc is the C library used for malloc/free and system properties.
	Libc string `toml:"libc,omitempty"`
}

type TargetConfig struct {
	Revision Revision `toml:"revision"`
	// APILevel pins the level used to resolve RevisionAuto instead of
	// reading ro.build.version.sdk.
	APILevel int `toml:"api_level,omitempty"`
}

type ObjectConfig struct {
	StorageSize int `toml:"storage_size"`
	// StrictLayout rejects objects whose header magic or version is
	// unexpected. When false the mismatch is only logged.
	StrictLayout bool   `toml:"strict_layout"`
	Allocator    string `toml:"allocator"`
	// Label is the requestor name passed to the intermediate constructor.
	Label string `toml:"label"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Library: LibraryConfig{
			Path: "libui.so",
		},
		Target: TargetConfig{
			Revision: RevisionAuto,
		},
		Object: ObjectConfig{
			StorageSize:  DefaultStorageSize,
			StrictLayout: true,
			Allocator:    AllocatorLibc,
			Label:        "nativebuf",
		},
	}
}

// LoadConfig reads the TOML file at path over DefaultConfig. A missing file
// is not an error; the defaults are returned.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		config.applyEnv()
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	config.applyEnv()
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid %s: %w", path, err)
	}
	return config, nil
}

// applyEnv layers NATIVEBUF_LIB_PATH over the file. Command-line flags are
// applied after LoadConfig and win over both.
func (c *Config) applyEnv() {
	if path := os.Getenv(EnvLibPath); path != "" {
		c.Library.Path = path
	}
}

// SaveConfig writes config as TOML to path.
func SaveConfig(path string, config Config) error {
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside Create.
func (c Config) Validate() error {
	if c.Object.StorageSize < minStorageSize {
		return fmt.Errorf("storage_size %d smaller than %d", c.Object.StorageSize, minStorageSize)
	}
	switch c.Object.Allocator {
	case "", AllocatorLibc, AllocatorMmap:
	default:
		return fmt.Errorf("unknown allocator %q", c.Object.Allocator)
	}
	if len(c.Object.Label) > ffi.MaxShortStringLen {
		return fmt.Errorf("label %q longer than %d bytes", c.Object.Label, ffi.MaxShortStringLen)
	}
	if c.Target.APILevel < 0 {
		return fmt.Errorf("invalid api_level %d", c.Target.APILevel)
	}
	_, err := c.symbolOverrides()
	return err
}

// LibraryPath returns the graphics library path.
func (c Config) LibraryPath() string {
	if c.Library.Path == "" {
		return "libui.so"
	}
	return c.Library.Path
}

// LibcPath returns the C library path for this platform unless configured.
func (c Config) LibcPath() string {
	if c.Library.Libc != "" {
		return c.Library.Libc
	}
	return ffi.DefaultLibcPath()
}

func (c Config) symbolOverrides() (map[Op]string, error) {
	if len(c.Symbols) == 0 {
		return nil, nil
	}
	overrides := make(map[Op]string, len(c.Symbols))
	for name, sym := range c.Symbols {
		op, ok := ParseOp(name)
		if !ok {
			return nil, fmt.Errorf("unknown operation %q in [symbols]", name)
		}
		if sym == "" {
			return nil, fmt.Errorf("empty symbol for %s", name)
		}
		overrides[op] = sym
	}
	return overrides, nil
}
