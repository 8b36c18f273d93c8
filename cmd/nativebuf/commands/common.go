package commands

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/agiangrant/nativebuf"
)

// commonFlags are shared by every command that opens the library.
type commonFlags struct {
	configPath *string
	libPath    *string
	revision   *string
	apiLevel   *int
	allocator  *string
	verbose    *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath: fs.String("config", nativebuf.DefaultConfigFile, "Path to configuration file"),
		libPath:    fs.String("lib", "", "Override the graphics library path"),
		revision:   fs.String("revision", "", "Library revision: auto, legacy, intermediate, modern"),
		apiLevel:   fs.Int("api-level", 0, "Android API level used to pick the revision"),
		allocator:  fs.String("allocator", "", "Object storage: libc or mmap"),
		verbose:    fs.Bool("verbose", false, "Enable debug logging"),
	}
}

// load reads the configuration file and applies flag overrides.
func (f *commonFlags) load() (nativebuf.Config, error) {
	level := slog.LevelWarn
	if *f.verbose {
		level = slog.LevelDebug
	}
	nativebuf.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	config, err := nativebuf.LoadConfig(*f.configPath)
	if err != nil {
		return config, err
	}
	if *f.libPath != "" {
		config.Library.Path = *f.libPath
	}
	if *f.revision != "" {
		rev, err := nativebuf.ParseRevision(*f.revision)
		if err != nil {
			return config, err
		}
		config.Target.Revision = rev
	}
	if *f.apiLevel != 0 {
		config.Target.APILevel = *f.apiLevel
	}
	if *f.allocator != "" {
		config.Object.Allocator = *f.allocator
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
