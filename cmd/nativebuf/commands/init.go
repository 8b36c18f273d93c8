package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/agiangrant/nativebuf"
)

// Init implements the 'nativebuf init' command
func Init(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("config", nativebuf.DefaultConfigFile, "Configuration file to write")
	revision := fs.String("revision", "auto", "Library revision: auto, legacy, intermediate, modern")
	apiLevel := fs.Int("api-level", 0, "Pin the Android API level instead of detecting it")
	allocator := fs.String("allocator", nativebuf.AllocatorLibc, "Object storage: libc or mmap")
	force := fs.Bool("force", false, "Overwrite an existing file")
	fs.Parse(args)

	if _, err := os.Stat(*path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", *path)
	}

	config := nativebuf.DefaultConfig()
	rev, err := nativebuf.ParseRevision(*revision)
	if err != nil {
		return err
	}
	config.Target.Revision = rev
	config.Target.APILevel = *apiLevel
	config.Object.Allocator = *allocator
	if err := config.Validate(); err != nil {
		return err
	}

	if err := nativebuf.SaveConfig(*path, config); err != nil {
		return err
	}
	fmt.Printf("  ✓ Created %s\n", *path)
	return nil
}
