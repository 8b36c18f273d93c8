package commands

import (
	"flag"
	"fmt"

	"github.com/agiangrant/nativebuf"
)

var allOps = []nativebuf.Op{
	nativebuf.OpConstructor,
	nativebuf.OpDestructor,
	nativebuf.OpInitCheck,
	nativebuf.OpGetNativeBuffer,
	nativebuf.OpLock,
	nativebuf.OpUnlock,
}

// Probe implements the 'nativebuf probe' command
func Probe(args []string) error {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(args)

	config, err := common.load()
	if err != nil {
		return err
	}

	m, err := nativebuf.Open(config)
	if err != nil {
		return err
	}
	defer m.Close()

	fmt.Printf("Platform:  %s\n", nativebuf.CurrentPlatform())
	fmt.Printf("Library:   %s\n", config.LibraryPath())
	fmt.Printf("Arch:      %s\n", m.Arch())
	fmt.Printf("Revision:  %s\n", m.Revision())
	fmt.Println()

	symbols := m.Symbols()
	for _, op := range allOps {
		s := symbols.Lookup(op)
		switch {
		case s.Name == "":
			fmt.Printf("  - %-16s not available in this revision\n", op)
		case s.Present():
			fmt.Printf("  ✓ %-16s %#x  %s\n", op, s.Addr, s.Name)
		default:
			fmt.Printf("  ✗ %-16s missing       %s\n", op, s.Name)
		}
	}

	if missing := symbols.Missing(); len(missing) > 0 {
		return fmt.Errorf("%d symbol(s) could not be resolved", len(missing))
	}
	return nil
}
