package commands

import (
	"flag"
	"fmt"

	"github.com/agiangrant/nativebuf"
)

// Alloc implements the 'nativebuf alloc' command
func Alloc(args []string) error {
	fs := flag.NewFlagSet("alloc", flag.ExitOnError)
	common := addCommonFlags(fs)
	width := fs.Uint("width", 100, "Buffer width in pixels")
	height := fs.Uint("height", 200, "Buffer height in pixels")
	formatName := fs.String("format", "RGBA_8888", "Pixel format name or number")
	usageFlags := fs.String("usage", "0", "Usage bitmask or |-separated flag names")
	fill := fs.Int("fill", -1, "Byte value to fill the buffer with while locked (-1 to skip)")
	fs.Parse(args)

	config, err := common.load()
	if err != nil {
		return err
	}
	format, err := nativebuf.ParsePixelFormat(*formatName)
	if err != nil {
		return err
	}
	usage, err := nativebuf.ParseUsage(*usageFlags)
	if err != nil {
		return err
	}

	m, err := nativebuf.Open(config)
	if err != nil {
		return err
	}
	defer m.Close()

	buf, err := m.Create(uint32(*width), uint32(*height), format, usage)
	if err != nil {
		return fmt.Errorf("create %dx%d %s: %w", *width, *height, format, err)
	}
	defer buf.Close()

	layout := buf.Layout()
	fmt.Printf("Created %dx%d %s (usage %s)\n", buf.Width(), buf.Height(), buf.Format(), buf.Usage())
	fmt.Printf("  magic   %#x\n", layout.Magic)
	fmt.Printf("  version %d (want %d)\n", layout.Version, layout.WantVersion)

	stride, err := buf.Stride()
	if err != nil {
		return err
	}
	fmt.Printf("  stride  %d\n", stride)
	if tf, ok := format.TextureFormat(); ok {
		fmt.Printf("  texture %v\n", tf)
	}

	if *fill >= 0 {
		pixels, err := buf.LockBytes(nativebuf.UsageSWWriteOften | nativebuf.UsageSWReadOften)
		if err != nil {
			return fmt.Errorf("lock: %w", err)
		}
		for i := range pixels {
			pixels[i] = byte(*fill)
		}
		if err := buf.Unlock(); err != nil {
			return fmt.Errorf("unlock: %w", err)
		}
		fmt.Printf("  filled  %d bytes with %#02x\n", len(pixels), byte(*fill))
	}

	if err := buf.Close(); err != nil {
		return err
	}
	stats := m.Stats()
	fmt.Printf("Released (allocations %d, frees %d)\n", stats.Allocations, stats.Frees)
	return nil
}
