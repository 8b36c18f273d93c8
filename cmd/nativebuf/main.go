package main

import (
	"fmt"
	"os"

	"github.com/agiangrant/nativebuf/cmd/nativebuf/commands"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "probe":
		err = commands.Probe(args)
	case "alloc":
		err = commands.Alloc(args)
	case "init":
		err = commands.Init(args)
	case "version", "-v", "--version":
		fmt.Printf("nativebuf version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`nativebuf - GraphicBuffer access for Android

Usage: nativebuf <command> [options]

Commands:
  probe     Open libui.so and report which GraphicBuffer symbols resolve
  alloc     Create a GraphicBuffer, lock it, report its stride, release it
  init      Write a default nativebuf.toml
  version   Print version information
  help      Show this help message

Examples:
  nativebuf probe
  nativebuf probe --revision legacy
  nativebuf alloc --width 100 --height 200 --format RGBA_8888
  nativebuf init --api-level 23

Configuration:
  Settings are read from nativebuf.toml in the working directory.
  NATIVEBUF_LIB_PATH overrides the library path.`)
}
