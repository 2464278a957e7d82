// Command assets inspects the data asset manifest: it lists the
// declared entries, verifies the asset directory satisfies them, and
// resolves individual assets to paths.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/terra-data/price.report/internal/manifest"
)

var assetsDir = flag.String("assets", "assets", "Directory holding data assets and the manifest")

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: assets [flags] <command>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  list             List manifest entries")
	fmt.Fprintln(os.Stderr, "  verify           Check installed assets against the manifest")
	fmt.Fprintln(os.Stderr, "  resolve <name>   Print the path of an installed asset")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	m, err := manifest.ParseFile(filepath.Join(*assetsDir, "requirements.txt"))
	if err != nil {
		log.Fatalf("failed to parse asset manifest: %v", err)
	}
	if err := m.Validate(); err != nil {
		log.Fatalf("invalid asset manifest: %v", err)
	}

	switch flag.Arg(0) {
	case "list":
		for _, name := range m.Names() {
			entry, _ := m.Lookup(name)
			if entry.Pinned() {
				fmt.Printf("%-24s %s\n", entry.Name, entry.Version)
			} else {
				fmt.Printf("%-24s (any version)\n", entry.Name)
			}
		}

	case "verify":
		problems, err := manifest.Verify(m, *assetsDir)
		if err != nil {
			log.Fatalf("failed to verify assets: %v", err)
		}
		if len(problems) == 0 {
			fmt.Printf("ok: %d entries satisfied\n", len(m.Entries))
			return
		}
		for _, p := range problems {
			fmt.Printf("missing: %s\n", p)
		}
		os.Exit(1)

	case "resolve":
		if flag.NArg() < 2 {
			usage()
		}
		path, err := manifest.Resolve(m, *assetsDir, flag.Arg(1))
		if err != nil {
			log.Fatalf("failed to resolve asset: %v", err)
		}
		fmt.Println(path)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", flag.Arg(0))
		usage()
	}
}
