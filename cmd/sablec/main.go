// Sable bytecode tool - inspects and transforms compiled chunk images
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/sable-lang/sable/manifest"
	"github.com/sable-lang/sable/pkg/bytecode"
	"github.com/sable-lang/sable/pkg/regir"
	"github.com/sable-lang/sable/pkg/store"
)

func main() {
	disasm := flag.Bool("d", false, "Disassemble the image")
	registers := flag.Bool("r", false, "Lower to register form and print the listing")
	output := flag.String("o", "", "Rewrite the image to the given path")
	listCache := flag.Bool("cache", false, "List cached images from the project's cache")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sablec [options] [image.sblc]\n\n")
		fmt.Fprintf(os.Stderr, "Inspects compiled Sable bytecode images.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sablec -d build/app.sblc      # Disassemble an image\n")
		fmt.Fprintf(os.Stderr, "  sablec -r build/app.sblc      # Show the register-form listing\n")
		fmt.Fprintf(os.Stderr, "  sablec -cache                 # List the project's cached images\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if *listCache {
		if err := printCacheKeys(); err != nil {
			fatal(err)
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}
	chunk, err := bytecode.UnmarshalImage(data)
	if err != nil {
		fatal(fmt.Errorf("%s: %w", path, err))
	}

	if *verbose {
		fmt.Printf("%s: %d bytes of code, %d constants\n",
			path, chunk.Len(), chunk.ConstantCount())
	}

	if *disasm {
		name := filepath.Base(path)
		fmt.Print(chunk.DisassembleWithName(name))
	}

	if *registers {
		rc, err := regir.Lower(chunk)
		if err != nil {
			fatal(fmt.Errorf("lowering %s: %w", path, err))
		}
		fmt.Print(rc.Disassemble())
	}

	if *output != "" {
		out, err := chunk.MarshalImage()
		if err != nil {
			fatal(err)
		}
		if err := os.WriteFile(*output, out, 0644); err != nil {
			fatal(err)
		}
		if *verbose {
			fmt.Printf("Wrote %s (%d bytes)\n", *output, len(out))
		}
	}
}

// printCacheKeys lists the images cached for the enclosing project.
func printCacheKeys() error {
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("no sable.toml found in this directory or any parent")
	}
	cachePath := m.CachePath()
	if cachePath == "" {
		return fmt.Errorf("%s: caching is disabled (set bytecode.cache-path)", m.Project.Name)
	}

	s, err := store.Open(cachePath)
	if err != nil {
		return err
	}
	defer s.Close()

	keys, err := s.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
