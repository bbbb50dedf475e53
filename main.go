// Completion: 100% - CLI interface complete, all flags working
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/xyproto/jingle/internal/elfobj"
	"github.com/xyproto/jingle/internal/elfread"
	"github.com/xyproto/jingle/internal/engine"
)

// A tiny ELF64 relocatable object writer and inspector

const versionString = "jingle 1.0.0"

var (
	errorColor = color.New(color.FgRed, color.Bold)
	infoColor  = color.New(color.FgCyan)
)

func errorf(w io.Writer, format string, args ...any) {
	errorColor.Fprint(w, "[ERROR]")
	fmt.Fprintf(w, " "+format+"\n", args...)
}

func infof(w io.Writer, format string, args ...any) {
	infoColor.Fprint(w, "[INFO]")
	fmt.Fprintf(w, " "+format+"\n", args...)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit code
func run(args []string, stdout, stderr io.Writer) int {
	cfg := configFromEnv()

	fs := flag.NewFlagSet("jingle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jingle [OPTIONS] [--] <INPUT FILE>\n")
		fmt.Fprintf(stderr, "OPTIONS:\n")
		fs.PrintDefaults()
	}

	// NOTE: flags must come BEFORE the filename: jingle -syms hello.o
	var displayHeader = fs.Bool("header", false, "display the ELF file header")
	var displaySections = fs.Bool("sections", false, "display the section headers")
	var displaySyms = fs.Bool("syms", false, "display the symbol table")
	var displayReloc = fs.Bool("reloc", false, "display the relocation entries")
	var displayContents = fs.Uint("contents", 0, "display the contents of the section with this index (0 to disable)")
	var writeFlag = fs.String("write", "", "write the sample hello world object to this file, then inspect it")
	var archFlag = fs.String("arch", cfg.Arch, "target architecture for -write (amd64, arm64)")
	var osFlag = fs.String("os", cfg.OS, "target OS/ABI for -write (sysv, linux, freebsd, netbsd, openbsd, solaris)")
	var targetFlag = fs.String("target", "", "target platform for -write (e.g., amd64-linux, arm64-freebsd)")
	var verbose = fs.Bool("v", false, "verbose mode (trace every builder operation)")
	var verboseLong = fs.Bool("verbose", false, "verbose mode (trace every builder operation)")
	var version = fs.Bool("version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	if *version {
		fmt.Fprintln(stdout, versionString)
		return 0
	}

	elfobj.VerboseMode = *verbose || *verboseLong || cfg.Verbose
	if cfg.NoColor {
		color.NoColor = true
	}

	inputFile := fs.Arg(0)

	if *writeFlag != "" {
		arch, osName := *archFlag, *osFlag
		if *targetFlag != "" {
			parts := strings.Split(*targetFlag, "-")
			if len(parts) != 2 {
				errorf(stderr, "Invalid -target format '%s'. Expected format: ARCH-OS (e.g., amd64-linux)", *targetFlag)
				return 1
			}
			arch, osName = parts[0], parts[1]
		}
		platform, err := engine.ParsePlatform(arch, osName)
		if err != nil {
			errorf(stderr, "%v", err)
			return 1
		}
		if elfobj.VerboseMode {
			fmt.Fprintf(stderr, "Writing sample object for %s\n", platform.FullString())
		}
		n, err := writeSample(*writeFlag, platform)
		if err != nil {
			errorf(stderr, "Could not write '%s': %v", *writeFlag, err)
			return 1
		}
		infof(stdout, "Wrote %d bytes (%s) to '%s'", n, humanize.Bytes(n), *writeFlag)
		if inputFile == "" {
			inputFile = *writeFlag
		}
	}

	if inputFile == "" {
		fs.Usage()
		errorf(stderr, "No input files provided")
		return 1
	}

	f, err := elfread.Open(inputFile)
	switch {
	case err == nil:
	case errors.Is(err, elfread.ErrNotELF):
		errorf(stderr, "'%s' is not a valid ELF file (doesn't start with magic number 0x7f E L F)", inputFile)
		return 1
	case errors.Is(err, elfread.ErrUnsupportedClass):
		errorf(stderr, "'%s' is not a 64-bit ELF file, and 32-bit files are not supported", inputFile)
		return 1
	case errors.Is(err, elfread.ErrFormat):
		errorf(stderr, "'%s' is not a valid ELF file: %v", inputFile, err)
		return 1
	default:
		errorf(stderr, "Could not open file '%s': %v", inputFile, err)
		return 1
	}
	defer f.Close()

	infof(stdout, "Read %d bytes (%s) from '%s'", f.Len(), humanize.Bytes(uint64(f.Len())), inputFile)

	if *displayHeader {
		printHeader(stdout, f)
	}
	steps := []struct {
		enabled bool
		print   func(io.Writer, *elfread.File) error
	}{
		{*displaySections, printSections},
		{*displaySyms, printSymbols},
		{*displayReloc, printRelocations},
	}
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		if err := step.print(stdout, f); err != nil {
			errorf(stderr, "'%s': %v", inputFile, err)
			return 1
		}
	}
	if *displayContents != 0 {
		if err := printContents(stdout, f, int(*displayContents)); err != nil {
			errorf(stderr, "'%s': %v", inputFile, err)
			return 1
		}
	}
	return 0
}
