// Okra CLI - runs guest source files on an embedded interpreter.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/okralang/okra/config"
	"github.com/okralang/okra/interp"
	"github.com/okralang/okra/vfs"
)

func main() {
	evalCode := flag.String("e", "", "Evaluate a line of code and exit")
	capture := flag.Bool("capture", false, "Capture output and print it once at exit")
	errorReport := flag.Bool("error-report", false, "Print a CBOR error report (hex) on guest errors")
	verbosity := flag.Int("v", 0, "Log verbosity")
	configDir := flag.String("config", ".", "Directory to search for okra.toml")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: okra [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Runs source files on an embedded Okra interpreter.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  okra script.lua            # Run a file\n")
		fmt.Fprintf(os.Stderr, "  okra -e 'print(\"hi\")'      # Evaluate a snippet\n")
		fmt.Fprintf(os.Stderr, "  okra -error-report bad.lua # Dump a crash report on failure\n")
	}
	flag.Parse()

	cfg, err := config.FindAndLoad(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading okra.toml: %v\n", err)
		os.Exit(1)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if *verbosity == 0 {
		*verbosity = cfg.Debug.Verbosity
	}
	commonlog.Configure(*verbosity, nil)

	opts := cfg.Options()
	opts.FS = vfs.NewOS()
	i, err := interp.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting interpreter: %v\n", err)
		os.Exit(1)
	}
	if *capture {
		i.State().CaptureOutput()
	}

	status := 0
	if *evalCode != "" {
		status = run(*errorReport, func() error {
			_, err := i.Eval([]byte(*evalCode))
			return err
		})
	}
	for _, path := range flag.Args() {
		if status != 0 {
			break
		}
		status = run(*errorReport, func() error {
			_, err := i.LoadFile(path)
			return err
		})
	}

	if *capture {
		fmt.Print(i.State().GetAndClearCapturedOutput())
	}
	i.Release()
	os.Exit(status)
}

// run executes one unit of work and reports any guest error.
func run(report bool, fn func() error) int {
	err := fn()
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "%v\n", err)

	var ge *interp.GuestError
	if report && errors.As(err, &ge) {
		data, encErr := interp.EncodeErrorReport(ge)
		if encErr != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", encErr)
		} else {
			fmt.Fprintf(os.Stderr, "error-report: %s\n", hex.EncodeToString(data))
		}
	}
	return 1
}
