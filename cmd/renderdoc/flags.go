package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// runFlags holds the file-mode run command's flags.
type runFlags struct {
	common        commonFlags
	templatesRoot string
	outputPath    string
	concurrency   int
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// parseRunFlags parses the run command's flags and returns positional args.
func parseRunFlags(args []string) (*runFlags, []string, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	f := &runFlags{}

	fs.StringVarP(&f.templatesRoot, "templates", "t", "", "directory of *.json render request files")
	fs.StringVarP(&f.outputPath, "output", "o", "", "directory to write rendered PDFs")
	fs.IntVarP(&f.concurrency, "concurrency", "n", 0, "concurrent renders (0 = config default)")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printRunUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
