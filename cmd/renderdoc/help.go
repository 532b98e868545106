package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: renderdoc <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        Render every *.json request file under a templates directory")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'renderdoc help <command>' for details on a specific command.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Queue-mode dispatch has no CLI surface: it is a library entry point")
	fmt.Fprintln(w, "(renderdoc.NewQueueDispatcher) for callers that supply their own Queue")
	fmt.Fprintln(w, "transport implementation.")
}

// printRunUsage prints usage for the run command.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: renderdoc run [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every *.json request file under a templates directory to PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -t, --templates <dir>   Directory of *.json render request files")
	fmt.Fprintln(w, "  -o, --output <dir>      Directory to write rendered PDFs")
	fmt.Fprintln(w, "  -n, --concurrency <n>   Concurrent renders (0 = config default)")
	fmt.Fprintln(w, "  -c, --config <name>     Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet             Only show errors")
	fmt.Fprintln(w, "  -v, --verbose           Show detailed timing")
}
