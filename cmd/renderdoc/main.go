package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/cordata-io/renderdoc"
	"github.com/cordata-io/renderdoc/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()
	os.Exit(run(os.Args, env))
}

// run dispatches to a subcommand and returns the process exit code. It
// keeps flag parsing separate from main so execution stays testable.
func run(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[1] {
	case "version":
		fmt.Fprintf(env.Stdout, "renderdoc %s\n", Version)
		return ExitSuccess
	case "help":
		if len(args) > 2 && args[2] == "run" {
			printRunUsage(env.Stdout)
		} else {
			printUsage(env.Stdout)
		}
		return ExitSuccess
	case "run":
		return runCommand(args[2:], env)
	default:
		fmt.Fprintf(env.Stderr, "unknown command %q\n", args[1])
		printUsage(env.Stderr)
		return ExitUsage
	}
}

func runCommand(args []string, env *Environment) int {
	flags, _, err := parseRunFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case the Go runtime default applies and the program
	// continues safely.
	logFn := func(string, ...interface{}) {}
	if flags.common.verbose {
		logFn = func(format string, a ...interface{}) { fmt.Fprintf(env.Stderr, format+"\n", a...) }
	}
	_, _ = maxprocs.Set(maxprocs.Logger(logFn))

	cfg := env.Config
	if flags.common.config != "" {
		loaded, err := config.LoadConfig(flags.common.config)
		if err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		cfg = loaded
	}
	if flags.templatesRoot != "" {
		cfg.FileMode.TemplatesRoot = flags.templatesRoot
	}
	if flags.outputPath != "" {
		cfg.FileMode.OutputPath = flags.outputPath
	}
	if flags.concurrency > 0 {
		cfg.FileMode.Concurrency = flags.concurrency
	}
	if cfg.IsConcurrencyUnsafe() {
		env.Logger.Warn("queue.maxConcurrentRenders exceeds browserPool.maxSize")
	}

	pool, err := renderdoc.NewBrowserPool(renderdoc.PoolOptions{
		MinSize:               cfg.BrowserPool.MinSize,
		MaxSize:               cfg.BrowserPool.MaxSize,
		AcquireTimeout:        cfg.BrowserPool.AcquireTimeout,
		IdleTimeout:           cfg.BrowserPool.IdleTimeout,
		MaxRendersPerInstance: cfg.BrowserPool.MaxRendersPerInstance,
		Logger:                env.Logger,
	})
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	defer pool.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := renderdoc.NewPipeline(pool)
	dispatcher := renderdoc.NewFileDispatcher(pipeline, cfg.FileMode, env.Logger)

	results, err := dispatcher.Run(ctx)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "%s: %v\n", r.InputPath, r.Err)
		} else if flags.common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%s)\n", r.InputPath, r.JobID, r.Duration)
		}
	}

	switch {
	case failed == 0:
		return ExitSuccess
	case failed == len(results):
		return ExitGeneral
	default:
		return ExitPartial
	}
}
