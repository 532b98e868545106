package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cordata-io/renderdoc/internal/config"
)

// Environment holds injectable dependencies for testability, separating
// production wiring from what a test supplies.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *config.Config
}

// DefaultEnv returns the production environment, with a default config
// that LoadConfig overlays once flags are parsed.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
		Config: config.DefaultConfig(),
	}
}
