package main

import (
	"errors"
	"os"

	"github.com/cordata-io/renderdoc"
	"github.com/cordata-io/renderdoc/internal/config"
)

// Exit codes for the renderdoc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All requests rendered
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitPartial = 5 // Some requests rendered, some failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, renderdoc.ErrBrowserConnect) ||
		errors.Is(err, renderdoc.ErrRenderLoad) ||
		errors.Is(err, renderdoc.ErrRenderPDF) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, renderdoc.ErrIOTemplate) ||
		errors.Is(err, renderdoc.ErrIOOutput) {
		return ExitIO
	}

	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, renderdoc.ErrTemplateParse) ||
		errors.Is(err, renderdoc.ErrTemplateEval) ||
		errors.Is(err, renderdoc.ErrInvalidScale) {
		return ExitUsage
	}

	return ExitGeneral
}
