// Package hints provides actionable error hints for the render service's
// own failure modes — pool exhaustion/disposal, browser launch, PDF
// generation, config resolution — appended to the wrapped error so an
// operator sees a concrete next step, not just "deadline exceeded".
// Hints are formatted consistently as "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/cordata-io/renderdoc/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	// Detect CI environment
	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	// Suggest ROD_NO_SANDBOX for container/CI environments
	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	// Suggest ROD_BROWSER_BIN if not set
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the acquire/render timeout
// for large documents.
func ForTimeout() string {
	return format("for large documents, raise browserPool.acquireTimeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/renderdoc/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/renderdoc) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/renderdoc") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForRenderPDF returns a hint for a page.PDF failure, inspecting err's
// message for the network/navigation failure signatures a headless
// Chrome tab produces when a template references an external asset
// (image, font, stylesheet) that never loads.
func ForRenderPDF(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "context deadline exceeded"):
		return format("page never reached network-idle; inline or self-host any external images/fonts/stylesheets the template references")
	case strings.Contains(msg, "net::") || strings.Contains(msg, "ERR_NAME_NOT_RESOLVED") || strings.Contains(msg, "ERR_CONNECTION"):
		return format("a referenced asset failed to load; confirm its URL is reachable from the render host, not just the caller")
	default:
		return ""
	}
}

// ForPoolDisposed returns a hint for an Acquire call against a pool that
// has already been shut down — the caller is almost always racing its
// own shutdown sequence: a request arriving after Shutdown was called.
func ForPoolDisposed() string {
	return format("the browser pool is shut down; stop accepting new render requests before calling Shutdown")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
