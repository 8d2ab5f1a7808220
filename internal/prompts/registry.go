// ABOUTME: Prompt registry resolving <agent_name>/<version>.txt instruction files.
// ABOUTME: Disk directory takes precedence; embedded defaults are the fallback.

package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

//go:embed defaults
var defaultsFS embed.FS

// ErrPromptNotFound indicates no prompt file exists for the requested
// agent/version pair. A missing prompt is a build failure, never an empty
// default.
var ErrPromptNotFound = errors.New("prompt not found")

// Registry loads per-agent instruction text by agent name and version.
type Registry struct {
	dir    string // optional override directory; empty means embedded only
	logger *slog.Logger
}

// NewRegistry creates a registry. dir may be empty to serve embedded prompts
// only; when set, files under dir shadow the embedded defaults.
func NewRegistry(dir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		dir:    dir,
		logger: logger.With("component", "prompts"),
	}
}

// Load returns the instruction text for <agentName>/<version>.txt.
func (r *Registry) Load(agentName, version string) (string, error) {
	rel := filepath.Join(agentName, version+".txt")

	if r.dir != "" {
		data, err := os.ReadFile(filepath.Join(r.dir, rel))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("reading prompt %s: %w", rel, err)
		}
	}

	data, err := defaultsFS.ReadFile("defaults/" + agentName + "/" + version + ".txt")
	if err != nil {
		r.logger.Error("prompt file missing", "agent", agentName, "version", version)
		return "", fmt.Errorf("%w: %s/%s.txt", ErrPromptNotFound, agentName, version)
	}
	return strings.TrimRight(string(data), "\n") + "\n", nil
}
