// ABOUTME: Tests for the prompt registry.
// ABOUTME: Covers embedded defaults, disk overrides, and missing prompts.

package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	r := NewRegistry("", nil)

	for _, agent := range []string{"supervisor", "email_agent", "calendar_agent", "legal_docs_app_agent"} {
		prompt, err := r.Load(agent, "v1")
		require.NoError(t, err, agent)
		assert.NotEmpty(t, prompt, agent)
	}
}

func TestLoad_DiskOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "supervisor"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "supervisor", "v1.txt"),
		[]byte("Custom supervisor instructions."), 0644))

	r := NewRegistry(dir, nil)

	prompt, err := r.Load("supervisor", "v1")
	require.NoError(t, err)
	assert.Equal(t, "Custom supervisor instructions.", prompt)
}

func TestLoad_FallsBackWhenOverrideMissing(t *testing.T) {
	r := NewRegistry(t.TempDir(), nil)

	prompt, err := r.Load("supervisor", "v1")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
}

func TestLoad_UnknownPrompt(t *testing.T) {
	r := NewRegistry("", nil)

	_, err := r.Load("supervisor", "v99")
	assert.ErrorIs(t, err, ErrPromptNotFound)

	_, err = r.Load("no_such_agent", "v1")
	assert.ErrorIs(t, err, ErrPromptNotFound)
}
