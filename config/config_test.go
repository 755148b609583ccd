package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqcel/assistant"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), c)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c := Defaults()
	c.PageSize = 50
	c.CSVDelimiter = ";"
	c.Debug = true
	require.NoError(t, Save(c, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
	assert.Equal(t, ';', loaded.Delimiter())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PARQCEL_PAGE_SIZE", "25")
	t.Setenv("PARQCEL_ASSISTANT_BACKEND", "ollama")
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 25, c.PageSize)
	assert.Equal(t, "ollama", c.AssistantBackend)
}

func TestValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 0\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	c := Defaults()
	c.CSVDelimiter = ";;"
	assert.Error(t, c.Validate())
	assert.Equal(t, rune(0), Defaults().Delimiter())
}

func TestSession(t *testing.T) {
	var buf bytes.Buffer
	c := Defaults()
	c.Debug = true
	c.PageSize = 2
	s, err := NewSession(c, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "parqcel: session "+s.ID.String())
	assert.IsType(t, assistant.Rules{}, s.Assistant)

	m := s.NewModel()
	assert.Equal(t, 2, m.PageSize())

	ctx, cancel := s.TimeoutContext(context.Background())
	defer cancel()
	_, ok := ctx.Deadline()
	assert.True(t, ok)

	c.AssistantBackend = "unknown"
	_, err = NewSession(c, nil)
	assert.Error(t, err)
}
