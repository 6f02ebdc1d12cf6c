package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/keyverify/internal/api"
	"github.com/yourorg/keyverify/internal/registry"
)

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, BuildVersion+"\n", out.String())
}

func TestSeedKeys(t *testing.T) {
	keys, err := seedKeys(api.Config{})
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultSeedKeys, keys)

	keys, err = seedKeys(api.Config{SeedKeys: "one, two"})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, keys)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keys: [from-file]\n"), 0o600))
	keys, err = seedKeys(api.Config{SeedKeys: "ignored", SeedKeysFile: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"from-file"}, keys)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}
