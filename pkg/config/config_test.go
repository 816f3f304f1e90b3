package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meshbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
mesh:
  peers: 25
  identity_convention: event
poll:
  duration_s: 120
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Mesh.Peers)
	assert.Equal(t, "event", cfg.Mesh.IdentityConvention)
	assert.Equal(t, 120, cfg.Poll.DurationS)

	// Untouched fields keep defaults.
	assert.Equal(t, "go-p2p-node", cfg.Image.Name)
	assert.Equal(t, 5, cfg.Poll.IntervalS)
	assert.Equal(t, "bootstrap-node", cfg.Mesh.BootstrapName)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "negative peers",
			content: "mesh:\n  peers: -1\n",
			wantErr: "mesh.peers",
		},
		{
			name:    "bad convention",
			content: "mesh:\n  identity_convention: guess\n",
			wantErr: "identity_convention",
		},
		{
			name:    "zero interval",
			content: "poll:\n  interval_s: 0\n",
			wantErr: "poll.interval_s",
		},
		{
			name:    "counter not whitelisted",
			content: "poll:\n  counters: [\"bogus_total\"]\n",
			wantErr: "bogus_total",
		},
		{
			name:    "not yaml",
			content: "{{{",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
