package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BurntSushi/ipsae/ipsae"
	"github.com/BurntSushi/ipsae/pae"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ipsae.DefaultCutoffs, cfg.Cutoffs())
	assert.Equal(t, pae.DefaultKeys, cfg.PAEKeys)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "console", cfg.Logger().Format)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
pae_cutoff: 15
distance_cutoff: 15
pae_keys: [pae, predicted_aligned_error]
workers: 2
log_format: json
`), 0o644))
	t.Setenv("IPSAE_WORKERS", "6")
	t.Setenv("IPSAE_LOG_LEVEL", "DEBUG")

	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)
	assert.Equal(t, ipsae.Cutoffs{PAE: 15, Distance: 15}, cfg.Cutoffs())
	assert.Equal(t, []string{"pae", "predicted_aligned_error"}, cfg.PAEKeys)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadSearchPath(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ipsae.yaml"),
		[]byte("distance_cutoff: 10\n"), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.DistanceCutoff)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			PAECutoff:      30,
			DistanceCutoff: 8,
			PAEKeys:        []string{"pae"},
			Workers:        1,
			OutputDir:      "out",
			Log:            LogConfig{Level: "info", Format: "json"},
		}
	}
	require.NoError(t, Validate(valid()))

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"pae cutoff", func(c *Config) { c.PAECutoff = 0 },
			"pae_cutoff must be greater than 0"},
		{"distance cutoff", func(c *Config) { c.DistanceCutoff = -2 },
			"distance_cutoff must be greater than 0"},
		{"workers", func(c *Config) { c.Workers = 0 },
			"workers must be at least 1"},
		{"output", func(c *Config) { c.OutputDir = "" },
			"output_dir is required"},
		{"level", func(c *Config) { c.Log.Level = "loud" },
			"log_level must be one of [debug info warn error]"},
		{"keys", func(c *Config) { c.PAEKeys = nil },
			"pae_keys must be at least 1"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := valid()
			test.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.want)
		})
	}
}

// chdir changes the working directory to dir for the duration of the test,
// like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}
