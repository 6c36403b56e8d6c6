package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqltype/sqltype/pkg/types"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(&globalOptions{})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "logfmt", cfg.LogFormat)
	assert.Equal(t, outputTable, cfg.Output)
	assert.True(t, cfg.Infer.Builtins)
	assert.Empty(t, cfg.CheckConfig())
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("SQLTYPE_TABLE_TYPE", "bag(struct{a: INT})")

	path := writeFile(t, "config.yaml", `
log_level: warn
output: yaml
globals:
  tbl: "${SQLTYPE_TABLE_TYPE}"
infer:
  builtins: false
  functions:
    - name: double
      required: [int]
      returns: int
`)

	cfg, err := loadConfig(&globalOptions{ConfigFile: path, ConfigExpandEnv: true, LogFormat: "json"})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, outputYAML, cfg.Output)
	assert.False(t, cfg.Infer.Builtins)

	globals, err := cfg.bindings()
	require.NoError(t, err)
	assert.True(t, types.Equal(types.BagOf(types.ClosedStruct(types.Field{Name: "a", Type: types.Int})), globals["tbl"]))

	opts, err := cfg.Infer.Options(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, opts.Catalog.Len())
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
		opts   globalOptions
	}{
		{
			name:   "unknown field",
			config: "log_levle: debug\n",
		},
		{
			name:   "unknown output",
			config: "output: xml\n",
		},
		{
			name:   "bad global",
			config: "globals: {x: 'strin'}\n",
		},
		{
			name:   "bad custom type",
			config: "infer: {custom_types: {money: 'decimal(2)'}}\n",
		},
		{
			name:   "unexpanded variable",
			config: "globals: {x: '${SQLTYPE_UNSET}'}\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.ConfigFile = writeFile(t, "config.yaml", tc.config)
			_, err := loadConfig(&tc.opts)
			assert.Error(t, err)
		})
	}

	_, err := loadConfig(&globalOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestCheckConfigWarnings(t *testing.T) {
	cfg, err := loadConfig(&globalOptions{LogLevel: "debug"})
	require.NoError(t, err)
	require.Len(t, cfg.CheckConfig(), 1)

	cfg.Infer.Builtins = false
	assert.Len(t, cfg.CheckConfig(), 2)
}
