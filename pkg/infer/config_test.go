package infer

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/sqltype/sqltype/pkg/functions"
	"github.com/sqltype/sqltype/pkg/types"
)

func TestConfigFlags(t *testing.T) {
	cfg := &Config{}
	f := flag.NewFlagSet("", flag.ContinueOnError)
	cfg.RegisterFlagsAndApplyDefaults("infer", f)
	assert.True(t, cfg.Builtins)

	require.NoError(t, f.Parse([]string{"-infer.builtins=false"}))
	assert.False(t, cfg.Builtins)
}

func TestConfigOptions(t *testing.T) {
	in := `
builtins: true
functions:
  - name: distance
    required: [float, float]
    returns: decimal
custom_types:
  Money: "decimal"
`
	cfg := &Config{}
	require.NoError(t, yaml.Unmarshal([]byte(in), cfg))
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.CheckConfig())

	opts, err := cfg.Options(nil)
	require.NoError(t, err)
	assert.Equal(t, functions.Builtins().Len()+1, opts.Catalog.Len())

	inf := New(opts)
	res := inf.Infer(mustDecode(t, `{call: distance, args: [1.5, {cast: 2, as: MONEY}]}`), nil)
	require.IsType(t, &Failure{}, res)
	assert.Equal(t, "INVALID_ARGUMENT_TYPE_FOR_FUNCTION", res.Problems()[0].Detail.Code())
	assertType(t, types.Decimal, res.Type())

	res = inf.Infer(mustDecode(t, `{call: upper, args: [a]}`), nil)
	require.IsType(t, &Success{}, res)
}

func TestConfigWithoutBuiltins(t *testing.T) {
	cfg := &Config{}
	opts, err := cfg.Options(nil)
	require.NoError(t, err)
	assert.Zero(t, opts.Catalog.Len())
	assert.Equal(t, []ConfigWarning{warnNoFunctions}, cfg.CheckConfig())

	res := New(opts).Infer(mustDecode(t, `{call: upper, args: [a]}`), nil)
	assert.Equal(t, "NO_SUCH_FUNCTION", res.Problems()[0].Detail.Code())
}

func TestConfigValidateCombinesErrors(t *testing.T) {
	cfg := &Config{
		Functions: []functions.SignatureConfig{
			{Name: "f", Returns: "strin"},
			{Name: "g", Required: []string{"int"}, Returns: "int"},
			{Returns: "int"},
		},
		CustomTypes: map[string]string{"money": "decimal(2)"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)

	_, err = cfg.Options(nil)
	assert.Error(t, err)
}

func TestCheckConfig(t *testing.T) {
	cfg := &Config{
		Builtins: true,
		Functions: []functions.SignatureConfig{
			{Name: "Upper", Required: []string{"int"}, Returns: "int"},
			{Name: "pick", Returns: "int"},
			{Name: "PICK", Returns: "int"},
		},
	}

	warnings := cfg.CheckConfig()
	require.Len(t, warnings, 2)
	assert.Equal(t, "function upper overrides a builtin", warnings[0].Message)
	assert.Equal(t, "function pick is declared more than once", warnings[1].Message)
}
