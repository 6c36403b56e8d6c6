package infer

import (
	"flag"
	"sort"
	"strings"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/sqltype/sqltype/pkg/functions"
	"github.com/sqltype/sqltype/pkg/types"
	"github.com/sqltype/sqltype/pkg/util"
)

// Config is the YAML form of Options. Types are written as type expressions.
type Config struct {
	Builtins    bool                        `yaml:"builtins"`
	Functions   []functions.SignatureConfig `yaml:"functions,omitempty"`
	CustomTypes map[string]string           `yaml:"custom_types,omitempty"`
}

func (c *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.BoolVar(&c.Builtins, util.PrefixConfig(prefix, "builtins"), true, "Include the builtin function catalog.")
}

// Validate reports every invalid function signature and custom type at once.
func (c *Config) Validate() error {
	_, errs := c.build()
	return multierr.Combine(errs...)
}

// Options builds inferencer options from the config. Custom functions override builtins of
// the same name.
func (c *Config) Options(logger log.Logger) (Options, error) {
	opts, errs := c.build()
	if err := multierr.Combine(errs...); err != nil {
		return Options{}, err
	}
	opts.Logger = logger
	return opts, nil
}

// CheckConfig returns warnings for settings that are valid but likely unintended.
func (c *Config) CheckConfig() []ConfigWarning {
	var warnings []ConfigWarning
	if !c.Builtins && len(c.Functions) == 0 {
		warnings = append(warnings, warnNoFunctions)
	}

	seen := map[string]struct{}{}
	for _, fn := range c.Functions {
		name := strings.ToLower(fn.Name)
		if _, ok := seen[name]; ok {
			warnings = append(warnings, ConfigWarning{
				Message: "function " + name + " is declared more than once",
				Explain: "The last declaration wins.",
			})
		}
		seen[name] = struct{}{}

		if _, ok := functions.Builtins().Lookup(name); ok && c.Builtins {
			warnings = append(warnings, ConfigWarning{
				Message: "function " + name + " overrides a builtin",
			})
		}
	}
	return warnings
}

type ConfigWarning struct {
	Message string
	Explain string
}

var warnNoFunctions = ConfigWarning{
	Message: "no functions are available",
	Explain: "Builtins are disabled and no custom functions are configured. Every call will fail to resolve.",
}

func (c *Config) build() (Options, []error) {
	var (
		errs []error
		sigs []functions.Signature
	)
	for _, fc := range c.Functions {
		sig, err := fc.Build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sigs = append(sigs, sig)
	}

	custom := make(map[string]types.StaticType, len(c.CustomTypes))
	names := make([]string, 0, len(c.CustomTypes))
	for name := range c.CustomTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t, err := types.Parse(c.CustomTypes[name])
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "custom type %s", name))
			continue
		}
		custom[name] = t
	}

	var builtins *functions.Catalog
	if c.Builtins {
		builtins = functions.Builtins()
	}
	return Options{
		Catalog:     functions.Merge(builtins, functions.NewCatalog(sigs...)),
		CustomTypes: custom,
	}, errs
}
