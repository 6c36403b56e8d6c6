package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/drone/envsubst"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/sqltype/sqltype/pkg/infer"
	"github.com/sqltype/sqltype/pkg/types"
	"github.com/sqltype/sqltype/pkg/util"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
)

// config is the document loaded with --config-file.
type config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Output    string `yaml:"output"`

	// Globals are the types of global variables, written as type expressions.
	Globals map[string]string `yaml:"globals,omitempty"`

	Infer infer.Config `yaml:"infer"`
}

func (c *config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&c.LogLevel, util.PrefixConfig(prefix, "log.level"), "info", "Only log messages with the given severity or above.")
	f.StringVar(&c.LogFormat, util.PrefixConfig(prefix, "log.format"), "logfmt", "Output log messages in the given format (logfmt, json).")
	f.StringVar(&c.Output, util.PrefixConfig(prefix, "output"), outputTable, "Output format of the check command (table, yaml).")

	c.Infer.RegisterFlagsAndApplyDefaults(util.PrefixConfig(prefix, "infer"), f)
}

func (c *config) Validate() error {
	var errs []error
	if c.Output != outputTable && c.Output != outputYAML {
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Output))
	}
	if _, err := c.bindings(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, c.Infer.Validate())
	return multierr.Combine(errs...)
}

// CheckConfig returns warnings for suspect but valid settings.
func (c *config) CheckConfig() []infer.ConfigWarning {
	warnings := c.Infer.CheckConfig()
	if c.LogLevel == "debug" {
		warnings = append(warnings, infer.ConfigWarning{
			Message: "log level debug logs every typed node",
			Explain: "Expect one log line per expression of every checked query.",
		})
	}
	return warnings
}

// bindings parses the configured globals in name order so that errors are reported
// deterministically.
func (c *config) bindings() (infer.Bindings, error) {
	names := make([]string, 0, len(c.Globals))
	for name := range c.Globals {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	out := make(infer.Bindings, len(c.Globals))
	for _, name := range names {
		t, err := types.Parse(c.Globals[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("global %s: %w", name, err))
			continue
		}
		out[name] = t
	}
	return out, multierr.Combine(errs...)
}

// loadConfig applies defaults, overlays the config file if one is given and finally the
// global command line options.
func loadConfig(opts *globalOptions) (*config, error) {
	cfg := &config{}
	cfg.RegisterFlagsAndApplyDefaults("", &flag.FlagSet{})

	if opts.ConfigFile != "" {
		buff, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read configFile %s: %w", opts.ConfigFile, err)
		}

		if opts.ConfigExpandEnv {
			s, err := envsubst.EvalEnv(string(buff))
			if err != nil {
				return nil, fmt.Errorf("failed to expand env vars from configFile %s: %w", opts.ConfigFile, err)
			}
			buff = []byte(s)
		}

		dec := yaml.NewDecoder(bytes.NewReader(buff))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse configFile %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
