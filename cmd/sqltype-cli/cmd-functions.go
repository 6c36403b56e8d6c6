package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/sqltype/sqltype/pkg/functions"
	"github.com/sqltype/sqltype/pkg/types"
)

type functionsCmd struct {
	Names  []string `arg:"" optional:"" help:"Only list these functions"`
	Output string   `short:"o" help:"Output format (table, yaml). yaml is accepted as functions in the config file"`

	out io.Writer `kong:"-"`
}

func (cmd *functionsCmd) Run(opts *globalOptions) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}

	catalog := s.inf.Catalog()
	sigs := catalog.Signatures()
	if len(cmd.Names) > 0 {
		sigs = sigs[:0]
		for _, name := range cmd.Names {
			sig, ok := catalog.Lookup(name)
			if !ok {
				return fmt.Errorf("no such function: %s", name)
			}
			sigs = append(sigs, sig)
		}
	}

	output := s.cfg.Output
	if cmd.Output != "" {
		output = cmd.Output
	}
	switch output {
	case outputYAML:
		cfgs := make([]functions.SignatureConfig, 0, len(sigs))
		for _, sig := range sigs {
			cfgs = append(cfgs, signatureConfig(sig))
		}
		out, err := yaml.Marshal(cfgs)
		if err != nil {
			return fmt.Errorf("failed to marshal functions: %w", err)
		}
		_, err = stdout(cmd.out).Write(out)
		return err
	case outputTable:
		x := table.NewWriter()
		x.SetOutputMirror(stdout(cmd.out))
		x.AppendHeader(table.Row{"name", "arguments", "parameters", "returns"})
		for _, sig := range sigs {
			x.AppendRow(table.Row{sig.Name, sig.Arity(), parameters(sig), sig.Returns})
		}
		x.AppendFooter(table.Row{humanize.Comma(int64(len(sigs))) + " functions"})
		x.Render()
		return nil
	}
	return fmt.Errorf("unknown output format %q", output)
}

func parameters(sig functions.Signature) string {
	var params []string
	for _, t := range sig.Required {
		params = append(params, t.String())
	}
	for _, t := range sig.Optional {
		params = append(params, "["+t.String()+"]")
	}
	if sig.Variadic != nil {
		params = append(params, sig.Variadic.String()+"...")
	}
	return strings.Join(params, ", ")
}

// signatureConfig is the inverse of SignatureConfig.Build. Type strings parse back to the
// same types.
func signatureConfig(sig functions.Signature) functions.SignatureConfig {
	cfg := functions.SignatureConfig{
		Name:     sig.Name,
		Required: typeStrings(sig.Required),
		Optional: typeStrings(sig.Optional),
		Returns:  sig.Returns.String(),
	}
	if sig.Variadic != nil {
		cfg.Variadic = sig.Variadic.String()
	}
	return cfg
}

func typeStrings(ts []types.StaticType) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.String())
	}
	return out
}
