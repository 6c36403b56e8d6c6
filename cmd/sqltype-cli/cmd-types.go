package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sqltype/sqltype/pkg/types"
)

type typesCmd struct {
	Exprs []string `arg:"" help:"Type expressions, for example 'nullable(string(<=10))'"`

	out io.Writer `kong:"-"`
}

func (cmd *typesCmd) Run(_ *globalOptions) error {
	x := table.NewWriter()
	x.SetOutputMirror(stdout(cmd.out))
	x.AppendHeader(table.Row{"expression", "type", "alternatives", "nullable", "optional"})

	for _, expr := range cmd.Exprs {
		t, err := types.Parse(expr)
		if err != nil {
			return err
		}
		x.AppendRow(table.Row{expr, t, len(types.Alternatives(t)), types.MayBeNull(t), types.MayBeMissing(t)})
	}

	x.Render()
	return nil
}
