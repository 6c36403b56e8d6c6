package infer

import (
	"os"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sqltype/sqltype/pkg/ast"
	"github.com/sqltype/sqltype/pkg/problem"
	"github.com/sqltype/sqltype/pkg/types"
)

const testExamplesFile = "./testdata/examples.yaml"

type testExample struct {
	Name     string            `yaml:"name"`
	Globals  map[string]string `yaml:"globals"`
	Query    yaml.Node         `yaml:"query"`
	Type     string            `yaml:"type"`
	Errors   []string          `yaml:"errors"`
	Warnings []string          `yaml:"warnings"`
}

type testExamples struct {
	Examples []testExample `yaml:"examples"`
	Dump     []yaml.Node   `yaml:"dump"`
}

func TestExamples(t *testing.T) {
	b, err := os.ReadFile(testExamplesFile)
	require.NoError(t, err)

	examples := &testExamples{}
	err = yaml.Unmarshal(b, examples)
	require.NoError(t, err)

	inf := New(Options{})
	for _, ex := range examples.Examples {
		t.Run(ex.Name, func(t *testing.T) {
			root, err := ast.DecodeYAML(&ex.Query, ast.NewBuilder())
			require.NoError(t, err)

			globals := Bindings{}
			for name, expr := range ex.Globals {
				globals[name], err = types.Parse(expr)
				require.NoError(t, err)
			}

			res := inf.Infer(root, globals)

			if ex.Type != "" {
				expected, err := types.Parse(ex.Type)
				require.NoError(t, err)
				require.Truef(t, types.Equal(expected, res.Type()), "%s: %s", root, cmp.Diff(types.Key(expected), types.Key(res.Type())))
			}

			errs, warnings := codesBySeverity(res.Problems())
			require.Empty(t, cmp.Diff(ex.Errors, errs), "errors of %s", root)
			require.Empty(t, cmp.Diff(ex.Warnings, warnings), "warnings of %s", root)

			if len(ex.Errors) > 0 {
				require.IsType(t, &Failure{}, res)
			} else {
				require.IsType(t, &Success{}, res)
			}
		})
	}

	scs := spew.ConfigState{DisableMethods: true, Indent: " "}
	for i := range examples.Dump {
		t.Run("dump", func(t *testing.T) {
			root, err := ast.DecodeYAML(&examples.Dump[i], ast.NewBuilder())
			require.NoError(t, err)
			scs.Dump(inf.Infer(root, Bindings{"x": types.Int, "tbl": types.BagOf(types.Int)}))
		})
	}
}

func codesBySeverity(ps []problem.Problem) (errs, warnings []string) {
	for _, p := range ps {
		if p.Severity == problem.SeverityError {
			errs = append(errs, p.Detail.Code())
		} else {
			warnings = append(warnings, p.Detail.Code())
		}
	}
	return errs, warnings
}
