package infer

import (
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/sqltype/sqltype/pkg/ast"
	"github.com/sqltype/sqltype/pkg/functions"
	"github.com/sqltype/sqltype/pkg/problem"
	"github.com/sqltype/sqltype/pkg/types"
)

// Bindings maps global variable names to their types.
type Bindings map[string]types.StaticType

// Options configure an Inferencer. The zero value uses the builtin function catalog and
// discards logs.
type Options struct {
	Catalog *functions.Catalog
	// CustomTypes are additional CAST and IS targets keyed by case-insensitive name.
	CustomTypes map[string]types.StaticType
	Logger      log.Logger
}

// Inferencer computes static types of expression trees. It holds no per-call state and is
// safe for concurrent use.
type Inferencer struct {
	catalog     *functions.Catalog
	customTypes map[string]types.StaticType
	logger      log.Logger
}

func New(opts Options) *Inferencer {
	i := &Inferencer{
		catalog:     opts.Catalog,
		customTypes: make(map[string]types.StaticType, len(opts.CustomTypes)),
		logger:      opts.Logger,
	}
	if i.catalog == nil {
		i.catalog = functions.Builtins()
	}
	if i.logger == nil {
		i.logger = log.NewNopLogger()
	}
	for name, t := range opts.CustomTypes {
		i.customTypes[strings.ToLower(name)] = t
	}
	return i
}

func (i *Inferencer) Catalog() *functions.Catalog {
	return i.catalog
}

// Infer types root and every node below it against the given globals.
func (i *Inferencer) Infer(root ast.Expr, globals Bindings) Result {
	w := &walker{
		inf:         i,
		globals:     globals,
		problems:    problem.NewCollector(),
		annotations: Annotations{},
	}
	t := w.expr(root)

	o := outcome{
		typ:         t,
		problems:    w.problems.Problems(),
		annotations: w.annotations,
	}
	level.Debug(i.logger).Log("msg", "inferred query type", "type", t, "nodes", len(w.annotations), "problems", len(o.problems))

	if w.problems.HasErrors() {
		return &Failure{outcome: o, Root: root}
	}
	return &Success{outcome: o}
}

// Annotations is the type of every node of a tree, keyed by node id.
type Annotations map[ast.NodeID]types.StaticType

func (a Annotations) TypeOf(n ast.Node) (types.StaticType, bool) {
	t, ok := a[n.ID()]
	return t, ok
}

// Result is either *Success or *Failure.
type Result interface {
	// Type is the type of the root. For a Failure it is the best-effort continuation type.
	Type() types.StaticType
	Problems() []problem.Problem
	Annotations() Annotations
	isResult()
}

type outcome struct {
	typ         types.StaticType
	problems    []problem.Problem
	annotations Annotations
}

func (o outcome) Type() types.StaticType      { return o.typ }
func (o outcome) Problems() []problem.Problem { return o.problems }
func (o outcome) Annotations() Annotations    { return o.annotations }

// Success is returned when no problem has error severity. Warnings may still be present.
type Success struct {
	outcome
}

// Failure carries the partially typed tree for consumers that want to report on it.
type Failure struct {
	outcome
	Root ast.Expr
}

func (*Success) isResult() {}
func (*Failure) isResult() {}
