package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sqltype/sqltype/pkg/ast"
	"github.com/sqltype/sqltype/pkg/infer"
	"github.com/sqltype/sqltype/pkg/problem"
	"github.com/sqltype/sqltype/pkg/types"
)

type checkCmd struct {
	Files []string `arg:"" type:"existingfile" help:"YAML query documents to check"`

	Global      map[string]string `short:"g" help:"Type of a global variable as name=type, overriding the config file"`
	Output      string            `short:"o" help:"Output format (table, yaml). Defaults to output of the config file"`
	Dump        bool              `help:"Dump the inference result of every query"`
	MetricsFile string            `type:"path" help:"Write problem counters to this file in the Prometheus text format"`
	Concurrency int               `default:"4" help:"Number of queries checked in parallel"`

	out io.Writer `kong:"-"`
}

type checkMetrics struct {
	registry *prometheus.Registry

	queries  *prometheus.CounterVec
	problems *prometheus.CounterVec
	nodes    prometheus.Counter
}

func newCheckMetrics() *checkMetrics {
	reg := prometheus.NewRegistry()
	return &checkMetrics{
		registry: reg,
		queries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "sqltype",
			Name:      "queries_checked_total",
			Help:      "Number of checked queries by outcome.",
		}, []string{"outcome"}),
		problems: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "sqltype",
			Name:      "problems_total",
			Help:      "Number of problems found by code and severity.",
		}, []string{"code", "severity"}),
		nodes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "sqltype",
			Name:      "nodes_typed_total",
			Help:      "Number of expression nodes typed.",
		}),
	}
}

func (m *checkMetrics) observe(res infer.Result) {
	outcome := "success"
	if _, ok := res.(*infer.Failure); ok {
		outcome = "failure"
	}
	m.queries.WithLabelValues(outcome).Inc()
	m.nodes.Add(float64(len(res.Annotations())))
	for _, p := range res.Problems() {
		m.problems.WithLabelValues(p.Detail.Code(), p.Severity.String()).Inc()
	}
}

type checkReport struct {
	File     string          `yaml:"file"`
	Query    string          `yaml:"query"`
	Type     string          `yaml:"type"`
	Success  bool            `yaml:"success"`
	Problems []problemReport `yaml:"problems,omitempty"`
}

type problemReport struct {
	Location string `yaml:"location"`
	Severity string `yaml:"severity"`
	Code     string `yaml:"code"`
	Message  string `yaml:"message"`
}

func (cmd *checkCmd) Run(opts *globalOptions) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}

	output := s.cfg.Output
	if cmd.Output != "" {
		output = cmd.Output
	}
	if output != outputTable && output != outputYAML {
		return fmt.Errorf("unknown output format %q", output)
	}

	globals := infer.Bindings{}
	for name, t := range s.globals {
		globals[name] = t
	}
	for name, expr := range cmd.Global {
		t, err := types.Parse(expr)
		if err != nil {
			return fmt.Errorf("global %s: %w", name, err)
		}
		globals[name] = t
	}

	checked, size, err := cmd.checkFiles(s, globals)
	if err != nil {
		return err
	}

	metrics := newCheckMetrics()
	reports := make([]checkReport, 0, len(checked))
	for _, c := range checked {
		level.Info(s.logger).Log("msg", "checked query", "file", c.file, "type", c.res.Type(), "problems", len(c.res.Problems()), "duration", c.duration)

		metrics.observe(c.res)
		reports = append(reports, newCheckReport(c.file, c.root, c.res))

		if cmd.Dump {
			scs := spew.ConfigState{DisableMethods: true, Indent: " "}
			scs.Fdump(stdout(cmd.out), c.res)
		}
	}

	if output == outputYAML {
		err = writeYAMLReports(stdout(cmd.out), reports)
	} else {
		writeTableReports(stdout(cmd.out), reports, size)
	}
	if err != nil {
		return err
	}

	if cmd.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cmd.MetricsFile, metrics.registry); err != nil {
			return fmt.Errorf("failed to write metrics file %s: %w", cmd.MetricsFile, err)
		}
	}

	failed := 0
	for _, r := range reports {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed type checking", failed, len(reports))
	}
	return nil
}

type checkedQuery struct {
	file     string
	root     ast.Expr
	res      infer.Result
	duration time.Duration
}

// checkFiles decodes and infers every file. Results keep the order of cmd.Files.
func (cmd *checkCmd) checkFiles(s *session, globals infer.Bindings) ([]checkedQuery, uint64, error) {
	checked := make([]checkedQuery, len(cmd.Files))
	size := atomic.NewUint64(0)

	var g errgroup.Group
	g.SetLimit(max(cmd.Concurrency, 1))
	for i, file := range cmd.Files {
		i, file := i, file
		g.Go(func() error {
			buff, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			size.Add(uint64(len(buff)))

			root, err := ast.UnmarshalExpr(buff, ast.NewBuilder())
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", file, err)
			}

			start := time.Now()
			res := s.inf.Infer(root, globals)
			checked[i] = checkedQuery{file: file, root: root, res: res, duration: time.Since(start)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return checked, size.Load(), nil
}

func newCheckReport(file string, root ast.Expr, res infer.Result) checkReport {
	r := checkReport{
		File:  file,
		Query: root.String(),
		Type:  res.Type().String(),
	}
	_, r.Success = res.(*infer.Success)
	for _, p := range res.Problems() {
		r.Problems = append(r.Problems, problemReport{
			Location: p.Location.String(),
			Severity: p.Severity.String(),
			Code:     p.Detail.Code(),
			Message:  p.Detail.Message(),
		})
	}
	return r
}

func writeYAMLReports(w io.Writer, reports []checkReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return enc.Close()
}

func writeTableReports(w io.Writer, reports []checkReport, size uint64) {
	errs, warnings := 0, 0
	for _, r := range reports {
		fmt.Fprintf(w, "%s: %s\n", r.File, r.Query)
		fmt.Fprintf(w, "type: %s\n", r.Type)

		if len(r.Problems) == 0 {
			fmt.Fprintln(w)
			continue
		}

		x := table.NewWriter()
		x.SetOutputMirror(w)
		x.AppendHeader(table.Row{"location", "severity", "code", "message"})
		for _, p := range r.Problems {
			x.AppendRow(table.Row{p.Location, p.Severity, p.Code, p.Message})
			if p.Severity == problem.SeverityError.String() {
				errs++
			} else {
				warnings++
			}
		}
		x.Render()
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "checked %s queries (%s): %s errors, %s warnings\n",
		humanize.Comma(int64(len(reports))), humanize.Bytes(size), humanize.Comma(int64(errs)), humanize.Comma(int64(warnings)))
}
