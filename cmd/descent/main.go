// Package main provides the descent CLI: fit a linear model to a CSV file
// with one or every gradient-descent method.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"gonum.org/v1/plot/vg"

	"github.com/born-ml/descent/internal/dataset"
	"github.com/born-ml/descent/internal/optim"
	"github.com/born-ml/descent/internal/report"
)

const version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "descent: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	data      string
	target    int
	header    bool
	bias      bool
	method    string
	holdout   float64
	chart     string
	logScale  bool
	bucket    string
	region    string
	prefix    string
	logFormat string
	verbose   bool
	cfg       optim.Config
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("descent", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.data, "data", "", "CSV file holding features and target (required)")
	fs.IntVar(&o.target, "target", -1, "Target column index (-1 = last)")
	fs.BoolVar(&o.header, "header", true, "First CSV row holds column names")
	fs.BoolVar(&o.bias, "bias", false, "Prepend a constant 1 feature column")
	fs.StringVar(&o.method, "method", "batch", "Method name, comma-separated list, or \"all\"")
	fs.Float64Var(&o.holdout, "holdout", 0, "Fraction of rows held out for validation")

	fs.Float64Var(&o.cfg.LearningRate, "lr", 0.01, "Learning rate")
	fs.IntVar(&o.cfg.Iterations, "iterations", 1000, "Iteration budget (all but stochastic)")
	fs.IntVar(&o.cfg.Epochs, "epochs", 100, "Epoch budget (stochastic)")
	fs.IntVar(&o.cfg.BatchSize, "batch", 16, "Batch size (mini-batch)")
	fs.Float64Var(&o.cfg.Momentum, "momentum", 0.9, "Velocity decay (momentum)")
	fs.Float64Var(&o.cfg.Tolerance, "tolerance", 0, "Early-stop threshold (0 = default, NaN = never)")
	fs.Int64Var(&o.cfg.Seed, "seed", 0, "Shuffle seed (-1 = random)")

	fs.StringVar(&o.chart, "chart", "", "Write a cost chart to this file (.png, .svg, .pdf)")
	fs.BoolVar(&o.logScale, "log-scale", true, "Plot cost on a log axis")
	fs.StringVar(&o.bucket, "bucket", "", "Upload the chart to this S3 bucket")
	fs.StringVar(&o.region, "region", "", "AWS region for -bucket")
	fs.StringVar(&o.prefix, "prefix", "descent", "Object key prefix for -bucket")

	fs.StringVar(&o.logFormat, "log-format", "text", "Log format: text or json")
	fs.BoolVar(&o.verbose, "v", false, "Log every step")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.data == "" {
		fs.Usage()
		return nil, errors.New("-data is required")
	}
	if o.holdout < 0 || o.holdout >= 1 {
		return nil, fmt.Errorf("-holdout must be in [0, 1), got %g", o.holdout)
	}
	if o.bucket != "" && o.chart == "" {
		return nil, errors.New("-bucket needs -chart")
	}
	return &o, nil
}

func newLogger(format string, verbose bool, w io.Writer) (*optim.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "text":
		return optim.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return optim.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func parseMethods(list string) ([]optim.Method, error) {
	if strings.EqualFold(strings.TrimSpace(list), "all") {
		return optim.Methods(), nil
	}

	var methods []optim.Method
	for _, name := range strings.Split(list, ",") {
		m, err := optim.ParseMethod(name)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "version" {
		fmt.Fprintf(stdout, "descent %s\n", version)
		return nil
	}

	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger, err := newLogger(o.logFormat, o.verbose, stderr)
	if err != nil {
		return err
	}
	o.cfg.Logger = logger

	methods, err := parseMethods(o.method)
	if err != nil {
		return err
	}

	ds, err := dataset.Load(o.data, dataset.Options{Header: o.header, Target: o.target, Bias: o.bias})
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", o.data, err)
	}
	train, val := ds.Split(o.holdout)
	logger.Info("dataset loaded",
		"file", o.data,
		"train", train.NumSamples(),
		"validation", val.NumSamples(),
		"features", len(ds.Names))

	runs, err := optim.Compare(ctx, train.Features, train.Targets, o.cfg, methods...)
	if err != nil {
		return err
	}

	if err := printRuns(stdout, runs, ds.Names, val); err != nil {
		return err
	}

	if o.chart == "" {
		return nil
	}
	return writeChart(ctx, o, runs, logger, stdout)
}

func printRuns(w io.Writer, runs []optim.Run, names []string, val *dataset.Dataset) error {
	for _, r := range runs {
		res := r.Result
		status := "budget exhausted"
		switch {
		case res.Diverged():
			status = "diverged"
		case res.Converged:
			status = "converged"
		}

		fmt.Fprintf(w, "%-10s cost=%.6g iterations=%d %s\n", r.Method, res.Final(), res.Iterations, status)
		for j, v := range res.Theta {
			name := fmt.Sprintf("theta[%d]", j)
			if j < len(names) {
				name = names[j]
			}
			fmt.Fprintf(w, "  %-12s %.6g\n", name, v)
		}

		if val.NumSamples() > 0 {
			c, err := optim.Cost(val.Features, val.Targets, res.Theta)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %-12s %.6g\n", "val cost", c)
		}
	}
	return nil
}

func writeChart(ctx context.Context, o *options, runs []optim.Run, logger *optim.Logger, stdout io.Writer) error {
	series := make([]report.Series, len(runs))
	for i, r := range runs {
		series[i] = report.Series{Name: r.Method.String(), Costs: r.Result.Costs}
	}

	p, err := report.CostChart(report.ChartOptions{
		Title:    filepath.Base(o.data),
		LogScale: o.logScale,
	}, series...)
	if err != nil {
		return err
	}
	if err := report.Save(p, 8*vg.Inch, 5*vg.Inch, o.chart); err != nil {
		return err
	}
	logger.Info("chart written", "path", o.chart)

	if o.bucket == "" {
		return nil
	}

	pub, err := report.NewS3Publisher(ctx, o.region, o.bucket, report.WithPrefix(o.prefix))
	if err != nil {
		return err
	}
	data, err := os.ReadFile(o.chart)
	if err != nil {
		return fmt.Errorf("failed to read chart: %w", err)
	}
	format := strings.TrimPrefix(filepath.Ext(o.chart), ".")
	url, err := pub.Publish(ctx, filepath.Base(o.chart), data, report.ContentType(format))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "chart: %s\n", url)
	return nil
}
