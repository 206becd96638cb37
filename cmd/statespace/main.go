package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ProNinjaDev/statespace/pkg/analysis"
	"github.com/ProNinjaDev/statespace/pkg/circuit"
	"github.com/ProNinjaDev/statespace/pkg/metrics"
	"github.com/ProNinjaDev/statespace/pkg/netlist"
	"github.com/ProNinjaDev/statespace/pkg/output"
	"github.com/ProNinjaDev/statespace/pkg/util"
)

const (
	logLevelEnv   = "STATESPACE_LOG_LEVEL"
	printedPoints = 20
)

type config struct {
	step      float64
	stop      float64
	method    string
	order     int
	outputs   string
	csvDir    string
	plotDir   string
	metrics   string
	logLevel  string
	logFormat string
	jobs      int
	quiet     bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*config, error) {
	cfg := &config{}
	fs.Float64Var(&cfg.step, "step", 0, "integration step in seconds (overrides the netlist)")
	fs.Float64Var(&cfg.stop, "stop", 0, "simulation time in seconds (overrides the netlist)")
	fs.StringVar(&cfg.method, "method", "", "integration method: euler, backward, trapezoidal or gear")
	fs.IntVar(&cfg.order, "order", 2, "Gear order (1..6)")
	fs.StringVar(&cfg.outputs, "outputs", "", "comma separated output variables, e.g. U_C1,I_L1")
	fs.StringVar(&cfg.csvDir, "csv", "", "directory for <circuit>.csv result files")
	fs.StringVar(&cfg.plotDir, "plot", "", "directory for <circuit>/<output>.png charts")
	fs.StringVar(&cfg.metrics, "metrics", "", "write Prometheus metrics to this textfile")
	fs.StringVar(&cfg.logLevel, "log-level", "", "debug, info, warn or error (default $"+logLevelEnv+" or info)")
	fs.StringVar(&cfg.logFormat, "log-format", "text", "text or json")
	fs.IntVar(&cfg.jobs, "jobs", runtime.NumCPU(), "circuits processed concurrently")
	fs.BoolVar(&cfg.quiet, "quiet", false, "do not print models and result tables")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		return nil, errors.New("no netlist files given")
	}
	if cfg.jobs < 1 {
		cfg.jobs = 1
	}
	if cfg.logLevel == "" {
		cfg.logLevel = os.Getenv(logLevelEnv)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", format)
}

// app processes netlist files and serializes their printed reports.
type app struct {
	cfg     *config
	logger  *slog.Logger
	metrics *metrics.Registry

	mu     sync.Mutex
	stdout io.Writer
}

// runAll processes every file with at most cfg.jobs in flight and returns
// the number of files that failed.
func (a *app) runAll(ctx context.Context, files []string) (int, error) {
	var failed atomic.Int32

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.jobs)
	for _, path := range files {
		g.Go(func() error {
			if err := a.runFile(ctx, path); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				a.logger.Error("circuit failed", "file", path, "kind", circuit.ErrorKind(err), "error", err)
			}
			return nil
		})
	}
	err := g.Wait()
	return int(failed.Load()), err
}

func (a *app) runFile(ctx context.Context, path string) error {
	data, err := netlist.LoadFile(path)
	if err != nil {
		return err
	}
	sim, err := a.simulation(data.Simulation)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	logger := a.logger.With("file", path)
	c := circuit.New(name, data.Components, circuit.WithLogger(logger), circuit.WithMetrics(a.metrics))

	model, err := c.Build(sim.Outputs)
	if err != nil {
		return err
	}
	logger.Info("model derived", "states", model.NumStates(), "inputs", model.NumInputs(), "outputs", model.NumOutputs())

	tr := analysis.NewTransient(sim.Step, sim.Stop, sim.Method)
	tr.SetOrder(a.cfg.order)
	results, err := c.Simulate(ctx, tr, sim.Initial)
	if err != nil {
		return err
	}
	logger.Info("simulation done", "method", sim.Method.String(), "steps", tr.Steps())

	if !a.cfg.quiet {
		var buf bytes.Buffer
		title := data.Title
		if title == "" {
			title = name
		}
		fmt.Fprintf(&buf, "\n=== %s (%s) ===\n", title, path)
		output.PrintModel(&buf, model)
		output.PrintResults(&buf, model.OutputVariables, results, printedPoints)
		a.print(buf.Bytes())
	}

	if a.cfg.csvDir != "" {
		if err := writeCSVFile(filepath.Join(a.cfg.csvDir, name+".csv"), model.OutputVariables, results); err != nil {
			return err
		}
	}
	if a.cfg.plotDir != "" {
		paths, err := output.SavePlots(filepath.Join(a.cfg.plotDir, name), model.OutputVariables, results)
		if err != nil {
			return err
		}
		logger.Info("plots saved", "count", len(paths))
	}
	return nil
}

// simulation applies the command line overrides to the netlist settings.
func (a *app) simulation(sim netlist.Simulation) (netlist.Simulation, error) {
	if a.cfg.step > 0 {
		sim.Step = a.cfg.step
	}
	if a.cfg.stop > 0 {
		sim.Stop = a.cfg.stop
	}
	if a.cfg.method != "" {
		method, err := util.ParseIntegrationMethod(a.cfg.method)
		if err != nil {
			return sim, err
		}
		sim.Method = method
	}
	if a.cfg.outputs != "" {
		sim.Outputs = nil
		for _, name := range strings.Split(a.cfg.outputs, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sim.Outputs = append(sim.Outputs, name)
			}
		}
	}
	return sim, nil
}

func (a *app) print(p []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stdout.Write(p)
}

func writeCSVFile(path string, outputs []string, results map[string][]float64) (retErr error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()
	return output.WriteCSV(f, outputs, results)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("statespace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: statespace [flags] <netlist> [netlist...]")
		fs.PrintDefaults()
	}

	cfg, err := parseFlags(fs, args)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
			fs.Usage()
		}
		return 2
	}
	logger, err := newLogger(stderr, cfg.logLevel, cfg.logFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	a := &app{cfg: cfg, logger: logger, metrics: metrics.NewRegistry(), stdout: stdout}
	failed, err := a.runAll(ctx, fs.Args())

	if cfg.metrics != "" {
		if werr := a.metrics.WriteToTextfile(cfg.metrics); werr != nil {
			logger.Error("failed to write metrics", "path", cfg.metrics, "error", werr)
			return 1
		}
	}
	if err != nil {
		logger.Error("interrupted", "error", err)
		return 1
	}
	if failed > 0 {
		logger.Error("some circuits failed", "failed", failed, "total", fs.NArg())
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
