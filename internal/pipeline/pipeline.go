package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/zinc-sig/ghostci/internal/report"
)

// ErrUnknownStage is returned by RunStage for a selector no stage answers to.
var ErrUnknownStage = errors.New("unknown stage")

// Phase is the coarse position of a pipeline run.
type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseRunning    Phase = "running"
	PhaseRecorded   Phase = "recorded"
	PhaseFinalizing Phase = "finalizing"
	PhaseDone       Phase = "done"
)

// State is the pipeline's current phase and, while a stage is active or just
// finished, that stage's name.
type State struct {
	Phase Phase
	Stage string
}

func (s State) String() string {
	if s.Stage == "" {
		return string(s.Phase)
	}
	return fmt.Sprintf("%s(%s)", s.Phase, s.Stage)
}

// Console receives human-facing progress events.
type Console interface {
	StageStarted(stage Stage)
	StageFinished(stage Stage, passed bool)
	Summary(r *report.Report, stages []StageResult, passed bool)
}

// Sink publishes a finished report somewhere outside the project root.
type Sink interface {
	Name() string
	Publish(ctx context.Context, r *report.Report, data []byte) error
}

// StageResult is the boolean a stage returned during a run.
type StageResult struct {
	Name   string
	Title  string
	Passed bool
}

// Options configures a Pipeline. Root and Runner are required.
type Options struct {
	Root             string
	Python           string
	TestDependencies []string
	Lint             LintOptions
	ReportFile       string

	Runner  CommandRunner
	Logger  *slog.Logger
	Console Console
	Sinks   []Sink
	Stages  []Stage

	// Now stamps the report; time.Now when nil.
	Now func() time.Time
	// OnState observes every state transition.
	OnState func(State)

	lookPath func(string) (string, error)
}

// Pipeline owns the result tree for one run.
type Pipeline struct {
	opts   Options
	env    *Env
	stages []Stage

	mu    sync.Mutex
	state State
}

func New(opts Options) (*Pipeline, error) {
	if opts.Root == "" {
		return nil, errors.New("project root is required")
	}
	if opts.Runner == nil {
		return nil, errors.New("command runner is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root %q: %w", opts.Root, err)
	}
	opts.Root = root

	if opts.Python == "" {
		opts.Python = "python3"
	}
	if opts.ReportFile == "" {
		opts.ReportFile = report.DefaultFilename
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Stages == nil {
		opts.Stages = DefaultStages()
	}

	p := &Pipeline{
		opts:   opts,
		stages: opts.Stages,
		state:  State{Phase: PhasePending},
		env: &Env{
			Root:             opts.Root,
			Python:           opts.Python,
			TestDependencies: opts.TestDependencies,
			Lint:             opts.Lint,
			Runner:           opts.Runner,
			Logger:           opts.Logger,
			Tree:             report.NewTree(),
			lookPath:         opts.lookPath,
		},
	}
	return p, nil
}

// Stages returns the stages in execution order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Tree exposes the results recorded so far.
func (p *Pipeline) Tree() *report.Tree {
	return p.env.Tree
}

// ReportPath is where RunAll persists the report.
func (p *Pipeline) ReportPath() string {
	if filepath.IsAbs(p.opts.ReportFile) {
		return p.opts.ReportFile
	}
	return filepath.Join(p.opts.Root, p.opts.ReportFile)
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	if p.opts.OnState != nil {
		p.opts.OnState(s)
	}
}

// RunAll runs every stage in order, then reports. Persist and sink failures
// are logged and do not affect the returned result.
func (p *Pipeline) RunAll(ctx context.Context) bool {
	passed := true
	results := make([]StageResult, 0, len(p.stages))

	for _, stage := range p.stages {
		ok := p.runStageSafely(ctx, stage)
		results = append(results, StageResult{Name: stage.Name(), Title: stage.Title(), Passed: ok})
		passed = passed && ok
	}

	p.setState(State{Phase: PhaseFinalizing})
	r := p.finalize(ctx)
	if p.opts.Console != nil {
		p.opts.Console.Summary(r, results, passed)
	}
	p.setState(State{Phase: PhaseDone})

	return passed
}

// RunStage runs exactly one stage identified by selector. No report is written.
func (p *Pipeline) RunStage(ctx context.Context, selector string) (bool, error) {
	stage, err := p.lookup(selector)
	if err != nil {
		return false, err
	}
	passed := p.runStageSafely(ctx, stage)
	p.setState(State{Phase: PhaseDone})
	return passed, nil
}

func (p *Pipeline) lookup(selector string) (Stage, error) {
	name := CanonicalSelector(selector)
	for _, stage := range p.stages {
		if stage.Name() == name {
			return stage, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStage, selector)
}

// runStageSafely turns a stage error or panic into that stage's failure.
func (p *Pipeline) runStageSafely(ctx context.Context, stage Stage) (passed bool) {
	logger := p.opts.Logger.With("stage", stage.Name())
	p.setState(State{Phase: PhaseRunning, Stage: stage.Name()})
	if p.opts.Console != nil {
		p.opts.Console.StageStarted(stage)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("stage panicked", "panic", r, "stack", string(debug.Stack()))
			passed = false
		}
		logger.Debug("stage finished", "passed", passed, "elapsed", time.Since(start))
		if p.opts.Console != nil {
			p.opts.Console.StageFinished(stage, passed)
		}
		p.setState(State{Phase: PhaseRecorded, Stage: stage.Name()})
	}()

	env := *p.env
	env.Logger = logger
	ok, err := stage.Run(ctx, &env)
	if err != nil {
		logger.Error("stage failed unexpectedly", "error", err)
		return false
	}
	return ok
}

func (p *Pipeline) finalize(ctx context.Context) *report.Report {
	r := report.Generate(p.env.Tree, p.opts.Root, p.opts.Now())

	path := p.ReportPath()
	if err := report.Persist(r, path); err != nil {
		p.opts.Logger.Error("failed to write report", "path", path, "error", err)
	} else {
		p.opts.Logger.Debug("report written", "path", path)
	}

	if len(p.opts.Sinks) == 0 {
		return r
	}
	data, err := report.Encode(r)
	if err != nil {
		p.opts.Logger.Error("failed to encode report for sinks", "error", err)
		return r
	}
	for _, sink := range p.opts.Sinks {
		if err := sink.Publish(ctx, r, data); err != nil {
			p.opts.Logger.Error("failed to publish report", "sink", sink.Name(), "error", err)
			continue
		}
		p.opts.Logger.Info("report published", "sink", sink.Name())
	}
	return r
}

// CanonicalSelector maps selector aliases to stage names.
func CanonicalSelector(selector string) string {
	switch selector {
	case "deps":
		return "install-deps"
	case "test-deps":
		return "install-test-deps"
	default:
		return selector
	}
}
