package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zinc-sig/ghostci/cmd/config"
	"github.com/zinc-sig/ghostci/cmd/helpers"
	appconfig "github.com/zinc-sig/ghostci/internal/config"
	"github.com/zinc-sig/ghostci/internal/logging"
	"github.com/zinc-sig/ghostci/internal/output"
	"github.com/zinc-sig/ghostci/internal/pipeline"
	"github.com/zinc-sig/ghostci/internal/runner"
)

// ErrChecksFailed is returned when the selected stages did not all pass.
var ErrChecksFailed = errors.New("checks failed")

const allStages = "all"

func newRunCmd() *cobra.Command {
	var (
		flags      config.RunFlags
		uploadCfg  config.UploadConfig
		webhookCfg config.WebhookConfig
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the validation pipeline",
		Long: `Run every stage in order, or a single stage with --stage.

A full run always writes the report to the project root and publishes it to any
configured upload provider or webhook. A single-stage run writes no report.
The exit status is 0 only when every selected stage passed.`,
		Example: `  ghostci run
  ghostci run --project-root ./service --stage lint
  ghostci run --timeout 10m --webhook-url https://ci.example.com/hooks/report
  ghostci run --upload-provider minio --upload-config-file minio.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, &flags, &uploadCfg, &webhookCfg)
		},
	}

	helpers.SetupRunFlags(cmd, &flags)
	helpers.SetupUploadFlags(cmd, &uploadCfg)
	helpers.SetupWebhookFlags(cmd, &webhookCfg)
	return cmd
}

func runPipeline(cmd *cobra.Command, flags *config.RunFlags, uploadCfg *config.UploadConfig, webhookCfg *config.WebhookConfig) error {
	root, err := projectRoot(flags.ProjectRoot)
	if err != nil {
		return err
	}

	cfg, err := appconfig.Load(root)
	if err != nil {
		return err
	}
	values, err := helpers.ConfigFlagValues(cmd, flags)
	if err != nil {
		return err
	}
	appconfig.ApplyFlags(&cfg, values)

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: cmd.ErrOrStderr(),
	})

	var sinks []pipeline.Sink
	uploadSink, err := helpers.SetupUploadSink(uploadCfg, cfg.ReportFile)
	if err != nil {
		return err
	}
	if uploadSink != nil {
		sinks = append(sinks, uploadSink)
	}
	webhookSink, err := helpers.SetupWebhookSink(cmd, webhookCfg, logger)
	if err != nil {
		return err
	}
	if webhookSink != nil {
		sinks = append(sinks, webhookSink)
	}

	executor := runner.New(runner.Config{
		Dir:     root,
		Timeout: cfg.Timeout,
		Verbose: cfg.Verbose,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	})

	p, err := pipeline.New(pipeline.Options{
		Root:             root,
		Python:           cfg.Python,
		TestDependencies: cfg.TestDependencies,
		Lint:             pipeline.LintOptions{MaxLineLength: cfg.Lint.MaxLineLength, Ignore: cfg.Lint.Ignore},
		ReportFile:       cfg.ReportFile,
		Runner:           executor,
		Logger:           logger,
		Console:          output.NewConsole(cmd.OutOrStdout()),
		Sinks:            sinks,
	})
	if err != nil {
		return err
	}

	logger.Debug("starting pipeline", "root", root, "stage", flags.Stage, "timeout", cfg.Timeout, "sinks", len(sinks))

	selector := strings.ToLower(strings.TrimSpace(flags.Stage))
	var passed bool
	if selector == "" || selector == allStages {
		passed = p.RunAll(cmd.Context())
	} else {
		passed, err = p.RunStage(cmd.Context(), selector)
		if err != nil {
			return fmt.Errorf("%w (run 'ghostci stages' to list them)", err)
		}
	}

	if !passed {
		return ErrChecksFailed
	}
	return nil
}

func projectRoot(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve project root %q: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("project root %q: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root %q is not a directory", dir)
	}
	return root, nil
}
