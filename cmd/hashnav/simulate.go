package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hashnav/internal/errors"
	"github.com/vango-dev/hashnav/internal/scenario"
	"github.com/vango-dev/hashnav/internal/watch"
)

func simulateCmd() *cobra.Command {
	var (
		configPath string
		watchFiles bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <scenario>",
		Short: "Run a navigation scenario against a simulated browser",
		Long: `Run a YAML or JSON navigation scenario against a simulated browser
and print a transcript of every transition and address write.

The config is taken from --config, then the scenario's own config field,
then the nearest hashnav config file.

Examples:
  hashnav simulate scenarios/login.yaml
  hashnav simulate scenarios/login.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !watchFiles {
				_, err := simulate(out, args[0], configPath)
				return err
			}
			return watchSimulate(cmd.Context(), out, cmd.ErrOrStderr(), args[0], configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: scenario config or nearest hashnav config)")
	cmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "Re-run when the scenario or config changes")

	return cmd
}

// simulate runs one scenario and returns the files it depends on.
func simulate(out io.Writer, scenarioPath, configPath string) ([]string, error) {
	files := []string{scenarioPath}
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return files, err
	}
	if configPath == "" {
		configPath = sc.ConfigPath()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return files, err
	}
	files = append(files, cfg.Path())

	report, err := scenario.Run(cfg, sc, out, scenario.WithLogger(cfg.Logger(os.Stderr)))
	if err != nil {
		return files, err
	}
	fmt.Fprintf(out, "\n%d steps, %d transitions, %d page loads; at %s\n",
		report.Steps, report.Transitions, report.Boots, report.FullPath)
	return files, nil
}

func watchSimulate(ctx context.Context, out, errOut io.Writer, scenarioPath, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		files, err := simulate(out, scenarioPath, configPath)
		if err != nil {
			errors.PrintError(errOut, err)
		}

		changed := make(chan struct{}, 1)
		w := watch.New(watch.Config{Files: files}, func(paths []string) {
			fmt.Fprintf(out, "\nchanged: %v\n", paths)
			select {
			case changed <- struct{}{}:
			default:
			}
		})

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- w.Run(runCtx) }()
		info("watching %d files", len(files))

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		case err := <-done:
			cancel()
			return err
		case <-changed:
			cancel()
			<-done
		}
	}
}
