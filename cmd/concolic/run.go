package main

import (
	"io"
	"os"
	"os/signal"

	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/config"
	"github.com/ajalab/concolic/finalize"
	"github.com/ajalab/concolic/gentest"
	"github.com/ajalab/concolic/log"
	"github.com/ajalab/concolic/metrics"
	"github.com/ajalab/concolic/report"
	"github.com/ajalab/concolic/targets"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:               "run <target>",
		Short:             "Explores a target",
		Long:              "Explores a target until every feasible path is covered or a termination bound is reached",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cmdValidRunArgs,
		RunE:              cmdRunRun,
		SilenceUsage:      true,
	}
	addRunFlags(runCmd)
	return runCmd
}

// cmdValidRunArgs completes the target name, and then the flags that have not been set yet.
func cmdValidRunArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return targets.Names(), cobra.ShellCompDirectiveNoFileComp
	}
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// loadConfig reads the file given by --config, or returns the default
// configuration, and applies the flags on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg := config.Default()
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := updateConfigWithRunFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func cmdRunRun(cmd *cobra.Command, args []string) error {
	target, ok := targets.Lookup(args[0])
	if !ok {
		return errors.Errorf("unknown target %s, see the list command", args[0])
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.ApplyLog()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "json", "gotest":
	default:
		return errors.Errorf("unknown output format: %s", format)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.New(target.Name)
	if err := collector.Register(registry); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	res, err := concolic.Analyze(ctx, target, concolic.Config{
		Explore:     cfg.Explore,
		Solver:      cfg.Solver,
		Termination: cfg.Termination.Strategy(),
		PresetFile:  cfg.Preset,
		Observer:    collector,
	})
	if err != nil {
		return err
	}

	if totals, err := metrics.Totals(registry); err == nil {
		log.Debug.Printf("metrics of %s: %v", target.Name, totals)
	}
	if path, _ := cmd.Flags().GetString("metrics"); path != "" {
		if err := prometheus.WriteToTextfile(path, registry); err != nil {
			return errors.Wrap(err, "failed to write metrics")
		}
	}

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "failed to create output file")
		}
		defer f.Close()
		out = f
	}

	rep := report.New(res.Target, res.Tree, res.Runs, res.Elapsed)
	if err := writeOutput(cmd, out, format, target, res, rep); err != nil {
		return err
	}

	failOnError, _ := cmd.Flags().GetBool("fail-on-error")
	if failOnError && rep.Summary.Error > 0 {
		return newErrorWithExitCode(errors.Errorf("%d failing paths in %s", rep.Summary.Error, target.Name), exitCodeFailuresFound)
	}
	return nil
}

func writeOutput(cmd *cobra.Command, w io.Writer, format string, target *concolic.Target, res *concolic.Result, rep *report.Report) error {
	switch format {
	case "json":
		return rep.WriteJSON(w)
	case "gotest":
		pkg, _ := cmd.Flags().GetString("package")
		return gentest.New(pkg, target).Write(w, finalize.Paths(res.Tree))
	}
	return rep.WriteText(w)
}
