package main

import (
	"fmt"

	"github.com/ajalab/concolic/config"
	"github.com/spf13/cobra"
)

const defaultTestPackage = "github.com/ajalab/concolic/targets"

// addRunFlags adds the flags of the run command.
func addRunFlags(runCmd *cobra.Command) {
	defaultConfig := config.Default()

	// Prevent alphabetical sorting of usage message
	runCmd.Flags().SortFlags = false

	runCmd.Flags().String("config", "", "path to a YAML config file")
	runCmd.Flags().String("preset", "", "path to a YAML file of valuations replayed after the exploration")

	runCmd.Flags().Int("max-depth", 0,
		fmt.Sprintf("maximum number of decisions recorded along a path (default %d)", defaultConfig.Explore.MaxDepth))
	runCmd.Flags().Int("max-alt-depth", 0,
		"maximum number of alternatives forced along a path, 0 or negative for no bound")
	runCmd.Flags().String("strategy", "",
		fmt.Sprintf("exploration strategy: dfs or priority (default %q)", defaultConfig.Explore.Strategy))
	runCmd.Flags().String("comparator", "",
		fmt.Sprintf("order of the priority strategy: shared-prefix, shallow or deep (default %q)", defaultConfig.Explore.Comparator))
	runCmd.Flags().String("solver", "",
		fmt.Sprintf("constraint solver: enum, gini or z3 (default %q)", defaultConfig.Solver.Name))

	runCmd.Flags().Int("max-runs", 0, "number of runs after which the analysis stops, 0 for no limit")
	runCmd.Flags().Duration("timeout", 0, "duration after which the analysis stops, 0 for no limit")

	runCmd.Flags().String("log-level", "", "log level: debug, info, error or disabled")
	runCmd.Flags().Bool("log-json", false, "write log entries as JSON lines")

	runCmd.Flags().StringP("format", "f", "text", "output format: text, json or gotest")
	runCmd.Flags().StringP("output", "o", "", "file to write the output to (default stdout)")
	runCmd.Flags().String("package", defaultTestPackage, "import path of the package registering the target, used by the gotest format")
	runCmd.Flags().String("metrics", "", "file to write the Prometheus metrics of the analysis to")
	runCmd.Flags().Bool("fail-on-error", false,
		fmt.Sprintf("exit with code %d when an input makes the target fail", exitCodeFailuresFound))
}

// updateConfigWithRunFlags overrides cfg with the flags set on the command line.
func updateConfigWithRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	flags := cmd.Flags()

	if flags.Changed("preset") {
		if cfg.Preset, err = flags.GetString("preset"); err != nil {
			return err
		}
	}
	if flags.Changed("max-depth") {
		if cfg.Explore.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return err
		}
	}
	if flags.Changed("max-alt-depth") {
		if cfg.Explore.MaxAltDepth, err = flags.GetInt("max-alt-depth"); err != nil {
			return err
		}
	}
	if flags.Changed("strategy") {
		if cfg.Explore.Strategy, err = flags.GetString("strategy"); err != nil {
			return err
		}
	}
	if flags.Changed("comparator") {
		if cfg.Explore.Comparator, err = flags.GetString("comparator"); err != nil {
			return err
		}
	}
	if flags.Changed("solver") {
		if cfg.Solver.Name, err = flags.GetString("solver"); err != nil {
			return err
		}
	}
	if flags.Changed("max-runs") {
		if cfg.Termination.MaxRuns, err = flags.GetInt("max-runs"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Termination.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		if cfg.Log.Level, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}
	if flags.Changed("log-json") {
		if cfg.Log.Structured, err = flags.GetBool("log-json"); err != nil {
			return err
		}
	}
	return nil
}
