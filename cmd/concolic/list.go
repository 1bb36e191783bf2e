package main

import (
	"fmt"
	"strings"

	"github.com/ajalab/concolic/targets"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the targets that can be analyzed",
		Args:  cobra.NoArgs,
		RunE:  cmdRunList,
	}
}

func cmdRunList(cmd *cobra.Command, args []string) error {
	for _, name := range targets.Names() {
		target, _ := targets.Lookup(name)
		inputs := make([]string, len(target.Inputs))
		for i, d := range target.Inputs {
			inputs[i] = fmt.Sprintf("%s %v", d.Name, d.Kind)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s(%s)\n", name, strings.Join(inputs, ", "))
	}
	return nil
}
