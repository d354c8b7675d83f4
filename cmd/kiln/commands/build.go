package commands

import (
	"slices"

	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [programs...]",
		Short: "Build the given programs, or every program when none are named",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Build(cmd.Context(), buildOptions(cmd, programs(cmd, args)))
		},
	}
	cmd.Flags().StringSliceP("program", "p", nil, "Program to build (repeatable)")
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [programs...]",
		Short: "Build, then rebuild affected programs whenever sources change",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), buildOptions(cmd, programs(cmd, args)))
		},
	}
	cmd.Flags().StringSliceP("program", "p", nil, "Program to watch (repeatable)")
	return cmd
}

// programs merges --program values with positional arguments, dropping duplicates.
func programs(cmd *cobra.Command, args []string) []string {
	flagged, _ := cmd.Flags().GetStringSlice("program")
	all := append(slices.Clone(flagged), args...)
	slices.Sort(all)
	return slices.Compact(all)
}
