package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build snapshots and published artifacts",
		Long: "Remove build snapshots and published artifacts.\n" +
			"Without flags both are removed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			cache, _ := cmd.Flags().GetBool("cache")
			output, _ := cmd.Flags().GetBool("output")
			if !cache && !output {
				cache, output = true, true
			}
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Cwd:    dir,
				Cache:  cache,
				Output: output,
			})
		},
	}
	cmd.Flags().Bool("cache", false, "Remove the build snapshots")
	cmd.Flags().Bool("output", false, "Remove the published artifacts")
	return cmd
}
