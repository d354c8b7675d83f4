// Package commands implements the CLI commands for kiln.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/ports"
)

// CacheDebugEnv enables --print-cache-debug when set to a non-empty value.
const CacheDebugEnv = "KILN_PRINT_CACHE_DEBUG"

// jsonLogger is implemented by loggers that can switch to structured output.
type jsonLogger interface {
	SetJSON(enable bool)
}

// CLI represents the command line interface for kiln.
type CLI struct {
	app     *app.App
	logger  ports.Logger
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app and logger.
func New(a *app.App, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "kiln",
		Short:         "An incremental build cache for compiler plugins",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}
	rootCmd.SetVersionTemplate(build.String() + "\n")

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("dir", "C", ".", "Directory to search for kiln.yaml from")
	rootCmd.PersistentFlags().Bool("json", false, "Log as JSON")
	rootCmd.PersistentFlags().Bool("print-cache-debug", os.Getenv(CacheDebugEnv) != "",
		"Print every plugin invocation and cache load (env "+CacheDebugEnv+")")
	rootCmd.PersistentFlags().Bool("trace", false, "Print a timing line for every pass and plugin invocation")

	c := &CLI{
		app:     a,
		logger:  logger,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		asJSON, _ := cmd.Flags().GetBool("json")
		if l, ok := c.logger.(jsonLogger); ok && asJSON {
			l.SetJSON(true)
		}
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}

func buildOptions(cmd *cobra.Command, programs []string) app.BuildOptions {
	dir, _ := cmd.Flags().GetString("dir")
	cacheDebug, _ := cmd.Flags().GetBool("print-cache-debug")
	trace, _ := cmd.Flags().GetBool("trace")
	return app.BuildOptions{
		Cwd:        dir,
		Programs:   programs,
		CacheDebug: cacheDebug,
		Trace:      trace,
	}
}
