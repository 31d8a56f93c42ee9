// Package commands implements the CLI commands for fnrepo.
package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/fnrepo/internal/app"
	"go.trai.ch/fnrepo/internal/build"
	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for fnrepo.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Resolve(ctx context.Context, opts app.ResolveOptions) error
	Lookup(ctx context.Context, opts app.LookupOptions) error
	Watch(ctx context.Context, opts app.ResolveOptions) error
	SetJSONLogging(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "fnrepo",
		Short:         "Compile function repositories for points in time",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to "+domain.ConfigFileName+" (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON")
	rootCmd.PersistentFlags().String("telemetry", "none", "Telemetry exporter: none, stdout, log or progress")
	rootCmd.PersistentFlags().StringToString("set", nil, "Compilation context entry passed to every definition (key=value)")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if jsonLog, _ := cmd.Flags().GetBool("json-log"); jsonLog {
			c.app.SetJSONLogging(true)
		}
	}

	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newLookupCmd())
	rootCmd.AddCommand(c.newWatchCmd())
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

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func commonOptions(cmd *cobra.Command) app.CommonOptions {
	configPath, _ := cmd.Flags().GetString("config")
	exporter, _ := cmd.Flags().GetString("telemetry")
	set, _ := cmd.Flags().GetStringToString("set")

	var cctx domain.CompilationContext
	if len(set) > 0 {
		cctx = make(domain.CompilationContext, len(set))
		for k, v := range set {
			cctx[k] = v
		}
	}
	return app.CommonOptions{
		ConfigPath: configPath,
		Telemetry:  exporter,
		Context:    cctx,
	}
}

var instantLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

// parseInstant accepts RFC 3339, "2006-01-02 15:04:05" or a bare date. Values
// without a zone are read as UTC.
func parseInstant(value string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, zerr.With(zerr.Wrap(domain.ErrInvalidInstant, "cannot parse instant"), "value", value)
}
