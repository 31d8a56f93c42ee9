package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/fnrepo/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Resolve again whenever the configuration changes",
		Long: "Resolve like the resolve command, then keep watching the configuration file.\n" +
			"Each saved edit reloads the definitions, drops stale cached results and resolves again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, _ := cmd.Flags().GetStringArray("at")
			if len(values) == 0 {
				_ = cmd.Help()
				return nil
			}
			instants, err := parseInstants(values)
			if err != nil {
				return err
			}
			repos, _ := cmd.Flags().GetStringSlice("repo")
			return c.app.Watch(cmd.Context(), app.ResolveOptions{
				CommonOptions: commonOptions(cmd),
				Repositories:  repos,
				Instants:      instants,
			})
		},
	}
	cmd.Flags().StringArray("at", nil, "Instant to compile for (repeatable)")
	cmd.Flags().StringSliceP("repo", "r", nil, "Repository to resolve (default: all)")
	return cmd
}
