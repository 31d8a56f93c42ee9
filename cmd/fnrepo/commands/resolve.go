package commands

import (
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/fnrepo/internal/app"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Compile repositories at one or more instants",
		Long: "Compile the declared repositories at each --at instant through one shared cache.\n" +
			"Artifacts still valid at a later instant are reused instead of recompiled.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, _ := cmd.Flags().GetStringArray("at")
			if len(values) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			instants, err := parseInstants(values)
			if err != nil {
				return err
			}
			repos, _ := cmd.Flags().GetStringSlice("repo")
			return c.app.Resolve(cmd.Context(), app.ResolveOptions{
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

func parseInstants(values []string) ([]time.Time, error) {
	instants := make([]time.Time, 0, len(values))
	for _, v := range values {
		at, err := parseInstant(v)
		if err != nil {
			return nil, err
		}
		instants = append(instants, at)
	}
	return instants, nil
}
