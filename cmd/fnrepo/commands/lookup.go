package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/fnrepo/internal/app"
)

func (c *CLI) newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup [definition ids...]",
		Short: "Compile only the named definitions at one instant",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, _ := cmd.Flags().GetString("at")
			if len(args) == 0 || value == "" {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			at, err := parseInstant(value)
			if err != nil {
				return err
			}
			repo, _ := cmd.Flags().GetString("repo")
			return c.app.Lookup(cmd.Context(), app.LookupOptions{
				CommonOptions: commonOptions(cmd),
				Repository:    repo,
				At:            at,
				IDs:           args,
			})
		},
	}
	cmd.Flags().String("at", "", "Instant to compile for")
	cmd.Flags().StringP("repo", "r", "", "Repository to look in (optional when only one is declared)")
	return cmd
}
