package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nadmax/planwise/internal/recipe"
)

var recipeCmd = &cobra.Command{
	Use:   "recipe <ingredient>...",
	Short: "Generate a recipe from a list of ingredients",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gemini, err := newCompleter(cmd)
		if err != nil {
			return err
		}

		r, err := recipe.NewGenerator(gemini, logger).Generate(cmd.Context(), args)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "text" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), recipe.Render(r))
			return err
		}

		return write(cmd.OutOrStdout(), format, r)
	},
}

func init() {
	rootCmd.AddCommand(recipeCmd)
}
