package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/varoOP/movielog/internal/app"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ranked movie list to a YAML file",
	Long: `Export dumps the full movie list, ordered by ranking, to a YAML
file. Useful for backups or for feeding the list into other tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		// Initialize application
		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		if err := application.Export(out); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "movies.yaml", "path of the YAML file to write")
	rootCmd.AddCommand(exportCmd)
}
