package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/varoOP/movielog/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the movie list web application",
	Long: `Serve starts the HTTP server for the movie list:
- browse the ranked list at /
- search TMDB and add movies via /add
- edit ratings and reviews via /update/<id>

The server runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Initialize application
		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		if err := application.Run(); err != nil {
			return fmt.Errorf("serve failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
