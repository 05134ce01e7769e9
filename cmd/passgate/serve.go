package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quollsoft/passgate/internal/server/app"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the authentication server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			return application.Run()
		},
	}
}
