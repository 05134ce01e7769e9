package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "passgate",
		Short: "Authentication flow service and client",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Best-effort: a missing .env file is fine.
			_ = godotenv.Load()
		},
	}

	root.AddCommand(serveCmd())
	root.AddCommand(clientCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
