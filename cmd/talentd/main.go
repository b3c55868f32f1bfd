package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridaworks/talentd/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "talentd",
		Short: "Talenta daemon and CLI",
		Long:  "Talenta daemon for running the candidate search API and managing the similarity indexes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.BindFlagEnv(cmd)
		},
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.ReindexCmd())
	rootCmd.AddCommand(cli.LinkCmd())
	rootCmd.AddCommand(cli.SearchCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
