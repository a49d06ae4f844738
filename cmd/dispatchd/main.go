package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "dispatchd",
		Short: "Dispatch route-planning and optimization service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; real deployments set the environment directly.
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "path to config file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
