// Package main provides assetctl, a CLI client for the assetflow server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	outputFmt string
	actorFlag string
)

var rootCmd = &cobra.Command{
	Use:   "assetctl",
	Short: "CLI for the assetflow server",
	Long: `assetctl manages IT assets through their lifecycle: storage, shipment
between sites, deployment to users, and salvage disposal.

All mutating commands send the --actor identity to the server, which records
it on every state change and audit event.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Assetflow server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "Caller identity recorded on mutations (default: ASSETFLOW_ACTOR env or local user)")

	rootCmd.AddCommand(assetCmd)
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(batchCmd)
}

// resolvedActor returns the effective caller identity.
// Priority: --actor flag > ASSETFLOW_ACTOR env var > OS user name.
func resolvedActor() string {
	if actorFlag != "" {
		return actorFlag
	}
	if actor := os.Getenv("ASSETFLOW_ACTOR"); actor != "" {
		return actor
	}
	return os.Getenv("USER")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
