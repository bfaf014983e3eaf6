package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	baseURL string
	timeout time.Duration
	output  string
	actorID string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "goloan-cli",
		Short:         "GoLoan CLI tool",
		Long:          `A command line interface for simulating loans and querying the GoLoan API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the GoLoan API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format: table or json")
	rootCmd.PersistentFlags().StringVar(&opts.actorID, "actor", "", "Actor recorded in the audit log")

	rootCmd.AddCommand(
		simulateCmd(opts),
		statusCmd(opts),
		payCmd(opts),
		historyCmd(opts),
	)

	return rootCmd
}

func (o *rootOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.timeout, o.actorID)
}
