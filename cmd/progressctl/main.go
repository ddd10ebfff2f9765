package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/2beens/gymquest/internal/adminclient"
	"github.com/2beens/gymquest/pkg"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr       string
		adminToken string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:          "progressctl",
		Short:        "Operate the gymquest progression service",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", "http://localhost:9000", "service base URL")
	cmd.PersistentFlags().StringVar(&adminToken, "admin-token", os.Getenv("GYMQUEST_ADMIN_TOKEN"), "admin token (defaults to GYMQUEST_ADMIN_TOKEN)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "request timeout")

	newClient := func() (*adminclient.Client, error) {
		if adminToken == "" {
			return nil, fmt.Errorf("admin token not set, use --admin-token or GYMQUEST_ADMIN_TOKEN")
		}
		return adminclient.New(addr, adminToken, timeout), nil
	}

	var date string
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the inactivity decay sweep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			resp, err := client.DecaySweep(cmd.Context(), date)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	sweepCmd.Flags().StringVar(&date, "date", "", "sweep as of this day, YYYY-MM-DD (defaults to today, UTC)")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Apply facts left logged but not applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			resp, err := client.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}

	hashCmd := &cobra.Command{
		Use:   "hash-admin-token <token>",
		Short: "Print the bcrypt hash to set as GYMQUEST_ADMIN_TOKEN_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			hash, err := pkg.HashPassword(args[0])
			if err != nil {
				return fmt.Errorf("hash admin token: %w", err)
			}
			fmt.Println(hash)
			return nil
		},
	}

	cmd.AddCommand(sweepCmd, reconcileCmd, hashCmd)
	return cmd
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
