package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "compliancectl",
		Short:        "Collection-site compliance tooling",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(requirementCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func requirementCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requirement [population]",
		Short: "Print the base site requirement for a population",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequirement(cmd.OutOrStdout(), args[0])
		},
	}
}

func reportCmd() *cobra.Command {
	var (
		seedPath string
		asOf     string
		format   string
		label    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Evaluate every municipality in a seed file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), reportOptions{
				SeedPath: seedPath,
				AsOf:     asOf,
				Format:   format,
				Label:    label,
			})
		},
	}

	cmd.Flags().StringVarP(&seedPath, "seed", "s", "", "jurisdiction seed file (YAML)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluation instant (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	cmd.Flags().StringVar(&label, "snapshot", "", "also capture a snapshot with this label")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

func migrateCmd() *cobra.Command {
	var (
		dsn        string
		sqlitePath string
		seedPath   string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the compliance tables and optionally load a seed file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), cmd.OutOrStdout(), dsn, sqlitePath, seedPath)
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", os.Getenv("POSTGRES_DSN"), "postgres DSN")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", os.Getenv("SQLITE_PATH"), "sqlite database path")
	cmd.Flags().StringVarP(&seedPath, "seed", "s", "", "jurisdiction seed file (YAML)")
	return cmd
}
