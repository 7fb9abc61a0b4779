// Package main provides the golem CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/golem/cli"
)

var (
	// Global flags
	provider string
	modelID  string
	maxSteps int
	verbose  bool
	noAudit  bool
	auditDB  string
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "golem",
		Short: "Autonomous desktop agent driven by a vision-capable LLM",
		Long: `golem drives a desktop toward a mission by alternating a strategic
planning phase and a tactical execution phase. A vision model sees the
screen, the engine enforces the protocol: one action per turn, bounded
memory, forced reviews, and a hard step budget.`,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (anthropic, openai, gemini, local)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug-level telemetry")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(auditCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [mission]",
		Short: "Drive the desktop until the mission completes or the step budget runs out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := cli.Options{
				Provider: provider,
				Model:    modelID,
				MaxSteps: maxSteps,
				Verbose:  verbose,
				NoAudit:  noAudit,
			}
			return cli.Run(ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&modelID, "model", "", "Model identifier (overrides the provider default)")
	cmd.Flags().IntVarP(&maxSteps, "max-steps", "m", 0, "Turn budget (default 50)")
	cmd.Flags().BoolVar(&noAudit, "no-audit", false, "Disable the sqlite audit trail")

	return cmd
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the planning and execution tool vocabularies",
		Run: func(cmd *cobra.Command, args []string) {
			cli.ListTools()
		},
	}
}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit trail of past runs",
	}
	cmd.PersistentFlags().StringVar(&auditDB, "db", ".golem/audit.db", "Audit database path")

	cmd.AddCommand(&cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.AuditRuns(cmd.Context(), auditDB)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show [run-id]",
		Short: "Show one run's actions and memory snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.AuditShow(cmd.Context(), auditDB, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "prune [keep]",
		Short: "Delete all but the newest N runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid keep count %q: %w", args[0], err)
			}
			return cli.AuditPrune(cmd.Context(), auditDB, keep)
		},
	})

	return cmd
}
