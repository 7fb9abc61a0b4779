// Audit trail inspection commands. Read side of the otherwise one-way
// sqlite audit store.

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/richinex/golem/storage"
)

const maxAuditResultLen = 80

// AuditRuns lists every recorded run, newest first.
func AuditRuns(ctx context.Context, dbPath string) error {
	audit, err := storage.OpenAudit(dbPath)
	if err != nil {
		return err
	}
	defer audit.Close()

	runs, err := audit.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		outcome := run.Outcome
		if outcome == "" {
			outcome = "open"
		}
		fmt.Printf("%s  %s  %s/%s  %s  turns=%d\n",
			run.ID,
			run.StartedAt.Format(time.RFC3339),
			run.Provider, run.Model,
			outcome,
			run.Turns,
		)
		fmt.Printf("    %s\n", truncateString(run.Mission, 100))
	}
	return nil
}

// AuditShow prints one run's action trail and memory snapshots.
func AuditShow(ctx context.Context, dbPath, runID string) error {
	audit, err := storage.OpenAudit(dbPath)
	if err != nil {
		return err
	}
	defer audit.Close()

	actions, err := audit.Actions(ctx, runID)
	if err != nil {
		return err
	}
	snapshots, err := audit.Snapshots(ctx, runID)
	if err != nil {
		return err
	}

	if len(actions) == 0 && len(snapshots) == 0 {
		fmt.Printf("No records for run %s.\n", runID)
		return nil
	}

	for _, rec := range actions {
		marker := "ok"
		if !rec.Success {
			marker = "FAIL"
		}
		fmt.Printf("turn %3d  [%s] %-22s %s\n",
			rec.Turn, marker, rec.Tool, truncateString(rec.Result, maxAuditResultLen))
	}

	if len(snapshots) > 0 {
		fmt.Println("\nMemory snapshots:")
		for _, s := range snapshots {
			fmt.Printf("turn %3d  archived %d turns: %s\n",
				s.Turn, s.Compacted, truncateString(s.Summary, maxAuditResultLen))
			if s.Patterns != "" {
				fmt.Printf("          patterns: %s\n", truncateString(s.Patterns, maxAuditResultLen))
			}
		}
	}
	return nil
}

// AuditPrune keeps the newest N runs and deletes the rest.
func AuditPrune(ctx context.Context, dbPath string, keep int) error {
	audit, err := storage.OpenAudit(dbPath)
	if err != nil {
		return err
	}
	defer audit.Close()

	removed, err := audit.Prune(ctx, keep)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d runs; kept the %d most recent.\n", removed, keep)
	return nil
}

// truncateString truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
