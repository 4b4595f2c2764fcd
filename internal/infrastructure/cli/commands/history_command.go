package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/voicectl/internal/app"
	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/infrastructure/cli/helpers"
	"github.com/doeshing/voicectl/internal/infrastructure/history"
)

// NewHistoryCommand creates the history command with all subcommands.
// Each subcommand connects to the configured store first and falls back to
// the in-memory buffer like the server does.
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect command history",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if container.History == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			container.Start(cmd.Context())
			return nil
		},
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
		newHistoryStatsCommand(container),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := container.Commands.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to retrieve history records: %w", err)
			}
			warnIfDegraded(cmd.ErrOrStderr(), container)
			listHistoryEntries(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultHistoryLimit, "Max entries to show")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Commands.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			warnIfDegraded(cmd.ErrOrStderr(), container)
			fmt.Fprintln(cmd.OutOrStdout(), MsgHistoryCleared)
			return nil
		},
	}
}

// newHistoryExportCommand creates the 'history export' subcommand
func newHistoryExportCommand(container *app.Container) *cobra.Command {
	var (
		out   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history to a JSONL file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New(ErrOutRequired)
			}
			n, err := history.ExportJSONL(cmd.Context(), container.History, out, limit)
			if err != nil {
				return fmt.Errorf("failed to export history to %s: %w", out, err)
			}
			warnIfDegraded(cmd.ErrOrStderr(), container)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Destination .jsonl file")
	cmd.Flags().IntVar(&limit, "limit", domain.MaxHistoryLimit, "Max records to export")
	return cmd
}

// newHistoryStatsCommand creates the 'history stats' subcommand
func newHistoryStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show success rate and top commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := container.Commands.List(cmd.Context(), MaxHistoryAnalysisRecords)
			if err != nil {
				return fmt.Errorf("failed to retrieve history for analysis: %w", err)
			}
			warnIfDegraded(cmd.ErrOrStderr(), container)
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoHistoryRecorded)
				return nil
			}
			displayHistoryStatistics(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

// listHistoryEntries prints one line per record
func listHistoryEntries(out io.Writer, records []domain.CommandRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return
	}
	for _, rec := range records {
		fmt.Fprintf(out, "%s | %-7s | %-5s | %s -> %s\n",
			rec.Timestamp.Local().Format(TimestampFormat),
			rec.Status,
			rec.Source,
			rec.Text,
			rec.Response)
	}
}

// displayHistoryStatistics displays formatted history statistics
func displayHistoryStatistics(out io.Writer, records []domain.CommandRecord) {
	stats := helpers.AnalyzeHistory(records)

	fmt.Fprintf(out, "Entries analyzed: %d\nSuccess rate: %.1f%%\n",
		stats.Total,
		helpers.CalculateSuccessRate(stats.Successful, stats.Total))
	fmt.Fprintf(out, "Sources: voice %d, text %d\n",
		stats.BySource[domain.SourceVoice],
		stats.BySource[domain.SourceText])

	fmt.Fprintln(out, "Top commands:")
	for _, stat := range helpers.CalculateTopCommands(stats.Frequency, 5) {
		fmt.Fprintf(out, "  %s (%d)\n", stat.Command, stat.Count)
	}

	if hints := helpers.DeriveUndoHints(records); len(hints) > 0 {
		fmt.Fprintln(out, "Undo hints:")
		for _, hint := range hints {
			fmt.Fprintf(out, "  - %s\n", hint)
		}
	}
}

func warnIfDegraded(errOut io.Writer, container *app.Container) {
	if container.Store != nil && !container.History.Persistent() {
		fmt.Fprintf(errOut, "warning: %s unavailable, showing in-memory history only\n", container.Store.Name())
	}
}
