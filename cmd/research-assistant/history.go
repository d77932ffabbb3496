// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded responses (list, show, export)",
	Long: `History reads the SQLite database of served responses written when
history.enabled is set. The database path comes from history.path.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent responses, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), listOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if entries == nil {
			entries = []types.HistoryEntry{}
		}
		return writeJSON(cmd.OutOrStdout(), entries)
	}
	formatHistoryList(cmd.OutOrStdout(), entries)
	return nil
}

func formatHistoryList(w io.Writer, entries []types.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history entries.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-30s  %s\n", "ID", "Created", "Topic", "Query")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, e := range entries {
		fmt.Fprintf(w, "%-36s  %-20s  %-30s  %s\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), clip(e.Response.Topic, 30), clip(e.Query, 40))
	}
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one recorded response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		entry, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), entry)
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded responses to YAML or JSON",
	Long: `Export writes recorded responses (newest first) to stdout or to the
file given with --output. Supports the same filters as list.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) (err error) {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	if err := history.CheckFormat(format); err != nil {
		return err
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing %s: %w", output, cerr)
			}
		}()
		w = f
	}

	if err := store.Export(context.Background(), w, format, listOptsFromFlags(cmd)); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported history to %s\n", output)
	}
	return nil
}

// --- helpers ---

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	return history.NewStore(cfg.History)
}

func listOptsFromFlags(cmd *cobra.Command) history.ListOptions {
	limit, _ := cmd.Flags().GetInt("limit")
	contains, _ := cmd.Flags().GetString("contains")
	return history.ListOptions{Limit: limit, Contains: contains}
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().Int("limit", 0, "maximum number of entries (default 20 for list, 500 for export)")
		c.Flags().String("contains", "", "only entries whose query or topic contains this text")
	}
	historyListCmd.Flags().Bool("json", false, "output entries as JSON")
	historyExportCmd.Flags().String("format", history.FormatYAML, "export format: yaml or json")
	historyExportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
