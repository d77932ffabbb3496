// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// buildApp wires the application for query. Tests replace it.
var buildApp = newApp

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer one research question and print the JSON record",
	Long: `Query runs a single question through the same agent pipeline as the
HTTP API and prints the resulting record as JSON on stdout. The question
is read from the arguments, or from stdin when no arguments are given.`,
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	if question == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading question from stdin: %w", err)
		}
		question = string(data)
	}

	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.pipeline.Handle(ctx, question)
	if err != nil {
		return err
	}
	if text, _ := cmd.Flags().GetBool("text"); text {
		printResponse(cmd.OutOrStdout(), resp)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResponse writes a short human-readable form of resp.
func printResponse(w io.Writer, resp types.ResponseRecord) {
	fmt.Fprintf(w, "Topic:   %s\n", resp.Topic)
	fmt.Fprintf(w, "Summary: %s\n", resp.Summary)
	if len(resp.Sources) > 0 {
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(resp.Sources, ", "))
	}
	if resp.ImageURL != "" {
		fmt.Fprintf(w, "Image:   %s (%s)\n", resp.ImageURL, resp.ImageSource)
	}
	if len(resp.Ingredients) > 0 {
		fmt.Fprintf(w, "Ingredients: %s\n", strings.Join(resp.Ingredients, ", "))
	}
	if resp.Instructions != "" {
		fmt.Fprintf(w, "Instructions: %s\n", resp.Instructions)
	}
}

func init() {
	queryCmd.Flags().Bool("text", false, "print a readable summary instead of JSON")
	rootCmd.AddCommand(queryCmd)
}
