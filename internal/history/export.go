// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const exportLimit = maxLimit

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// CheckFormat returns an error unless format is one Export accepts. An empty
// format means YAML.
func CheckFormat(format string) error {
	switch format {
	case FormatYAML, FormatJSON, "":
		return nil
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// Export writes up to opts.Limit entries (newest first) to w in format.
func (s *Store) Export(ctx context.Context, w io.Writer, format string, opts ListOptions) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	if opts.Limit <= 0 {
		opts.Limit = exportLimit
	}
	entries, err := s.Recent(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if entries == nil {
		entries = []types.HistoryEntry{}
	}

	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
	}
	return nil
}
