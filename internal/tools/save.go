package tools

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

const defaultSavePath = "research_output.txt"

// Save appends research notes to a text file. Concurrent requests share one
// file, so appends are serialized.
type Save struct {
	Path string

	mu  sync.Mutex
	now func() time.Time
}

// NewSave returns a Save tool writing to path (default research_output.txt).
func NewSave(path string) *Save {
	if path == "" {
		path = defaultSavePath
	}
	return &Save{Path: path, now: time.Now}
}

func (s *Save) Name() string { return "save_text_to_file" }

func (s *Save) Description() string {
	return "Saves structured research data to a text file."
}

// Run appends a timestamped block containing input.
func (s *Save) Run(_ context.Context, input string) (string, error) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	block := fmt.Sprintf("--- Research Output ---\nTimestamp: %s\n\n%s\n\n",
		now().Format("2006-01-02 15:04:05"), input)

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", s.Path, err)
	}
	if _, err := f.WriteString(block); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", s.Path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", s.Path, err)
	}

	return fmt.Sprintf("Data successfully saved to %s", s.Path), nil
}
