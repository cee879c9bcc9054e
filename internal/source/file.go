// Package source loads ranked lists from files and from the ranking
// snapshots captured by the search pipeline in PostgreSQL.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile loads a ranked list from path. Files ending in .json must hold a
// single JSON array whose element order is the rank order; any other file is
// read as newline-delimited items with blank lines skipped.
func ReadFile(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ranking file %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing ranking file %s: %w", path, err)
		}
		return items, nil
	}

	var items []any
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	return items, nil
}
