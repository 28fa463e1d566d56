package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadServiceList reads a service list file: one service name per line.
// Blank lines are skipped. A missing file yields an empty list.
func LoadServiceList(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open service list: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read service list: %w", err)
	}
	return names, nil
}

// SaveServiceList writes names to path, one per line.
func SaveServiceList(path string, names []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return atomicWrite(path, func(tmp string) error {
		var b strings.Builder
		for _, n := range names {
			b.WriteString(n)
			b.WriteString("\r\n")
		}
		return os.WriteFile(tmp, []byte(b.String()), 0600)
	})
}
