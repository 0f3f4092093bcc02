package acquire

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadAll reads a log from r with carriage returns removed.
func ReadAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read log: %w", err)
	}
	text := strings.ReplaceAll(string(data), "\r", "")
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyLog
	}
	return text, nil
}

// ReadFile reads a local log file.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()
	return ReadAll(f)
}
