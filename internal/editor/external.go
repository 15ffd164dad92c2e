package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Suspender yields the terminal to a subprocess and restores raw mode
// afterwards. Satisfied by the term adapter.
type Suspender interface {
	Suspend(fn func() error) error
}

// EditExternal writes initial content to a temp file, runs the user's
// editor on it with the terminal handed over, and returns the edited
// content. A failed subprocess is a recoverable error; the temp file is
// always cleaned up.
func EditExternal(s Suspender, command, initial, extHint string) (string, error) {
	if command == "" {
		return "", fmt.Errorf("no editor configured")
	}
	ext := strings.TrimPrefix(extHint, ".")
	if ext == "" {
		ext = "md"
	}
	tmp, err := os.CreateTemp("", "lumen-*."+ext)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(initial); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close scratch file: %w", err)
	}

	parts := strings.Fields(command)
	args := append(parts[1:], path)
	runErr := s.Suspend(func() error {
		cmd := exec.Command(parts[0], args...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	})
	if runErr != nil {
		return "", fmt.Errorf("editor %q: %w", parts[0], runErr)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read edited file: %w", err)
	}
	return string(edited), nil
}
