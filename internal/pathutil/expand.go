// Package pathutil expands user-supplied filesystem paths.
package pathutil

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Expand resolves environment variables and "~/" home shortcuts in path.
// An empty path expands to the empty string.
func Expand(path string) (string, error) {
	p := os.ExpandEnv(strings.TrimSpace(path))
	if p == "" {
		return "", nil
	}

	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := homeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}

	return filepath.Clean(p), nil
}

// homeDir tries os.UserHomeDir, the passwd database, and $HOME in turn,
// skipping values that are themselves unexpanded tildes.
func homeDir() (string, error) {
	candidates := make([]string, 0, 3)
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, home)
	}
	if current, err := user.Current(); err == nil {
		candidates = append(candidates, current.HomeDir)
	}
	candidates = append(candidates, os.Getenv("HOME"))

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c != "" && c != "~" && !strings.HasPrefix(c, "~/") {
			return c, nil
		}
	}
	return "", fmt.Errorf("home directory is not resolvable")
}
