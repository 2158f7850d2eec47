package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates the journal directory.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating journal dir %s: %w", dir, err)
	}
	return nil
}

// WriteBindings stores the rendered binding table the run was started with.
func WriteBindings(dir, table string) error {
	return writeFileAtomic(BindingsPath(dir), []byte(table), 0644)
}

// BindingsPath returns the path of the binding table snapshot.
func BindingsPath(dir string) string {
	return filepath.Join(dir, "bindings.txt")
}
