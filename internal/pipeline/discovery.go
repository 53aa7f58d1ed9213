package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// testPatterns are matched relative to the project root. A trailing slash
// restricts the pattern to directories.
var testPatterns = []string{"tests/", "test/", "*/test_*.py", "*/tests/"}

// discoverTests returns the sorted, de-duplicated test locations under root.
func discoverTests(root string) ([]string, error) {
	matches := make(map[string]struct{})

	for _, pattern := range testPatterns {
		dirOnly := strings.HasSuffix(pattern, "/")
		glob := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(pattern, "/")))

		found, err := filepath.Glob(glob)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, path := range found {
			if dirOnly {
				info, err := os.Stat(path)
				if err != nil || !info.IsDir() {
					continue
				}
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			matches[filepath.ToSlash(rel)] = struct{}{}
		}
	}

	paths := make([]string, 0, len(matches))
	for p := range matches {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
