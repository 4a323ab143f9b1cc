package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// RegionFiles lists the static region JSON files available under dir,
// sorted by name.
func RegionFiles(dir string) ([]string, error) {
	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list region files: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}
