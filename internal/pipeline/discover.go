package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverCSVFiles walks dir recursively and returns every regular file with
// a .csv extension (any case), sorted by path.
func DiscoverCSVFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// displaySource is path relative to root when it lives under root, else its
// base name.
func displaySource(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return rel
}
