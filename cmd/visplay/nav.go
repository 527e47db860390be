package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cbegin/visplay-go/internal/media"
)

type navEntry struct {
	name  string
	path  string
	isDir bool
}

// listDir returns ".." first, then directories, then playable files, each
// group sorted case-insensitively.
func listDir(dir string) ([]navEntry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dirs, files []navEntry
	if parent := filepath.Dir(dir); parent != dir {
		dirs = append(dirs, navEntry{name: "..", path: parent, isDir: true})
	}
	for _, it := range items {
		name := it.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		switch {
		case it.IsDir():
			dirs = append(dirs, navEntry{name: name, path: full, isDir: true})
		case media.Supported(name):
			files = append(files, navEntry{name: name, path: full})
		}
	}
	byName := func(s []navEntry) {
		sort.SliceStable(s, func(i, j int) bool {
			if s[i].name == ".." {
				return true
			}
			if s[j].name == ".." {
				return false
			}
			return strings.ToLower(s[i].name) < strings.ToLower(s[j].name)
		})
	}
	byName(dirs)
	byName(files)
	return append(dirs, files...), nil
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
