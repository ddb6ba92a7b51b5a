package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// IsSource reports whether path has a compilable extension.
func IsSource(path string) bool {
	switch filepath.Ext(path) {
	case ".sy", ".c":
		return true
	}
	return false
}

// ListSources expands files and directories into a sorted list of source
// files. Directories are walked recursively.
func ListSources(roots ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !IsSource(root) {
				return nil, fmt.Errorf("%s: not a .sy or .c file", root)
			}
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsSource(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

// Sources lists the files named by [build].sources.
func (m *Manifest) Sources() ([]string, error) {
	roots := make([]string, len(m.Config.Build.Sources))
	for i, s := range m.Config.Build.Sources {
		roots[i] = filepath.Join(m.Root, filepath.FromSlash(s))
	}
	return ListSources(roots...)
}
