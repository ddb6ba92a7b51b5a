package diagfmt

import (
	"os"
	"path/filepath"
	"strings"
)

func formatPath(path string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative:
		return relativeTo(path, baseDir)
	case PathModeAuto:
		if wd, err := os.Getwd(); err == nil {
			return relativeTo(path, wd)
		}
	}
	return path
}

func relativeTo(path, base string) string {
	if base == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
