// Package pathutil implements the path helpers the project loader
// needs: basename/dirname/realpath plus the join-then-resolve rule
// used for source, include, and dependency paths.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Base returns the filename stem (basename minus final extension), as
// used for the "«stem»_«index».o" output naming rule.
func Base(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// Dir returns the directory portion of path.
func Dir(path string) string {
	return filepath.Dir(path)
}

// Realpath resolves path to its canonical absolute form, following
// symlinks.
func Realpath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// IsFlagLike reports whether path is actually a linker/compiler flag
// (leading "-" or "$") that must be passed through unresolved.
func IsFlagLike(path string) bool {
	return strings.HasPrefix(path, "-") || strings.HasPrefix(path, "$")
}

// Resolve joins rel against base and realpath-normalizes the result,
// unless rel is absolute (realpath-normalized directly) or flag-like
// (returned unchanged).
func Resolve(base, rel string) (string, error) {
	if IsFlagLike(rel) {
		return rel, nil
	}
	if filepath.IsAbs(rel) {
		return Realpath(rel)
	}
	return Realpath(filepath.Join(base, rel))
}

// NResolve resolves the first n bytes of rel (used for the
// "path:target_name" cross-project dependency syntax, where only the
// path portion before the first ':' is resolved).
func NResolve(base, rel string, n int) (string, error) {
	return Resolve(base, rel[:n])
}
