package project

import (
	"strconv"
	"strings"

	"github.com/cdeg/gypn/internal/pathutil"
	"github.com/cdeg/gypn/internal/pygerr"
	"github.com/cdeg/gypn/internal/unroll"
)

const (
	opResolvePaths  pygerr.Op = "project.resolvePaths"
	opCreateSources pygerr.Op = "project.createSources"
)

// resolvePaths unrolls and normalizes every entry of t.Obj["sources"]
// and t.Obj["include_dirs"] to a realpath relative to the owning
// project's directory, replacing the arrays in place (absolute and
// flag-like entries pass through pathutil.Resolve unchanged in shape).
// Unrolling happens against the target's environment, so `<(name)`
// tokens in a path may reference project- as well as target-scoped
// variables.
func (t *Target) resolvePaths() error {
	if err := t.resolvePathArray("sources"); err != nil {
		return err
	}
	return t.resolvePathArray("include_dirs")
}

func (t *Target) resolvePathArray(key string) error {
	raw, ok := t.Obj[key]
	if !ok {
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return pygerr.E(opResolvePaths, pygerr.JSON, "`"+key+"` not array")
	}

	out := make([]any, len(arr))
	for i, item := range arr {
		path, ok := item.(string)
		if !ok {
			return pygerr.E(opResolvePaths, pygerr.JSON, "`"+key+"`["+strconv.Itoa(i)+"] not string")
		}
		path, err := unroll.Str(t.Env, path)
		if err != nil {
			return pygerr.E(opResolvePaths, err)
		}
		resolved, err := pathutil.Resolve(t.Project.Dir, path)
		if err != nil {
			return pygerr.E(opResolvePaths, pygerr.FS, err)
		}
		out[i] = resolved
	}
	t.Obj[key] = out
	return nil
}

// categoryForExt classifies a source by its final extension.
func categoryForExt(ext string) Category {
	switch ext {
	case "c":
		return CategoryC
	case "cc", "cpp":
		return CategoryCXX
	case "m":
		return CategoryObjC
	case "mm":
		return CategoryObjCXX
	case "o", "so", "dylib", "dll":
		return CategoryLink
	default:
		return CategorySkip
	}
}

// createSources builds t.Sources from the (already path-resolved)
// "sources" array: each entry is classified by extension, and
// compilable entries get a filename stem plus a per-target-unique
// output name of the form "«stem»_«index».o".
func (t *Target) createSources() error {
	raw, ok := t.Obj["sources"]
	if !ok {
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return pygerr.E(opCreateSources, pygerr.JSON, "`sources` not array")
	}

	sources := make([]*Source, 0, len(arr))
	var categories Category

	for i, item := range arr {
		path, ok := item.(string)
		if !ok {
			return pygerr.E(opCreateSources, pygerr.JSON, "`sources`["+strconv.Itoa(i)+"] not string")
		}

		src := &Source{Path: path}

		dot := strings.LastIndexByte(path, '.')
		if dot < 0 {
			src.Category = CategorySkip
		} else {
			src.Category = categoryForExt(path[dot+1:])
		}
		categories |= src.Category

		if src.Category.Compilable() {
			src.Stem = pathutil.Base(path)
			src.Out = src.Stem + "_" + strconv.Itoa(i) + ".o"
		}

		sources = append(sources, src)
	}

	t.Sources = sources
	t.Categories = categories
	return nil
}
