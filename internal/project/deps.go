package project

import (
	"strings"

	"github.com/cdeg/gypn/internal/pathutil"
	"github.com/cdeg/gypn/internal/pygerr"
)

const opLoadDeps pygerr.Op = "project.resolveDependencies"

// resolveDependencies resolves t.Obj["dependencies"] into t.Deps, in
// order. A dependency string is either local (bare `name`, looked up
// in the owning project's target map) or cross-project
// (`path:target_name`, which loads the referenced project, deduped
// through the root's index, and looks up `target_name` there).
// Dependencies resolving to an executable target are rejected: linking
// against an executable is forbidden.
func (t *Target) resolveDependencies(reader FileReader) error {
	raw, ok := t.Obj["dependencies"]
	if !ok {
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return pygerr.E(opLoadDeps, pygerr.JSON, "dependencies not array")
	}

	deps := make([]*Target, 0, len(arr))
	for _, item := range arr {
		dep, ok := item.(string)
		if !ok {
			return pygerr.E(opLoadDeps, pygerr.JSON, "dependencies entry not string")
		}

		depTarget, err := t.resolveOneDependency(dep, reader)
		if err != nil {
			return err
		}
		if depTarget.Kind == KindExecutable {
			return pygerr.E(opLoadDeps, pygerr.GYP, "dependency `"+dep+"` has non-linkable type")
		}
		deps = append(deps, depTarget)
	}

	t.Deps = deps
	return nil
}

func (t *Target) resolveOneDependency(dep string, reader FileReader) (*Target, error) {
	p := t.Project

	idx := strings.IndexByte(dep, ':')
	if idx < 0 {
		depTarget, ok := p.byName[dep]
		if !ok {
			return nil, pygerr.E(opLoadDeps, pygerr.GYP, "dependency `"+dep+"` not found")
		}
		return depTarget, nil
	}

	depPath, err := pathutil.NResolve(p.Dir, dep, idx)
	if err != nil {
		return nil, pygerr.E(opLoadDeps, pygerr.FS, err)
	}

	child, err := newChild(depPath, p, reader)
	if err != nil {
		return nil, err
	}

	name := dep[idx+1:]
	depTarget, ok := child.byName[name]
	if !ok {
		return nil, pygerr.E(opLoadDeps, pygerr.GYP, "child "+name+" not found in "+child.Path)
	}
	return depTarget, nil
}
