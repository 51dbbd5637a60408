package project

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/tailscale/hujson"

	"github.com/cdeg/gypn/internal/expr"
	"github.com/cdeg/gypn/internal/merge"
	"github.com/cdeg/gypn/internal/pathutil"
	"github.com/cdeg/gypn/internal/pygerr"
	"github.com/cdeg/gypn/internal/unroll"
	"github.com/cdeg/gypn/internal/varenv"
)

const (
	opNew       pygerr.Op = "project.New"
	opLoad      pygerr.Op = "project.load"
	opLoadVars  pygerr.Op = "project.loadVariables"
	opEvalConds pygerr.Op = "project.evalConditions"
	opLoadTgts  pygerr.Op = "project.loadTargets"
)

// New loads the root project at path using reader for file I/O.
func New(path string, reader FileReader) (*Project, error) {
	return newChild(path, nil, reader)
}

// newChild loads (or returns the cached, already-loaded) Project for
// path. When parent is non-nil, path is resolved against the root's
// realpath-keyed dedup index before any file I/O happens.
func newChild(path string, parent *Project, reader FileReader) (*Project, error) {
	rpath, err := pathutil.Realpath(path)
	if err != nil {
		return nil, pygerr.E(opNew, pygerr.FS, err)
	}

	var root *Project
	if parent != nil {
		root = parent.Root
		if existing, ok := root.children[rpath]; ok {
			return existing, nil
		}
	}

	raw, err := reader.ReadFile(rpath)
	if err != nil {
		return nil, err
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return nil, pygerr.E(opNew, pygerr.JSON, err)
	}

	var original any
	if err := json.Unmarshal(standardized, &original); err != nil {
		return nil, pygerr.E(opNew, pygerr.JSON, err)
	}

	cloned := merge.CloneUnder(merge.Auto, original)
	obj, ok := cloned.(map[string]any)
	if !ok {
		return nil, pygerr.E(opNew, pygerr.JSON, "JSON not object: "+rpath)
	}

	p := &Project{
		Path:   rpath,
		Dir:    pathutil.Dir(rpath),
		Parent: parent,
		Env:    varenv.New(nil),
		byName: make(map[string]*Target),
		Obj:    obj,
	}

	if parent == nil {
		p.Root = p
		p.children = map[string]*Project{rpath: p}
		p.childOrder = []*Project{p}
		// ID 0 is the root's; children start at 1.
		p.nextID = 1
	} else {
		p.Root = root
		p.ID = root.nextID
		root.nextID++
		root.children[rpath] = p
		root.childOrder = append(root.childOrder, p)
	}

	if err := p.load(reader); err != nil {
		if parent != nil {
			delete(root.children, rpath)
			root.childOrder = root.childOrder[:len(root.childOrder)-1]
		}
		return nil, err
	}

	return p, nil
}

// load runs the three load phases in order: variables, conditions,
// targets. target_defaults is accepted and shape-validated but never
// merged into targets.
func (p *Project) load(reader FileReader) error {
	if raw, ok := p.Obj["target_defaults"]; ok {
		if _, isObj := raw.(map[string]any); !isObj {
			return pygerr.E(opLoad, pygerr.GYP, "`target_defaults` not object")
		}
	}

	if err := loadVariables(p.Obj, p.Env); err != nil {
		return pygerr.E(opLoad, err)
	}

	obj, err := evalConditions(p.Obj, p.Env)
	if err != nil {
		return pygerr.E(opLoad, err)
	}
	p.Obj = obj

	if err := p.loadTargets(reader); err != nil {
		return pygerr.E(opLoad, err)
	}

	return nil
}

// loadVariables ingests obj["variables"] into env: every value is
// unrolled against env's current state, then defined (unless its key
// ends in "%" and the bare name is already defined in env or an
// ancestor, the "default" suffix rule).
func loadVariables(obj map[string]any, env *varenv.Env) error {
	raw, ok := obj["variables"]
	if !ok {
		return nil
	}
	vars, ok := raw.(map[string]any)
	if !ok {
		return pygerr.E(opLoadVars, pygerr.GYP, "`variables` not object")
	}

	// Decoded objects don't preserve source order, and ranging a map is
	// nondeterministic. Sort so that definitions referencing sibling
	// variables via <(...) behave the same on every run.
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val, err := jsonToValue(vars[key])
		if err != nil {
			return pygerr.E(opLoadVars, err)
		}

		val, err = unroll.Value(env, val)
		if err != nil {
			return pygerr.E(opLoadVars, err)
		}

		name := key
		isDefault := false
		if len(key) > 0 && key[len(key)-1] == '%' {
			name = key[:len(key)-1]
			isDefault = true
		}

		if isDefault && env.Has(name) {
			continue
		}
		env.Define(name, val)
	}

	return nil
}

// jsonToValue converts a decoded `variables` JSON value (string or
// number) into a varenv.Value.
func jsonToValue(v any) (varenv.Value, error) {
	switch val := v.(type) {
	case string:
		return varenv.Value{Kind: varenv.KindString, Str: val}, nil
	case float64:
		return varenv.Value{Kind: varenv.KindInt, Int: int64(val)}, nil
	default:
		return varenv.Value{}, pygerr.E(pygerr.GYP, "`variables` entry is not string/integer")
	}
}

// evalConditions evaluates obj["conditions"] and merges the matching
// branch of each `[test]`/`[test, then]`/`[test, then, else]` entry into
// obj (a `[test]` entry is evaluated but has no branch to merge),
// re-ingesting any `variables` the branch defines. Returns the
// (possibly new) merged object, since merge.Merge never mutates dst in
// place.
func evalConditions(obj map[string]any, env *varenv.Env) (map[string]any, error) {
	raw, ok := obj["conditions"]
	if !ok {
		return obj, nil
	}
	conds, ok := raw.([]any)
	if !ok {
		return obj, pygerr.E(opEvalConds, pygerr.GYP, "`conditions` not array")
	}

	for i, c := range conds {
		pair, ok := c.([]any)
		if !ok {
			return obj, pygerr.E(opEvalConds, pygerr.GYP, "`conditions` entry not array")
		}
		if len(pair) < 1 || len(pair) > 3 {
			return obj, pygerr.E(opEvalConds, pygerr.GYP, "`conditions` entry has invalid length")
		}

		test, ok := pair[0].(string)
		if !ok {
			return obj, pygerr.E(opEvalConds, pygerr.GYP, "`conditions`["+strconv.Itoa(i)+"][0] not string")
		}

		result, err := expr.Test(env, test)
		if err != nil {
			return obj, pygerr.E(opEvalConds, err)
		}

		if len(pair) == 1 || (!result && len(pair) == 2) {
			continue
		}

		branchIdx := 1
		if !result {
			branchIdx = 2
		}
		branch, ok := pair[branchIdx].(map[string]any)
		if !ok {
			return obj, pygerr.E(opEvalConds, pygerr.GYP, "`conditions` branch not object")
		}

		merged := merge.Merge(obj, branch, merge.Auto)
		obj, ok = merged.(map[string]any)
		if !ok {
			return obj, pygerr.E(opEvalConds, pygerr.JSON, "merge of condition branch produced non-object")
		}

		if err := loadVariables(branch, env); err != nil {
			return obj, pygerr.E(opEvalConds, err)
		}
	}

	return obj, nil
}

