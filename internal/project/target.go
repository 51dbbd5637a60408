package project

import (
	"github.com/cdeg/gypn/internal/pygerr"
	"github.com/cdeg/gypn/internal/varenv"
)

const opLoadTarget pygerr.Op = "project.loadTarget"

// loadTargets registers every target object under "targets", then
// resolves dependencies and sources for each in a second pass
// (dependency resolution must see every local target already
// registered, since a local dependency may be declared after the
// target that references it).
func (p *Project) loadTargets(reader FileReader) error {
	raw, ok := p.Obj["targets"]
	if !ok {
		return pygerr.E(opLoadTgts, pygerr.JSON, "'targets' property not found")
	}
	arr, ok := raw.([]any)
	if !ok {
		return pygerr.E(opLoadTgts, pygerr.JSON, "'targets' not array")
	}

	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return pygerr.E(opLoadTgts, pygerr.JSON, "target entry not object")
		}
		t, err := p.newTarget(obj)
		if err != nil {
			return err
		}
		if _, dup := p.byName[t.Name]; dup {
			return pygerr.E(opLoadTgts, pygerr.GYP, "duplicate target name `"+t.Name+"`")
		}
		p.byName[t.Name] = t
		p.Targets = append(p.Targets, t)
	}

	for _, t := range p.Targets {
		if err := t.resolveDependencies(reader); err != nil {
			return err
		}
		if err := t.resolvePaths(); err != nil {
			return err
		}
		if err := t.createSources(); err != nil {
			return err
		}
	}

	return nil
}

// newTarget registers a single target record: its own variables are
// ingested and its own conditions evaluated early, before
// source/dependency resolution, since a condition branch may add to
// `sources`.
func (p *Project) newTarget(obj map[string]any) (*Target, error) {
	t := &Target{
		Project: p,
		Env:     varenv.New(p.Env),
		Obj:     obj,
	}

	if err := loadVariables(t.Obj, t.Env); err != nil {
		return nil, pygerr.E(opLoadTarget, err)
	}

	merged, err := evalConditions(t.Obj, t.Env)
	if err != nil {
		return nil, pygerr.E(opLoadTarget, err)
	}
	t.Obj = merged

	name, ok := t.Obj["target_name"].(string)
	if !ok {
		return nil, pygerr.E(opLoadTarget, pygerr.JSON, "'target_name' not string")
	}
	t.Name = name

	kind, err := kindFromString(t.Obj["type"])
	if err != nil {
		return nil, pygerr.E(opLoadTarget, err)
	}
	t.Kind = kind

	return t, nil
}

func kindFromString(raw any) (Kind, error) {
	if raw == nil {
		return KindExecutable, nil
	}
	s, ok := raw.(string)
	if !ok {
		return 0, pygerr.E(pygerr.JSON, "'type' not string")
	}
	switch s {
	case "none":
		return KindNone, nil
	case "executable":
		return KindExecutable, nil
	case "static_library":
		return KindStatic, nil
	case "shared_library":
		return KindShared, nil
	default:
		return 0, pygerr.E(pygerr.JSON, "invalid target.type: "+s)
	}
}
