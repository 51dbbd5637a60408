// Package ninja implements the Ninja manifest backend: a walk over a
// fully loaded project graph that emits rule and build blocks into a
// single text buffer.
package ninja

import (
	"strconv"
	"strings"

	"github.com/cdeg/gypn/internal/project"
	"github.com/cdeg/gypn/internal/pygerr"
)

const opGenerate pygerr.Op = "ninja.Generate"

// Settings configures manifest generation.
type Settings struct {
	// BuildDir is the directory prefix under which every target's
	// outputs are written ("build" by default).
	BuildDir string
	// Deprefix is a directory whose leading occurrence is stripped from
	// source paths before they are printed in the manifest.
	Deprefix string
	// RunID stamps the prologue's traceability comment. Generate itself
	// never invents one (no randomness in this package keeps output
	// reproducible for identical inputs); cmd generates it once per
	// invocation via google/uuid and passes it in here.
	RunID string
}

// Generate walks every project reachable from root (root.AllProjects,
// load order) and every target within each project (insertion order)
// and writes a complete Ninja manifest. Iteration never ranges over a
// Go map directly; every traversal here is over an already-ordered
// slice, so output is byte-stable for identical input.
func Generate(root *project.Project, settings Settings) (string, error) {
	var b strings.Builder

	writePrologue(&b, settings)

	for _, p := range root.AllProjects() {
		for _, t := range p.Targets {
			if err := writeTarget(&b, t, settings); err != nil {
				return "", pygerr.E(opGenerate, err)
			}
		}
	}

	return b.String(), nil
}

func writePrologue(b *strings.Builder, settings Settings) {
	b.WriteString("# generated by gypn run " + settings.RunID + "\n\n")
	b.WriteString("cc = cc\n")
	b.WriteString("cxx = c++\n")
	b.WriteString("ld = cc\n")
	b.WriteString("ldxx = c++\n")
	b.WriteString("ar = ar\n\n")
	b.WriteString("rule copy\n")
	b.WriteString("  command = cp $in $out\n")
	b.WriteString("  description = COPY $out\n\n")
}

// ext returns the output filename extension for kind.
func ext(kind project.Kind) string {
	switch kind {
	case project.KindStatic:
		return ".a"
	case project.KindShared:
		return ".so"
	default: // KindExecutable, KindNone
		return ""
	}
}

func hasCXX(t *project.Target) bool {
	return t.Categories&project.CategoryCXX != 0
}

// linkRuleName selects the rule used to produce t's final output by
// target kind and by whether C++ sources are present (a C++ mix uses
// ldxx/soldxx).
func linkRuleName(t *project.Target) string {
	cxx := hasCXX(t)
	switch t.Kind {
	case project.KindStatic:
		return "ar"
	case project.KindShared:
		if cxx {
			return "soldxx"
		}
		return "so"
	default: // KindExecutable, KindNone
		if cxx {
			return "ldxx"
		}
		return "ld"
	}
}

func scopedName(concern, target string, id int) string {
	return concern + "_" + target + "_" + strconv.Itoa(id)
}

// stringSlice reads a []any-of-strings entry from a target's (already
// condition-merged) JSON object, tolerating an absent key.
func stringSlice(obj map[string]any, key string) []string {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringField reads a string entry, tolerating an absent key.
func stringField(obj map[string]any, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}

// targetOutDir is the directory a target's build products live under:
// «builddir»/«project_id»/«target_name».
func targetOutDir(settings Settings, p *project.Project, t *project.Target) string {
	return settings.BuildDir + "/" + strconv.Itoa(p.ID) + "/" + t.Name
}

// depOutput is the final link/archive output path of a dependency
// target, used as an extra input on the referencing target's link or
// archive line.
func depOutput(settings Settings, dep *project.Target) string {
	return targetOutDir(settings, dep.Project, dep) + "/" + dep.Name + ext(dep.Kind)
}

func deprefix(path, prefix string) string {
	if prefix == "" {
		return path
	}
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok || (rest != "" && rest[0] != '/' && !strings.HasSuffix(prefix, "/")) {
		return path
	}
	return strings.TrimPrefix(rest, "/")
}

func writeTarget(b *strings.Builder, t *project.Target, settings Settings) error {
	outDir := targetOutDir(settings, t.Project, t)
	id := t.Project.ID

	includes := stringSlice(t.Obj, "include_dirs")
	defines := stringSlice(t.Obj, "defines")
	libs := stringSlice(t.Obj, "libraries")
	cflags := stringField(t.Obj, "cflags")
	ldflags := stringField(t.Obj, "ldflags")

	includesVar := scopedName("include_dirs", t.Name, id)
	definesVar := scopedName("defines", t.Name, id)
	libsVar := scopedName("libs", t.Name, id)
	cflagsVar := scopedName("cflags", t.Name, id)
	ldflagsVar := scopedName("ldflags", t.Name, id)

	writeFlagVar(b, includesVar, includes, "-I")
	writeFlagVar(b, definesVar, defines, "-D")
	writeFlagVar(b, libsVar, libs, "")
	b.WriteString(ldflagsVar + " = " + ldflags + "\n")
	b.WriteString(cflagsVar + " = " + cflags + "\n\n")

	// haveC/haveCXX govern which compile rules are emitted: only those
	// for categories actually present. Obj-C reuses the cc rule,
	// Obj-C++ reuses the cxx rule.
	haveC := t.Categories&(project.CategoryC|project.CategoryObjC) != 0
	haveCXX := t.Categories&(project.CategoryCXX|project.CategoryObjCXX) != 0
	ccRule := scopedName("cc", t.Name, id)
	cxxRule := scopedName("cxx", t.Name, id)

	if haveC {
		writeCompileRule(b, ccRule, "$cc", includesVar, definesVar, cflagsVar)
	}
	if haveCXX {
		writeCompileRule(b, cxxRule, "$cxx", includesVar, definesVar, cflagsVar)
	}

	// The ar rule is emitted regardless of target kind.
	writeLinkRule(b, scopedName("ar", t.Name, id), "ar", ldflagsVar, libsVar)

	needsLink := false
	for _, src := range t.Sources {
		if src.Category != project.CategorySkip {
			needsLink = true
			break
		}
	}

	link := linkRuleName(t)
	linkFull := scopedName(link, t.Name, id)
	if needsLink && link != "ar" {
		writeLinkRule(b, linkFull, link, ldflagsVar, libsVar)
	}

	var objs []string
	for _, src := range t.Sources {
		if !src.Category.Compilable() {
			continue
		}
		var rule string
		switch src.Category {
		case project.CategoryC, project.CategoryObjC:
			rule = ccRule
		case project.CategoryCXX, project.CategoryObjCXX:
			rule = cxxRule
		default:
			continue
		}

		objPath := outDir + "/" + src.Out
		displaySrc := deprefix(src.Path, settings.Deprefix)
		b.WriteString("build " + objPath + ": " + rule + " " + displaySrc + "\n")
		objs = append(objs, objPath)
	}

	var linkInputs []string
	for _, src := range t.Sources {
		if src.Category == project.CategoryLink {
			linkInputs = append(linkInputs, deprefix(src.Path, settings.Deprefix))
		}
	}

	var depOutputs []string
	for _, dep := range t.Deps {
		depOutputs = append(depOutputs, depOutput(settings, dep))
	}

	outPath := outDir + "/" + t.Name + ext(t.Kind)

	if len(objs) == 0 && len(linkInputs) == 0 {
		writePhonyEdge(b, outPath, depOutputs)
	} else {
		inputs := append(append([]string{}, objs...), linkInputs...)
		writeLinkEdge(b, outPath, linkFull, inputs, depOutputs)
	}

	if id == 0 {
		finalPath := settings.BuildDir + "/" + t.Name + ext(t.Kind)
		b.WriteString("build " + finalPath + ": copy " + outPath + "\n")
		b.WriteString("build " + t.Name + ": phony " + finalPath + "\n")
	}

	b.WriteString("\n")
	return nil
}

func writeFlagVar(b *strings.Builder, name string, values []string, flag string) {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, flag+v)
	}
	b.WriteString(name + " = " + strings.Join(parts, " ") + "\n")
}

func writeCompileRule(b *strings.Builder, ruleName, compiler, includesVar, definesVar, cflagsVar string) {
	b.WriteString("rule " + ruleName + "\n")
	b.WriteString("  command = " + compiler + " -MMD -MF $out.d $" + includesVar + " $" + definesVar + " $" + cflagsVar + " -c $in -o $out\n")
	b.WriteString("  depfile = $out.d\n")
	b.WriteString("  deps = gcc\n")
	b.WriteString("  description = CC $out\n\n")
}

func writeLinkRule(b *strings.Builder, ruleName, link, ldflagsVar, libsVar string) {
	b.WriteString("rule " + ruleName + "\n")
	switch link {
	case "ar":
		b.WriteString("  command = rm -f $out && $ar rcs $out $in\n")
		b.WriteString("  description = AR $out\n\n")
	case "so", "soldxx":
		base := "$ld"
		if link == "soldxx" {
			base = "$ldxx"
		}
		b.WriteString("  command = " + base + " -shared $" + ldflagsVar + " $in $" + libsVar + " -o $out\n")
		b.WriteString("  description = SOLINK $out\n\n")
	default: // ld, ldxx
		base := "$ld"
		if link == "ldxx" {
			base = "$ldxx"
		}
		b.WriteString("  command = " + base + " $" + ldflagsVar + " $in $" + libsVar + " -o $out\n")
		b.WriteString("  description = LINK $out\n\n")
	}
}

func writeLinkEdge(b *strings.Builder, outPath, rule string, inputs, depOutputs []string) {
	line := "build " + outPath + ": " + rule + " " + strings.Join(inputs, " ")
	if len(depOutputs) > 0 {
		line += " | " + strings.Join(depOutputs, " ")
	}
	b.WriteString(line + "\n")
}

func writePhonyEdge(b *strings.Builder, outPath string, depOutputs []string) {
	line := "build " + outPath + ": phony"
	if len(depOutputs) > 0 {
		line += " " + strings.Join(depOutputs, " ")
	}
	b.WriteString(line + "\n")
}
