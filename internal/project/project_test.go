package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGYP(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLocalDependencyGraph(t *testing.T) {
	dir := t.TempDir()
	writeGYP(t, dir, "u.c", "")
	writeGYP(t, dir, "m.c", "")
	path := writeGYP(t, dir, "a.gyp", `{
		"targets": [
			{ "target_name": "util", "type": "static_library", "sources": ["u.c"] },
			{ "target_name": "main", "type": "executable", "sources": ["m.c"], "dependencies": ["util"] }
		]
	}`)

	root, err := New(path, OSFileReader{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if root.ID != 0 {
		t.Fatalf("root.ID = %d, want 0", root.ID)
	}
	if len(root.Targets) != 2 {
		t.Fatalf("len(root.Targets) = %d, want 2", len(root.Targets))
	}

	main, ok := root.TargetByName("main")
	if !ok {
		t.Fatalf("main target not found")
	}
	if len(main.Deps) != 1 || main.Deps[0].Name != "util" {
		t.Fatalf("main.Deps = %#v, want [util]", main.Deps)
	}
	if len(main.Sources) != 1 || main.Sources[0].Out != "m_0.o" {
		t.Fatalf("main.Sources = %#v, want out m_0.o", main.Sources)
	}
}

func TestCrossProjectDependencyDedup(t *testing.T) {
	dir := t.TempDir()
	writeGYP(t, dir, "lib.c", "")
	writeGYP(t, dir, "app.c", "")
	writeGYP(t, dir, "a.gyp", `{
		"targets": [
			{ "target_name": "lib", "type": "static_library", "sources": ["lib.c"], "dependencies": ["a.gyp:lib"] }
		]
	}`)
	rootPath := writeGYP(t, dir, "root.gyp", `{
		"targets": [
			{ "target_name": "app", "type": "executable", "sources": ["app.c"], "dependencies": ["a.gyp:lib"] }
		]
	}`)

	root, err := New(rootPath, OSFileReader{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := root.AllProjects()
	if len(all) != 2 {
		t.Fatalf("len(root.AllProjects()) = %d, want 2 (root + a.gyp)", len(all))
	}
	if all[0].ID != 0 || all[1].ID != 1 {
		t.Fatalf("project IDs = %d, %d, want 0 (root) and 1 (first child)", all[0].ID, all[1].ID)
	}

	app, _ := root.TargetByName("app")
	childFromApp := app.Deps[0].Project

	lib, _ := childFromApp.TargetByName("lib")
	childFromLib := lib.Deps[0].Project

	if childFromApp != childFromLib {
		t.Fatalf("expected a.gyp to be loaded once and cached, got distinct Project values")
	}
}

func TestForbiddenDependencyOnExecutable(t *testing.T) {
	dir := t.TempDir()
	writeGYP(t, dir, "e.c", "")
	writeGYP(t, dir, "m.c", "")
	path := writeGYP(t, dir, "a.gyp", `{
		"targets": [
			{ "target_name": "exe", "type": "executable", "sources": ["e.c"] },
			{ "target_name": "main", "type": "executable", "sources": ["m.c"], "dependencies": ["exe"] }
		]
	}`)

	_, err := New(path, OSFileReader{})
	if err == nil {
		t.Fatalf("expected error for dependency on executable target")
	}
}

func TestVariableDefaultAndOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeGYP(t, dir, "a.gyp", `{
		"variables": { "foo%": "x", "foo": "y" },
		"targets": [ { "target_name": "t", "sources": [] } ]
	}`)

	root, err := New(path, OSFileReader{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := root.Env.Get("foo")
	if !ok || v.Str != "y" {
		t.Fatalf("foo = %v (ok=%v), want \"y\"", v, ok)
	}
}

func TestVariableDefaultOnlyKeepsDefault(t *testing.T) {
	dir := t.TempDir()
	path := writeGYP(t, dir, "a.gyp", `{
		"variables": { "foo%": "x" },
		"targets": [ { "target_name": "t", "sources": [] } ]
	}`)

	root, err := New(path, OSFileReader{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := root.Env.Get("foo")
	if !ok || v.Str != "x" {
		t.Fatalf("foo = %v (ok=%v), want \"x\"", v, ok)
	}
}

func TestConditionTrueBranchMerges(t *testing.T) {
	dir := t.TempDir()
	writeGYP(t, dir, "base.c", "")
	writeGYP(t, dir, "linux.c", "")
	path := writeGYP(t, dir, "a.gyp", `{
		"variables": { "OS": "linux" },
		"targets": [
			{
				"target_name": "t",
				"sources": ["base.c"],
				"conditions": [
					["OS == \"linux\"", { "sources": ["linux.c"] }, { "sources": ["other.c"] }]
				]
			}
		]
	}`)

	root, err := New(path, OSFileReader{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target, ok := root.TargetByName("t")
	if !ok {
		t.Fatalf("target t not found")
	}

	var names []string
	for _, s := range target.Sources {
		names = append(names, filepath.Base(s.Path))
	}

	wantHas := map[string]bool{"base.c": false, "linux.c": false}
	for _, n := range names {
		if n == "other.c" {
			t.Fatalf("unexpected other.c in sources: %v", names)
		}
		if _, ok := wantHas[n]; ok {
			wantHas[n] = true
		}
	}
	for n, found := range wantHas {
		if !found {
			t.Fatalf("expected %s in sources, got %v", n, names)
		}
	}
}

func TestInterpolationInSourcePath(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "build"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeGYP(t, dir, "build/x.c", "")
	path := writeGYP(t, dir, "a.gyp", `{
		"variables": { "name": "build" },
		"targets": [ { "target_name": "t", "sources": ["<(name)/x.c"] } ]
	}`)

	root, err := New(path, OSFileReader{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target, _ := root.TargetByName("t")
	if len(target.Sources) != 1 {
		t.Fatalf("len(target.Sources) = %d, want 1", len(target.Sources))
	}
	if filepath.Base(filepath.Dir(target.Sources[0].Path)) != "build" {
		t.Fatalf("resolved source path = %q, want a 'build/' parent dir", target.Sources[0].Path)
	}
}

func TestSourceOutIsUniquePerTarget(t *testing.T) {
	dir := t.TempDir()
	writeGYP(t, dir, "a.c", "")
	writeGYP(t, dir, "b.c", "")
	writeGYP(t, dir, "c.cc", "")
	path := writeGYP(t, dir, "a.gyp", `{
		"targets": [ { "target_name": "t", "sources": ["a.c", "b.c", "c.cc"] } ]
	}`)

	root, err := New(path, OSFileReader{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target, _ := root.TargetByName("t")
	seen := map[string]bool{}
	for _, s := range target.Sources {
		if s.Out == "" {
			t.Fatalf("expected compilable source to have a non-empty Out: %#v", s)
		}
		if seen[s.Out] {
			t.Fatalf("duplicate Out value %q", s.Out)
		}
		seen[s.Out] = true
	}
}

func TestProjectIdentityUnderRealpath(t *testing.T) {
	dir := t.TempDir()
	writeGYP(t, dir, "a.gyp", `{ "targets": [ { "target_name": "lib", "type": "static_library", "sources": [] } ] }`)
	rootPath := writeGYP(t, dir, "root.gyp", `{
		"targets": [
			{ "target_name": "x", "type": "none", "dependencies": ["a.gyp:lib"] },
			{ "target_name": "y", "type": "none", "dependencies": ["a.gyp:lib"] }
		]
	}`)

	root, err := New(rootPath, OSFileReader{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	x, _ := root.TargetByName("x")
	y, _ := root.TargetByName("y")
	if x.Deps[0].Project != y.Deps[0].Project {
		t.Fatalf("expected both targets' dependency to resolve to the same cached Project")
	}
}
