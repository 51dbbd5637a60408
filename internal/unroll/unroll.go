// Package unroll implements variable interpolation ("unrolling"):
// substrings of the form `<(name)` inside a string are replaced by the
// named variable's value, looked up through a varenv proto-map chain.
//
// Scanning is a three-state machine (looking for '<', then '(', then
// accumulating a name until ')') run in a single pass over the input
// with a strings.Builder.
package unroll

import (
	"strings"

	"github.com/cdeg/gypn/internal/pygerr"
	"github.com/cdeg/gypn/internal/varenv"
)

const opUnroll pygerr.Op = "unroll.Str"

type scanState int

const (
	stateLT scanState = iota
	stateParenOpen
	stateName
)

// Str scans s for `<(name)` tokens and replaces each with env's value for
// name (looked up through the proto-map chain). A lone '<' not followed
// by '(' is copied literally. An unresolved name is a GYP error naming
// the variable.
func Str(env *varenv.Env, s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	st := stateLT
	nameStart := 0

	for i := 0; i < len(s); i++ {
		ch := s[i]

		switch st {
		case stateLT:
			if ch == '<' {
				st = stateParenOpen
			} else {
				b.WriteByte(ch)
			}

		case stateParenOpen:
			if ch == '(' {
				st = stateName
				nameStart = i + 1
			} else {
				// Not a token after all: emit the literal '<' that was
				// held back, then reconsider ch from the top state.
				b.WriteByte('<')
				st = stateLT
				i--
			}

		case stateName:
			if ch != ')' {
				continue
			}
			name := s[nameStart:i]
			v, ok := env.Get(name)
			if !ok {
				return "", pygerr.E(opUnroll, pygerr.GYP,
					"variable `"+name+"` not found")
			}
			b.WriteString(v.String())
			st = stateLT
		}
	}

	if st != stateLT {
		// Input ended mid-token ("<(" or "<(name" with no closing ')'):
		// emit what was consumed as literal text rather than silently
		// dropping it.
		switch st {
		case stateParenOpen:
			b.WriteByte('<')
		case stateName:
			b.WriteString("<(")
			b.WriteString(s[nameStart:])
		}
	}

	return b.String(), nil
}

// Value specializes Str to varenv.Value: integers and booleans are
// passed through unchanged (cloned by value, which Go does for free);
// string values are unrolled.
func Value(env *varenv.Env, v varenv.Value) (varenv.Value, error) {
	if v.Kind != varenv.KindString {
		return v, nil
	}
	out, err := Str(env, v.Str)
	if err != nil {
		return varenv.Value{}, err
	}
	return varenv.Value{Kind: varenv.KindString, Str: out}, nil
}

// JSON walks a decoded JSON tree (map[string]any/[]any/string/...),
// replacing every string leaf with its unrolled equivalent and
// recursing into arrays. Callers apply it to the specific subtrees
// that should support interpolation rather than blindly unrolling
// every string anywhere in a document.
func JSON(env *varenv.Env, v any) (any, error) {
	switch val := v.(type) {
	case string:
		return Str(env, val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			u, err := JSON(env, item)
			if err != nil {
				return nil, err
			}
			out[i] = u
		}
		return out, nil
	default:
		return v, nil
	}
}
