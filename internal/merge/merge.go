// Package merge implements the JSON merge algebra behind applying
// condition branches and default/override behavior to a loaded
// project's JSON tree.
//
// Trees are represented the way encoding/json decodes them into `any`:
// map[string]any for objects, []any for arrays, plus string/float64/
// bool/nil. Object merging is keyed by name, not position, so map key
// order is not observable through any merge rule; array order is, and
// []any preserves it natively.
package merge

// Mode selects how two JSON subtrees combine.
type Mode int

const (
	// Auto is the default structural merge: objects recurse, arrays
	// append, primitives overwrite when source is non-null.
	Auto Mode = iota
	// Strict skips suffix classification entirely.
	Strict
	// Replace: destination array is replaced by source.
	Replace
	// Cond: applied only if destination is absent/empty.
	Cond
	// Prepend: source array items precede existing items.
	Prepend
	// Exclude: destination array minus source-array entries.
	Exclude
)

// Classify inspects key's final character to select a merge Mode,
// stripping the suffix from the returned name. Keys with no recognized
// suffix classify as Auto.
func Classify(key string) (Mode, string) {
	if key == "" {
		return Auto, key
	}
	last := key[len(key)-1]
	switch last {
	case '=':
		return Replace, key[:len(key)-1]
	case '?':
		return Cond, key[:len(key)-1]
	case '+':
		return Prepend, key[:len(key)-1]
	case '!':
		return Exclude, key[:len(key)-1]
	default:
		return Auto, key
	}
}

// Merge combines src into dst under mode and returns the resulting
// value. dst/src are never mutated in place; Merge always returns a new
// value (or dst itself when no-op applies), so callers assign the result
// back explicitly. Merged-in subtrees are deep clones, never shared
// references into src.
func Merge(dst, src any, mode Mode) any {
	if src == nil {
		return dst
	}

	dstObj, dstIsObj := dst.(map[string]any)
	srcObj, srcIsObj := src.(map[string]any)
	if dstIsObj && srcIsObj {
		return mergeObjects(dstObj, srcObj, mode)
	}

	dstArr, dstIsArr := dst.([]any)
	srcArr, srcIsArr := src.([]any)
	if dstIsArr && srcIsArr {
		return mergeArrays(dstArr, srcArr, mode)
	}

	// Kind mismatch between non-nil dst and src: silent no-op.
	if dst != nil && (dstIsObj != srcIsObj || dstIsArr != srcIsArr) {
		return dst
	}

	// Destination is not object/array (or absent) and source is non-null:
	// destination becomes a deep clone of source.
	return CloneUnder(mode, src)
}

func mergeObjects(dst, src map[string]any, mode Mode) any {
	out := make(map[string]any, len(dst))
	for k, v := range dst {
		out[k] = v
	}

	for key, srcVal := range src {
		keyMode, name := mode, key
		if mode != Strict {
			keyMode, name = Classify(key)
		}

		if existing, ok := out[name]; ok {
			out[name] = Merge(existing, srcVal, keyMode)
		} else {
			out[name] = CloneUnder(keyMode, srcVal)
		}
	}

	return out
}

func mergeArrays(dst, src []any, mode Mode) any {
	switch mode {
	case Replace:
		return cloneArray(src, Auto)
	case Prepend:
		out := make([]any, 0, len(src)+len(dst))
		out = append(out, cloneArray(src, Auto)...)
		out = append(out, dst...)
		return out
	case Exclude:
		return excludeArray(dst, src)
	case Cond:
		if len(dst) > 0 {
			return dst
		}
		return cloneArray(src, Auto)
	default: // Auto, Strict
		out := make([]any, 0, len(dst)+len(src))
		out = append(out, dst...)
		out = append(out, cloneArray(src, Auto)...)
		return out
	}
}

// excludeArray builds a fresh array containing every string in dst whose
// value does not appear in src (string-equality only; non-string dst
// entries are left out of the result).
func excludeArray(dst, src []any) []any {
	excluded := make(map[string]bool, len(src))
	for _, s := range src {
		if str, ok := s.(string); ok {
			excluded[str] = true
		}
	}

	out := make([]any, 0, len(dst))
	for j := range dst {
		str, ok := dst[j].(string)
		if !ok || excluded[str] {
			continue
		}
		out = append(out, dst[j])
	}
	return out
}

func cloneArray(src []any, mode Mode) []any {
	out := make([]any, len(src))
	for i, v := range src {
		out[i] = CloneUnder(mode, v)
	}
	return out
}

// CloneUnder deep-copies v. In non-strict modes this is produced by
// allocating an empty container and re-running Merge from the empty
// destination, which ensures suffix-bearing keys in nested copies are
// rewritten (re-classified) rather than carried over literally.
func CloneUnder(mode Mode, v any) any {
	switch val := v.(type) {
	case map[string]any:
		if mode == Strict {
			out := make(map[string]any, len(val))
			for k, vv := range val {
				out[k] = CloneUnder(mode, vv)
			}
			return out
		}
		return mergeObjects(map[string]any{}, val, mode)
	case []any:
		return cloneArray(val, mode)
	default:
		// Primitives (string, float64, bool, nil) are copied by value.
		return val
	}
}
