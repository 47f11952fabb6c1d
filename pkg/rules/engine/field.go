package engine

import "strings"

// Resolve looks up a dot-separated path in the context. It returns the value
// and whether the full path was present. Resolution fails soft at the first
// segment whose parent is not an object or whose key is absent; it never
// panics.
//
// Arrays are returned as whole values only. There is no index traversal; a
// path segment applied to an array resolves to missing.
func Resolve(ctx Context, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = map[string]any(ctx)
	for _, segment := range strings.Split(path, ".") {
		obj, ok := asObject(current)
		if !ok {
			return nil, false
		}
		value, ok := obj[segment]
		if !ok {
			return nil, false
		}
		current = value
	}
	return current, true
}

// asObject normalizes the map shapes that JSON and YAML decoding produce.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Context:
		return m, true
	case map[any]any:
		// yaml.v2-style decoding; convert keys that are strings.
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				continue
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}
