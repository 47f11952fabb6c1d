package engine

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/offerhub/verdict/pkg/rules/ast"
)

// compiledPattern caches a regex compilation result, success or failure, so
// a bad pattern is reported once per evaluation instead of recompiled.
type compiledPattern struct {
	re  *regexp.Regexp
	err error
}

// applyOperator evaluates one predicate. found reports whether the field
// resolved at all; existence operators consume it directly. A problem
// (unknown operator, type mismatch on a regex, invalid pattern) records a
// diagnostic and evaluates to false; the operator library never fails.
func (e *Engine) applyOperator(op ast.Operator, field string, actual any, found bool, expected any, sink *diagSink) bool {
	switch op {
	case ast.OperatorExists:
		return found
	case ast.OperatorNotExists:
		return !found
	case ast.OperatorIsNull:
		return found && actual == nil
	case ast.OperatorIsNotNull:
		return found && actual != nil
	case ast.OperatorIsEmpty:
		return isEmpty(actual)
	case ast.OperatorIsNotEmpty:
		return found && !isEmpty(actual)

	case ast.OperatorEquals:
		return valuesEqual(actual, expected)
	case ast.OperatorNotEquals:
		return !valuesEqual(actual, expected)

	case ast.OperatorGreaterThan, ast.OperatorGreaterThanOrEqual,
		ast.OperatorLessThan, ast.OperatorLessThanOrEqual:
		return compareNumeric(op, actual, expected)

	case ast.OperatorContains:
		return containsValue(actual, expected)
	case ast.OperatorNotContains:
		return !containsValue(actual, expected)

	case ast.OperatorStartsWith:
		a, aok := asText(actual)
		b, bok := asText(expected)
		return aok && bok && strings.HasPrefix(a, b)
	case ast.OperatorEndsWith:
		a, aok := asText(actual)
		b, bok := asText(expected)
		return aok && bok && strings.HasSuffix(a, b)

	case ast.OperatorRegexMatch:
		return e.regexMatch(field, actual, expected, sink)

	case ast.OperatorInList:
		return listHas(expected, actual)
	case ast.OperatorNotInList:
		return !listHas(expected, actual)

	default:
		sink.addField(DiagUnknownOperator, field, "unknown operator %q", op)
		return false
	}
}

// regexMatch compiles the pattern through the engine's cache and matches the
// field value. Invalid patterns are a configuration-time error; at
// evaluation time they degrade to a diagnostic and no match.
func (e *Engine) regexMatch(field string, actual, expected any, sink *diagSink) bool {
	pattern, ok := expected.(string)
	if !ok {
		sink.addField(DiagTypeMismatch, field, "regex_match requires a string pattern, got %T", expected)
		return false
	}

	compiled := e.compilePattern(pattern)
	if compiled.err != nil {
		sink.addField(DiagInvalidRegex, field, "invalid pattern %q: %v", pattern, compiled.err)
		return false
	}

	text, ok := asText(actual)
	if !ok {
		return false
	}
	return compiled.re.MatchString(text)
}

// compilePattern returns the cached compilation for pattern, compiling on
// first use. The cache is keyed by pattern string and shared by every
// evaluation on this engine.
func (e *Engine) compilePattern(pattern string) *compiledPattern {
	e.regexMu.RLock()
	compiled, ok := e.regexes[pattern]
	e.regexMu.RUnlock()
	if ok {
		return compiled
	}

	re, err := regexp.Compile(pattern)
	compiled = &compiledPattern{re: re, err: err}

	e.regexMu.Lock()
	e.regexes[pattern] = compiled
	e.regexMu.Unlock()
	return compiled
}

// CheckPattern reports whether pattern compiles, priming the cache either
// way. The validator calls it so bad patterns block activation instead of
// surfacing per evaluation.
func (e *Engine) CheckPattern(pattern string) error {
	return e.compilePattern(pattern).err
}

// valuesEqual compares two values, preferring numeric comparison so that
// int, float64, and numeric-looking strings compare by magnitude. Everything
// else falls back to deep equality.
func valuesEqual(actual, expected any) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}
	if a, aok := asNumber(actual); aok {
		if b, bok := asNumber(expected); bok {
			return a == b
		}
	}
	return reflect.DeepEqual(actual, expected)
}

// compareNumeric applies an ordered comparison. Operands that cannot be
// coerced to numbers make the comparator false, never an error.
func compareNumeric(op ast.Operator, actual, expected any) bool {
	a, aok := asNumber(actual)
	b, bok := asNumber(expected)
	if !aok || !bok {
		return false
	}
	switch op {
	case ast.OperatorGreaterThan:
		return a > b
	case ast.OperatorGreaterThanOrEqual:
		return a >= b
	case ast.OperatorLessThan:
		return a < b
	case ast.OperatorLessThanOrEqual:
		return a <= b
	}
	return false
}

// containsValue implements the contains operator. On strings it is a
// substring test. When both operands are arrays it is a superset test: every
// element of the expected array must appear in the actual array. A scalar
// expected against an array actual degrades to single-value membership.
func containsValue(actual, expected any) bool {
	if a, ok := actual.(string); ok {
		b, bok := asText(expected)
		return bok && strings.Contains(a, b)
	}

	items, ok := asSlice(actual)
	if !ok {
		return false
	}
	wanted, ok := asSlice(expected)
	if !ok {
		return sliceHas(items, expected)
	}
	for _, w := range wanted {
		if !sliceHas(items, w) {
			return false
		}
	}
	return true
}

// listHas implements in_list: the expected list contains the actual value.
func listHas(list, value any) bool {
	items, ok := asSlice(list)
	if !ok {
		return false
	}
	return sliceHas(items, value)
}

func sliceHas(items []any, value any) bool {
	for _, item := range items {
		if valuesEqual(item, value) {
			return true
		}
	}
	return false
}

// asNumber coerces numeric types and numeric-looking strings to float64.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// asText returns the string form of a value for string operators. Numbers
// format with their natural representation; composite values do not convert.
func asText(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	}
	if n, ok := asNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

// asSlice normalizes a value to []any without reflection where possible.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	case []float64:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// isEmpty reports whether a value is nil, an empty string, or a zero-length
// collection.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch s := v.(type) {
	case string:
		return s == ""
	case []any:
		return len(s) == 0
	case map[string]any:
		return len(s) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}
