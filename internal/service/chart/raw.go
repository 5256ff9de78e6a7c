package chart

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RawResult wraps the loosely typed output of a chart computation backend.
// Accessors never fail; a missing or mistyped node reads as absent.
type RawResult struct {
	root map[string]any
}

// NewRawResult wraps an already decoded result. A nil map is an empty result.
func NewRawResult(root map[string]any) RawResult {
	return RawResult{root: root}
}

// DecodeRawResult parses a JSON document. Anything that is not a JSON object is rejected.
func DecodeRawResult(data []byte) (RawResult, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return RawResult{}, fmt.Errorf("decode chart result: %w", err)
	}
	return RawResult{root: root}, nil
}

// Empty reports whether the result carries no data at all.
func (r RawResult) Empty() bool {
	return len(r.root) == 0
}

// Lookup walks nested objects along path.
func (r RawResult) Lookup(path ...string) (any, bool) {
	var node any = r.root
	for _, key := range path {
		obj, ok := asObject(node)
		if !ok {
			return nil, false
		}
		node, ok = obj[key]
		if !ok || node == nil {
			return nil, false
		}
	}
	return node, true
}

// String returns the scalar at path as received, or "" when absent or not a scalar.
func (r RawResult) String(path ...string) string {
	node, ok := r.Lookup(path...)
	if !ok {
		return ""
	}
	switch node.(type) {
	case map[string]any, map[any]any, []any:
		return ""
	}
	s, err := cast.ToStringE(node)
	if err != nil {
		return ""
	}
	return s
}

func asObject(node any) (map[string]any, bool) {
	switch v := node.(type) {
	case map[string]any:
		return v, v != nil
	case map[any]any:
		obj, err := cast.ToStringMapE(v)
		return obj, err == nil
	default:
		return nil, false
	}
}
