// Package jtree holds the in-memory JSON tree that mirrors an on-disk
// rootjson document. Trees are plain Go values as produced by ojg: objects
// are map[string]any, arrays are []any, numbers are int64 or float64.
//
// The tree is owned by exactly one file coordinator, mutated freely in
// memory and never persisted partially: it is parsed whole and written whole.
package jtree

import (
	"fmt"
	"io"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
)

// writeOptions pins the serialized form: indent 3 like the original format,
// sorted object keys so reproducible files are byte-identical.
var writeOptions = ojg.Options{Indent: 3, Sort: true}

// NewObject returns an empty object node.
func NewObject() map[string]any {
	return map[string]any{}
}

// Parse parses a whole JSON document. The error is the raw ojg parse error;
// the caller decides how to classify it.
func Parse(data []byte) (any, error) {
	return oj.Parse(data)
}

// WriteTo serializes the tree to w, pretty-printed.
func WriteTo(w io.Writer, v any) error {
	if err := oj.Write(w, v, &writeOptions); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	// Trailing newline, matching the original writer.
	_, err := w.Write([]byte{'\n'})
	return err
}

// String serializes the tree to a pretty-printed string. Used by the CLI.
func String(v any) string {
	return oj.JSON(v, &writeOptions)
}

// GetString returns the string field key of an object node.
func GetString(node any, key string) (string, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[key].(string)
	return s, ok
}

// GetInt returns the integer field key of an object node. JSON numbers
// parsed by ojg arrive as int64; whole float64 values are accepted too.
func GetInt(node any, key string) (int64, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return 0, false
	}
	switch n := m[key].(type) {
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

// GetSlice returns the array field key of an object node.
func GetSlice(node any, key string) ([]any, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return nil, false
	}
	s, ok := m[key].([]any)
	return s, ok
}

// GetMap returns the object field key of an object node.
func GetMap(node any, key string) (map[string]any, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return nil, false
	}
	o, ok := m[key].(map[string]any)
	return o, ok
}
