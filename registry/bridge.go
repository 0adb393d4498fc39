package registry

import (
	"fmt"
	"reflect"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/alt"

	"github.com/agentic-research/rootjson/api"
)

// decomposeOptions turns struct values into map trees. CreateKey makes ojg
// stamp every struct node with its type name, which becomes the on-disk
// "_typename" discriminator.
var decomposeOptions = ojg.Options{
	CreateKey: api.FieldTypename,
	UseTags:   true,
	OmitNil:   true,
}

// Encode converts an instance into a JSON object tree tagged with the class
// discriminator. cl may be nil, in which case the dynamic type of v must be
// registered.
func (r *Registry) Encode(v any, cl *Class) (map[string]any, error) {
	if cl == nil {
		var ok bool
		if cl, ok = r.ClassOf(v); !ok {
			return nil, fmt.Errorf("encode %T: %w", v, ErrUnknownClass)
		}
	}
	node, ok := alt.Decompose(v, &decomposeOptions).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("encode %T: %w", v, ErrNotStruct)
	}
	if r.hasOverrides() {
		r.renameTypes(node, r.goToName)
	}
	node[api.FieldTypename] = cl.Name()
	return node, nil
}

// Decode converts a JSON object tree back into a live instance, dispatching
// on the embedded discriminator. Returns the instance (a pointer to the
// registered struct type) and the resolved class.
func (r *Registry) Decode(node any) (any, *Class, error) {
	name, ok := typenameOf(node)
	if !ok {
		return nil, nil, fmt.Errorf("decode: missing %s: %w", api.FieldTypename, ErrUnknownClass)
	}
	cl, ok := r.Lookup(name)
	if !ok {
		return nil, nil, fmt.Errorf("decode %q: %w", name, ErrUnknownClass)
	}
	if r.hasOverrides() {
		// The recomposer dispatches on Go type names; rewrite a copy so the
		// stored tree stays untouched.
		node = alt.Dup(node)
		r.renameTypes(node, r.nameToGo)
	}
	v, err := r.rec.Recompose(node)
	if err != nil {
		return nil, cl, fmt.Errorf("decode %q: %w", name, err)
	}
	return v, cl, nil
}

// DecodeInto decodes the tree into a caller-provided instance. into must be
// a non-nil pointer to a struct of the resolved class (or one embedding it).
func (r *Registry) DecodeInto(node any, into any) (*Class, error) {
	v, cl, err := r.Decode(node)
	if err != nil {
		return cl, err
	}
	dst := reflect.ValueOf(into)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return cl, fmt.Errorf("decode into %T: target must be a non-nil pointer", into)
	}
	src := reflect.ValueOf(v).Elem()
	if dst.Elem().Type() != src.Type() {
		return cl, fmt.Errorf("decode into %T: class is %s", into, cl.Name())
	}
	dst.Elem().Set(src)
	return cl, nil
}

func typenameOf(node any) (string, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[api.FieldTypename].(string)
	return s, ok
}

// renameTypes rewrites every discriminator in the tree through the given
// translation table. Only needed when classes were registered under names
// that differ from their Go type names.
func (r *Registry) renameTypes(node any, table map[string]string) {
	switch n := node.(type) {
	case map[string]any:
		if s, ok := n[api.FieldTypename].(string); ok {
			if repl, ok := table[s]; ok {
				n[api.FieldTypename] = repl
			}
		}
		for _, v := range n {
			r.renameTypes(v, table)
		}
	case []any:
		for _, v := range n {
			r.renameTypes(v, table)
		}
	}
}
