// Package registry implements the class registry and the reflection bridge
// between live Go values and the JSON trees stored in a rootjson file.
//
// Types are registered once with a name and a layout version; the bridge
// then encodes instances into JSON object trees tagged with a "_typename"
// discriminator and decodes such trees back into live instances by
// dispatching on that tag.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/ohler55/ojg/alt"

	"github.com/agentic-research/rootjson/api"
)

// ErrUnknownClass is returned when a name or value does not resolve to a
// registered class.
var ErrUnknownClass = errors.New("unknown class")

// ErrNotStruct is returned when a non-struct value is registered or encoded.
var ErrNotStruct = errors.New("not a struct type")

// Registry maps class names to handles and owns the recomposer used for
// decoding. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Class
	byType map[reflect.Type]*Class
	order  []*Class
	rec    *alt.Recomposer

	// Class-name overrides, keyed by Go short type name. Only populated
	// when a class is registered under a name that differs from its type.
	goToName map[string]string
	nameToGo map[string]string
}

// Default is the process-wide registry, used by files unless one is
// injected explicitly.
var Default = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	rec, _ := alt.NewRecomposer(api.FieldTypename, nil)
	return &Registry{
		byName:   map[string]*Class{},
		byType:   map[reflect.Type]*Class{},
		goToName: map[string]string{},
		nameToGo: map[string]string{},
		rec:      rec,
	}
}

// ClassOption configures a registration.
type ClassOption func(*Class)

// WithClassName registers the class under an explicit persisted name
// instead of the Go type name.
func WithClassName(name string) ClassOption {
	return func(c *Class) { c.name = name }
}

// WithVersion sets the class layout version. Defaults to 1.
func WithVersion(version int) ClassOption {
	return func(c *Class) { c.version = version }
}

// WithClassTitle sets the human-readable class title.
func WithClassTitle(title string) ClassOption {
	return func(c *Class) { c.title = title }
}

// Register adds the type of proto to the registry and returns its handle.
// proto may be a struct value or a pointer to one. Registering the same
// type again returns the existing handle. Named struct types reachable
// through exported members are registered along with it, so the schema
// catalog stays complete for nested payloads.
func (r *Registry) Register(proto any, opts ...ClassOption) (*Class, error) {
	t := reflect.TypeOf(proto)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("register %T: %w", proto, ErrNotStruct)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(t, opts)
}

var timeType = reflect.TypeOf(time.Time{})

func (r *Registry) registerLocked(t reflect.Type, opts []ClassOption) (*Class, error) {
	if c, ok := r.byType[t]; ok {
		return c, nil
	}

	c := &Class{name: t.Name(), version: 1, rtype: t}
	for _, opt := range opts {
		opt(c)
	}
	if _, dup := r.byName[c.name]; dup {
		return nil, fmt.Errorf("register %s: name already taken", c.name)
	}
	c.checksum = computeChecksum(c.name, c.version, t)

	if err := r.rec.RegisterComposer(reflect.New(t).Interface(), nil); err != nil {
		return nil, fmt.Errorf("register %s: %w", c.name, err)
	}
	if c.name != t.Name() {
		r.goToName[t.Name()] = c.name
		r.nameToGo[c.name] = t.Name()
	}

	r.byName[c.name] = c
	r.byType[t] = c
	r.order = append(r.order, c)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() && !f.Anonymous {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer || ft.Kind() == reflect.Slice ||
			ft.Kind() == reflect.Array || ft.Kind() == reflect.Map {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft.Name() != "" && ft != timeType {
			if _, err := r.registerLocked(ft, nil); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// MustRegister is Register that panics on error, for package init blocks.
func (r *Registry) MustRegister(proto any, opts ...ClassOption) *Class {
	c, err := r.Register(proto, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup resolves a persisted class name to its handle.
func (r *Registry) Lookup(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// ClassOf resolves the dynamic type of v to its handle.
func (r *Registry) ClassOf(v any) (*Class, bool) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byType[t]
	return c, ok
}

// Classes returns all registered classes in registration order.
func (r *Registry) Classes() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Class, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) hasOverrides() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.goToName) > 0
}
