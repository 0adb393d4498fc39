package jfile

import (
	"fmt"

	"github.com/agentic-research/rootjson/api"
	"github.com/agentic-research/rootjson/internal/jtree"
	"github.com/agentic-research/rootjson/registry"
)

// Key is one entry of a directory: metadata plus a single embedded object
// payload. The payload is kept as a JSON node and only decoded on request.
type Key struct {
	dir  *Directory
	node map[string]any

	keyID     int64
	name      string
	title     string
	cycle     int
	created   string
	className string
	subdir    bool
}

// newKey builds a key for a freshly stored instance. The cycle is assigned
// by the mother directory: first use of a name gets 1, repeats count up.
func (f *File) newKey(dir *Directory, v any, cl *registry.Class, name, title string) (*Key, error) {
	if cl == nil {
		if c, ok := f.reg.ClassOf(v); ok {
			cl = c
		}
	}
	if name == "" {
		if cl != nil {
			name = cl.Name()
		} else {
			name = "Noname"
		}
	}

	k := &Key{
		dir:     dir,
		keyID:   f.nextKeyID(),
		name:    name,
		title:   title,
		created: f.stamp(),
		node:    jtree.NewObject(),
	}
	k.cycle = dir.appendKey(k)
	k.storeAttributes()
	if err := k.storeObject(v, cl); err != nil {
		dir.removeKey(k)
		return nil, err
	}
	return k, nil
}

// newDirKey builds the key record that represents a subdirectory in its
// mother. The payload is a directory placeholder; its Keys array is filled
// in during flush.
func (f *File) newDirKey(dir *Directory, name, title string) *Key {
	k := &Key{
		dir:       dir,
		keyID:     f.nextKeyID(),
		name:      name,
		title:     title,
		created:   f.stamp(),
		className: api.DirectoryClass,
		subdir:    true,
		node:      jtree.NewObject(),
	}
	k.cycle = dir.appendKey(k)
	k.storeAttributes()
	k.node[api.FieldObject] = map[string]any{
		api.FieldTypename: api.DirectoryClass,
		api.FieldKeys:     []any{},
	}
	return k
}

// newKeyFromNode adopts an existing JSON node read from disk. The class
// name comes from the payload's discriminator; the cycle is taken verbatim.
func newKeyFromNode(dir *Directory, keyID int64, node map[string]any) *Key {
	k := &Key{dir: dir, keyID: keyID, node: node, cycle: 1}
	k.name, _ = jtree.GetString(node, api.FieldName)
	k.title, _ = jtree.GetString(node, api.FieldTitle)
	if c, ok := jtree.GetInt(node, api.FieldCycle); ok {
		k.cycle = int(c)
	}
	k.created, _ = jtree.GetString(node, api.FieldCreated)
	if obj, ok := jtree.GetMap(node, api.FieldObject); ok {
		k.className, _ = jtree.GetString(obj, api.FieldTypename)
	}
	return k
}

// Name returns the key name.
func (k *Key) Name() string { return k.name }

// Title returns the key title.
func (k *Key) Title() string { return k.title }

// Cycle returns the 1-based cycle number distinguishing same-named keys.
func (k *Key) Cycle() int { return k.cycle }

// KeyID returns the file-unique id of this key.
func (k *Key) KeyID() int64 { return k.keyID }

// ClassName returns the persisted class name of the payload.
func (k *Key) ClassName() string { return k.className }

// Created returns the key's creation timestamp string.
func (k *Key) Created() string { return k.created }

// IsSubdir reports whether the payload is a nested directory.
func (k *Key) IsSubdir() bool { return k.subdir }

// Mother returns the owning directory.
func (k *Key) Mother() *Directory { return k.dir }

// ReadObj decodes the payload into a live instance. For a subdirectory key
// it returns the attached *Directory. A missing payload or an unresolvable
// class yields a nil result with the error logged as a warning; siblings
// are unaffected.
func (k *Key) ReadObj() (any, error) {
	if k.subdir {
		if sub := k.dir.dirByID(k.keyID); sub != nil {
			return sub, nil
		}
		return nil, fmt.Errorf("key %s: %w", k.name, ErrNoPayload)
	}

	obj, ok := jtree.GetMap(k.node, api.FieldObject)
	if !ok {
		return nil, fmt.Errorf("key %s: %w", k.name, ErrNoPayload)
	}
	f := k.dir.file
	v, _, err := f.reg.Decode(obj)
	if err != nil {
		f.log.Warn("cannot decode key payload", "file", f.name, "key", k.name, "class", k.className, "err", err)
		return nil, err
	}
	return v, nil
}

// ReadObjAs decodes the payload and checks it can be viewed as expected:
// the decoded class must be expected itself or embed it as a base. An
// incompatible class destroys nothing and returns a nil result.
func (k *Key) ReadObjAs(expected *registry.Class) (any, error) {
	v, err := k.ReadObj()
	if err != nil || expected == nil {
		return v, err
	}
	cl, ok := k.dir.file.reg.Lookup(k.className)
	if !ok {
		return nil, fmt.Errorf("key %s: class %q: %w", k.name, k.className, registry.ErrUnknownClass)
	}
	if cl.BaseOffset(expected) < 0 {
		return nil, fmt.Errorf("key %s: %s as %s: %w", k.name, cl.Name(), expected.Name(), ErrIncompatibleClass)
	}
	return v, nil
}

// Read decodes the payload into a caller-provided instance. into must be a
// non-nil pointer to the payload's struct type.
func (k *Key) Read(into any) error {
	obj, ok := jtree.GetMap(k.node, api.FieldObject)
	if !ok {
		return fmt.Errorf("key %s: %w", k.name, ErrNoPayload)
	}
	_, err := k.dir.file.reg.DecodeInto(obj, into)
	return err
}

// UpdateAttributes rewrites the metadata fields of the key node, keeping
// the payload as it is.
func (k *Key) UpdateAttributes() {
	k.storeAttributes()
}

// UpdateObject re-encodes the payload in place, keeping the metadata.
func (k *Key) UpdateObject(v any) error {
	if !k.dir.file.writable {
		return ErrNotWritable
	}
	return k.storeObject(v, nil)
}

// Delete detaches the key from its mother and releases its node.
func (k *Key) Delete() {
	k.dir.removeKey(k)
	k.node = nil
}

// storeAttributes rebuilds the metadata fields in place so references to
// the node held by the mother stay valid.
func (k *Key) storeAttributes() {
	obj, hasObj := k.node[api.FieldObject]
	clear(k.node)
	k.node[api.FieldName] = k.name
	k.node[api.FieldCycle] = int64(k.cycle)
	k.node[api.FieldCreated] = k.created
	if k.title != "" {
		k.node[api.FieldTitle] = k.title
	}
	if hasObj {
		k.node[api.FieldObject] = obj
	}
}

func (k *Key) storeObject(v any, cl *registry.Class) error {
	f := k.dir.file
	if cl == nil {
		c, ok := f.reg.ClassOf(v)
		if !ok {
			return fmt.Errorf("key %s: %T: %w", k.name, v, registry.ErrUnknownClass)
		}
		cl = c
	}
	node, err := f.reg.Encode(v, cl)
	if err != nil {
		return fmt.Errorf("key %s: %w", k.name, err)
	}
	k.node[api.FieldObject] = node
	k.className = cl.Name()
	return nil
}
