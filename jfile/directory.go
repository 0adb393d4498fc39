package jfile

import (
	"fmt"

	"github.com/agentic-research/rootjson/api"
	"github.com/agentic-research/rootjson/internal/jtree"
)

// Directory is an ordered, name-indexed collection of key records. A
// directory other than the root is itself represented by a key record in
// its parent; seekDir holds that key's id, which is how the two sides find
// each other without owning back-pointers.
type Directory struct {
	file    *File
	parent  *Directory
	name    string
	title   string
	seekDir int64

	keys []*Key
	dirs []*Directory
}

// Name returns the directory name.
func (d *Directory) Name() string { return d.name }

// Title returns the directory title.
func (d *Directory) Title() string { return d.title }

// Parent returns the mother directory, nil for the root.
func (d *Directory) Parent() *Directory { return d.parent }

// SeekDir returns the id of the key record representing this directory in
// its parent; 0 for the root.
func (d *Directory) SeekDir() int64 { return d.seekDir }

// File returns the owning file.
func (d *Directory) File() *File { return d.file }

// Keys returns the key records in insertion order.
func (d *Directory) Keys() []*Key {
	out := make([]*Key, len(d.keys))
	copy(out, d.keys)
	return out
}

// Dirs returns the attached subdirectories.
func (d *Directory) Dirs() []*Directory {
	out := make([]*Directory, len(d.dirs))
	copy(out, d.dirs)
	return out
}

// Mkdir creates a nested directory: a key record with a directory payload
// is appended here and the new directory's seekDir points back at it.
func (d *Directory) Mkdir(name, title string) (*Directory, error) {
	f := d.file
	if !f.IsOpen() {
		return nil, ErrClosed
	}
	if !f.writable {
		return nil, ErrNotWritable
	}
	if name == "" {
		return nil, fmt.Errorf("mkdir: %w", ErrNoName)
	}

	key := f.newDirKey(d, name, title)
	sub := &Directory{
		file:    f,
		parent:  d,
		name:    name,
		title:   title,
		seekDir: key.KeyID(),
	}
	d.dirs = append(d.dirs, sub)
	return sub, nil
}

// Key returns the newest-cycle key record stored under name.
func (d *Directory) Key(name string) (*Key, bool) {
	var best *Key
	for _, k := range d.keys {
		if k.name == name && (best == nil || k.cycle > best.cycle) {
			best = k
		}
	}
	return best, best != nil
}

// KeyWithCycle returns the key record with the exact (name, cycle) pair.
func (d *Directory) KeyWithCycle(name string, cycle int) (*Key, bool) {
	for _, k := range d.keys {
		if k.name == name && k.cycle == cycle {
			return k, true
		}
	}
	return nil, false
}

// Dir returns the attached subdirectory called name.
func (d *Directory) Dir(name string) (*Directory, bool) {
	for _, sub := range d.dirs {
		if sub.name == name {
			return sub, true
		}
	}
	return nil, false
}

// Get decodes the newest-cycle object stored under name.
func (d *Directory) Get(name string) (any, error) {
	k, ok := d.Key(name)
	if !ok {
		return nil, fmt.Errorf("%s: no key %q", d.name, name)
	}
	return k.ReadObj()
}

// GetCycle decodes the object stored under the exact (name, cycle) pair.
func (d *Directory) GetCycle(name string, cycle int) (any, error) {
	k, ok := d.KeyWithCycle(name, cycle)
	if !ok {
		return nil, fmt.Errorf("%s: no key %q cycle %d", d.name, name, cycle)
	}
	return k.ReadObj()
}

// ReadKeys rebuilds the directory's key records from its JSON node and
// returns how many were materialized. For the root that node is the
// document itself; for a subdirectory it is its key's payload.
func (d *Directory) ReadKeys() (int, error) {
	f := d.file
	if !f.IsOpen() {
		return 0, ErrClosed
	}
	node := f.doc
	if d.parent != nil {
		key := d.parent.findDirKey(d)
		if key == nil {
			return 0, nil
		}
		obj, ok := jtree.GetMap(key.node, api.FieldObject)
		if !ok {
			return 0, nil
		}
		node = obj
	}
	d.keys = d.keys[:0]
	d.dirs = d.dirs[:0]
	return f.readKeysList(d, node), nil
}

// WriteKeys asks every key record to refresh its metadata fields.
func (d *Directory) WriteKeys() {
	for _, k := range d.keys {
		k.UpdateAttributes()
	}
}

// WriteHeader refreshes the payload of the key record representing this
// directory from the live directory state. A no-op for the root, whose
// header lives in the document itself.
func (d *Directory) WriteHeader() {
	if d.parent == nil {
		return
	}
	key := d.parent.findDirKey(d)
	if key == nil {
		return
	}
	key.name = d.name
	key.title = d.title
	key.storeAttributes()
	if _, ok := jtree.GetMap(key.node, api.FieldObject); !ok {
		key.node[api.FieldObject] = map[string]any{
			api.FieldTypename: api.DirectoryClass,
			api.FieldKeys:     []any{},
		}
	}
}

// findDirKey returns the key record in d that represents sub, matching
// seekDir against key ids.
func (d *Directory) findDirKey(sub *Directory) *Key {
	for _, k := range d.keys {
		if k.keyID == sub.seekDir {
			return k
		}
	}
	return nil
}

// dirByID returns the attached subdirectory whose seekDir equals keyID.
func (d *Directory) dirByID(keyID int64) *Directory {
	for _, sub := range d.dirs {
		if sub.seekDir == keyID {
			return sub
		}
	}
	return nil
}

// appendKey adds k and returns its cycle: one past the highest cycle of any
// key already stored under the same name.
func (d *Directory) appendKey(k *Key) int {
	cycle := 0
	for _, other := range d.keys {
		if other.name == k.name && other.cycle > cycle {
			cycle = other.cycle
		}
	}
	d.keys = append(d.keys, k)
	return cycle + 1
}

func (d *Directory) removeKey(k *Key) {
	for i, other := range d.keys {
		if other == k {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			return
		}
	}
}

// release tears the tree down leaves-first.
func (d *Directory) release() {
	for _, sub := range d.dirs {
		sub.release()
	}
	for _, k := range d.keys {
		k.node = nil
	}
	d.keys = nil
	d.dirs = nil
}
