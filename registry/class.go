package registry

import (
	"fmt"
	"hash/crc32"
	"reflect"
	"sort"
)

// Class is the handle for one registered type. It carries everything the
// file layer and the schema catalog need: the persisted class name, the
// layout version, a layout checksum and the concrete Go type.
type Class struct {
	name     string
	title    string
	version  int
	checksum uint32
	rtype    reflect.Type // always a struct type
}

// Name returns the persisted class name.
func (c *Class) Name() string { return c.name }

// Title returns the human-readable class title.
func (c *Class) Title() string { return c.title }

// Version returns the class layout version.
func (c *Class) Version() int { return c.version }

// Checksum returns the layout checksum, stable across processes for the
// same member names and types.
func (c *Class) Checksum() uint32 { return c.checksum }

// GoType returns the underlying struct type.
func (c *Class) GoType() reflect.Type { return c.rtype }

// Instantiate returns a pointer to a zero value of the class.
func (c *Class) Instantiate() any {
	return reflect.New(c.rtype).Interface()
}

// BaseOffset returns the byte offset of base within c, resolved through
// embedded fields. Zero when base is c itself, negative when c does not
// embed base. A negative result means a decoded instance cannot be viewed
// as the requested base.
func (c *Class) BaseOffset(base *Class) int {
	if base == nil || base.rtype == c.rtype {
		return 0
	}
	return baseOffset(c.rtype, base.rtype, 0)
}

func baseOffset(t, base reflect.Type, off uintptr) int {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || f.Type.Kind() != reflect.Struct {
			continue
		}
		if f.Type == base {
			return int(off + f.Offset)
		}
		if d := baseOffset(f.Type, base, off+f.Offset); d >= 0 {
			return d
		}
	}
	return -1
}

func (c *Class) String() string {
	return fmt.Sprintf("%s;%d", c.name, c.version)
}

// computeChecksum digests the class name, version and every exported member
// as name:type pairs. Field order does not matter.
func computeChecksum(name string, version int, t reflect.Type) uint32 {
	lines := []string{fmt.Sprintf("%s;%d", name, version)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		lines = append(lines, f.Name+":"+f.Type.String())
	}
	sort.Strings(lines[1:])
	h := crc32.NewIEEE()
	for _, ln := range lines {
		h.Write([]byte(ln))
		h.Write([]byte{'\n'})
	}
	return h.Sum32()
}
