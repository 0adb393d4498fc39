package streamer

import (
	"hash/crc32"
	"reflect"

	"github.com/agentic-research/rootjson/api"
	"github.com/agentic-research/rootjson/registry"
)

// Member type codes persisted in the "type" field. The values follow the
// original format so external readers can share one decoding table.
const (
	TypeChar    = 1
	TypeShort   = 2
	TypeInt     = 3
	TypeFloat   = 5
	TypeDouble  = 8
	TypeUChar   = 11
	TypeUShort  = 12
	TypeUInt    = 13
	TypeLong64  = 16
	TypeULong64 = 17
	TypeBool    = 18
	TypeObject  = 61
	TypeObjectP = 64
	TypeString  = 65
	TypeSTL     = 300
	TypeSTLStr  = 365
)

// Container codes persisted in the "STLtype" field.
const (
	STLVector = 1
	STLMap    = 4
)

func basicCode(k reflect.Kind) (int, bool) {
	switch k {
	case reflect.Bool:
		return TypeBool, true
	case reflect.Int8:
		return TypeChar, true
	case reflect.Int16:
		return TypeShort, true
	case reflect.Int32, reflect.Int:
		return TypeInt, true
	case reflect.Int64:
		return TypeLong64, true
	case reflect.Uint8:
		return TypeUChar, true
	case reflect.Uint16:
		return TypeUShort, true
	case reflect.Uint32, reflect.Uint:
		return TypeUInt, true
	case reflect.Uint64:
		return TypeULong64, true
	case reflect.Float32:
		return TypeFloat, true
	case reflect.Float64:
		return TypeDouble, true
	}
	return 0, false
}

// InfoFor derives the catalog entry for a registered class by walking its
// struct layout. Elements appear in declaration order. r resolves the
// versions and checksums of embedded base classes.
func InfoFor(r *registry.Registry, cl *registry.Class) *Info {
	si := &Info{
		Name:         cl.Name(),
		Title:        cl.Title(),
		ClassVersion: cl.Version(),
		Checksum:     cl.Checksum(),
	}
	t := cl.GoType()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() && !f.Anonymous {
			continue
		}
		si.Elements = append(si.Elements, elementFor(r, f))
	}
	return si
}

func elementFor(r *registry.Registry, f reflect.StructField) *Element {
	e := &Element{
		Kind:     KindMember,
		Name:     f.Name,
		Version:  1,
		Size:     int(f.Type.Size()),
		TypeName: f.Type.String(),
	}
	if tag, ok := f.Tag.Lookup("title"); ok {
		e.Title = tag
	}

	ft := f.Type
	switch {
	case f.Anonymous && ft.Kind() == reflect.Struct:
		e.Kind = KindBase
		e.Name = ft.Name()
		e.Type = TypeObject
		e.BaseVersion = 1
		if base, ok := r.Lookup(ft.Name()); ok {
			e.BaseVersion = base.Version()
			e.BaseChecksum = base.Checksum()
		} else {
			e.BaseChecksum = crc32.ChecksumIEEE([]byte(ft.String()))
		}

	case ft.Kind() == reflect.String:
		e.Kind = KindSTLString
		e.Type = TypeSTLStr
		e.STLType = STLVector
		e.CType = TypeChar

	case ft.Kind() == reflect.Slice:
		e.Kind = KindSTL
		e.Type = TypeSTL
		e.STLType = STLVector
		if c, ok := basicCode(ft.Elem().Kind()); ok {
			e.CType = c
		} else {
			e.CType = TypeObject
		}

	case ft.Kind() == reflect.Map:
		e.Kind = KindSTL
		e.Type = TypeSTL
		e.STLType = STLMap
		if c, ok := basicCode(ft.Elem().Kind()); ok {
			e.CType = c
		} else {
			e.CType = TypeObject
		}

	case ft.Kind() == reflect.Array:
		// Unwrap nested arrays into per-dimension bounds.
		elem := ft
		for elem.Kind() == reflect.Array {
			e.ArrayDim = append(e.ArrayDim, elem.Len())
			elem = elem.Elem()
		}
		if c, ok := basicCode(elem.Kind()); ok {
			e.Type = c
		} else {
			e.Type = TypeObject
		}

	case ft.Kind() == reflect.Pointer:
		e.Kind = KindMember
		e.Type = TypeObjectP

	case ft.Kind() == reflect.Struct:
		e.Type = TypeObject

	default:
		if c, ok := basicCode(ft.Kind()); ok {
			e.Type = c
		}
	}
	return e
}

// DirectoryInfo is the built-in catalog entry for subdirectory payloads, so
// that files containing nested directories stay fully self-describing.
func DirectoryInfo() *Info {
	return &Info{
		Name:         api.DirectoryClass,
		Title:        "nested directory",
		ClassVersion: 1,
		Checksum:     crc32.ChecksumIEEE([]byte(api.DirectoryClass)),
		Elements: []*Element{
			{
				Kind:     KindSTL,
				Name:     api.FieldKeys,
				Version:  1,
				Type:     TypeSTL,
				TypeName: "[]Key",
				STLType:  STLVector,
				CType:    TypeObject,
			},
		},
	}
}
