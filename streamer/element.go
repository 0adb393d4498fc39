// Package streamer implements the schema catalog persisted under the
// "StreamerInfos" field of a rootjson file. The catalog describes the layout
// of every class referenced by stored payloads, so that a reader without the
// writing process's registry can still interpret them, and so that a later
// version of the same runtime can apply schema evolution.
package streamer

import (
	"errors"
	"fmt"

	"github.com/agentic-research/rootjson/internal/jtree"
)

// Kind discriminates the closed set of element variants. It is persisted as
// the "streamerelement" tag of each element node.
type Kind int

const (
	// KindMember is a plain data member.
	KindMember Kind = iota
	// KindBase describes an inherited (embedded) base class.
	KindBase
	// KindBasicPointer describes a counted pointer to basic values.
	KindBasicPointer
	// KindLoop describes a counted loop over object members.
	KindLoop
	// KindSTL describes a container member.
	KindSTL
	// KindSTLString describes a string member.
	KindSTLString
)

var kindNames = map[Kind]string{
	KindMember:       "Member",
	KindBase:         "Base",
	KindBasicPointer: "BasicPointer",
	KindLoop:         "Loop",
	KindSTL:          "STL",
	KindSTLString:    "STLstring",
}

var kindValues = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, s := range kindNames {
		m[s] = k
	}
	return m
}()

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindFromString resolves a persisted kind tag.
func KindFromString(s string) (Kind, bool) {
	k, ok := kindValues[s]
	return k, ok
}

// ErrBadElement is returned for element nodes that cannot be interpreted.
var ErrBadElement = errors.New("bad streamer element")

// Element describes one data member of a class. Kind selects which of the
// extra fields are meaningful.
type Element struct {
	Kind     Kind
	Name     string
	Title    string
	Version  int
	Type     int
	TypeName string
	Size     int

	// ArrayDim holds per-dimension bounds for fixed-size array members.
	// Written and read as a single "arraydim" JSON array.
	ArrayDim []int

	// KindBase extras.
	BaseVersion  int
	BaseChecksum uint32

	// KindBasicPointer and KindLoop extras.
	CountVersion int
	CountName    string
	CountClass   string

	// KindSTL and KindSTLString extras.
	STLType int
	CType   int
}

// toNode serializes the element, emitting only the extras its kind defines.
func (e *Element) toNode() map[string]any {
	node := map[string]any{
		"streamerelement": e.Kind.String(),
		"name":            e.Name,
		"v":               int64(e.Version),
		"type":            int64(e.Type),
		"size":            int64(e.Size),
	}
	if e.Title != "" {
		node["title"] = e.Title
	}
	if e.TypeName != "" {
		node["typename"] = e.TypeName
	}
	if len(e.ArrayDim) > 0 {
		dims := make([]any, len(e.ArrayDim))
		for i, d := range e.ArrayDim {
			dims[i] = int64(d)
		}
		node["arraydim"] = dims
	}
	switch e.Kind {
	case KindBase:
		node["baseversion"] = int64(e.BaseVersion)
		node["basechecksum"] = int64(e.BaseChecksum)
	case KindBasicPointer, KindLoop:
		node["countversion"] = int64(e.CountVersion)
		node["countname"] = e.CountName
		node["countclass"] = e.CountClass
	case KindSTL, KindSTLString:
		node["STLtype"] = int64(e.STLType)
		node["Ctype"] = int64(e.CType)
	}
	return node
}

// elementFromNode restores one element, dispatching on the kind tag.
func elementFromNode(node map[string]any) (*Element, error) {
	tag, ok := jtree.GetString(node, "streamerelement")
	if !ok {
		return nil, fmt.Errorf("%w: missing streamerelement tag", ErrBadElement)
	}
	kind, ok := KindFromString(tag)
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrBadElement, tag)
	}
	name, ok := jtree.GetString(node, "name")
	if !ok {
		return nil, fmt.Errorf("%w: missing name", ErrBadElement)
	}

	e := &Element{Kind: kind, Name: name}
	e.Title, _ = jtree.GetString(node, "title")
	e.TypeName, _ = jtree.GetString(node, "typename")
	if v, ok := jtree.GetInt(node, "v"); ok {
		e.Version = int(v)
	}
	if v, ok := jtree.GetInt(node, "type"); ok {
		e.Type = int(v)
	}
	if v, ok := jtree.GetInt(node, "size"); ok {
		e.Size = int(v)
	}
	if dims, ok := jtree.GetSlice(node, "arraydim"); ok {
		for _, d := range dims {
			n, ok := d.(int64)
			if !ok {
				return nil, fmt.Errorf("%w: bad arraydim entry for %s", ErrBadElement, name)
			}
			e.ArrayDim = append(e.ArrayDim, int(n))
		}
	}

	switch kind {
	case KindBase:
		if v, ok := jtree.GetInt(node, "baseversion"); ok {
			e.BaseVersion = int(v)
		}
		if v, ok := jtree.GetInt(node, "basechecksum"); ok {
			e.BaseChecksum = uint32(v)
		}
	case KindBasicPointer, KindLoop:
		if v, ok := jtree.GetInt(node, "countversion"); ok {
			e.CountVersion = int(v)
		}
		e.CountName, _ = jtree.GetString(node, "countname")
		e.CountClass, _ = jtree.GetString(node, "countclass")
	case KindSTL, KindSTLString:
		if v, ok := jtree.GetInt(node, "STLtype"); ok {
			e.STLType = int(v)
		}
		if v, ok := jtree.GetInt(node, "Ctype"); ok {
			e.CType = int(v)
		}
	}
	return e, nil
}
