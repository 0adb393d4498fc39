package streamer

import (
	"errors"
	"fmt"

	"github.com/agentic-research/rootjson/internal/jtree"
)

// ErrBadInfo is returned for catalog entries that cannot be interpreted.
var ErrBadInfo = errors.New("bad streamer info")

// Info is one schema catalog entry: the persisted layout of a single class.
type Info struct {
	Name         string
	Title        string
	ClassVersion int
	Checksum     uint32

	// CanOptimize mirrors the original "cannot optimize" bit, inverted for
	// the JSON form: the field is written as "true"/"false" strings and a
	// missing or "false" value means optimization is off.
	CanOptimize bool

	Elements []*Element
}

// ToNode serializes the entry. Elements are emitted in declaration order.
func (si *Info) ToNode() map[string]any {
	elems := make([]any, 0, len(si.Elements))
	for _, e := range si.Elements {
		elems = append(elems, e.toNode())
	}
	canopt := "false"
	if si.CanOptimize {
		canopt = "true"
	}
	return map[string]any{
		"name":         si.Name,
		"title":        si.Title,
		"classversion": int64(si.ClassVersion),
		"checksum":     int64(si.Checksum),
		"canoptimize":  canopt,
		"elements":     elems,
	}
}

// InfoFromNode restores one catalog entry from its JSON node.
func InfoFromNode(node map[string]any) (*Info, error) {
	name, ok := jtree.GetString(node, "name")
	if !ok {
		return nil, fmt.Errorf("%w: missing name", ErrBadInfo)
	}
	si := &Info{Name: name}
	si.Title, _ = jtree.GetString(node, "title")
	if v, ok := jtree.GetInt(node, "classversion"); ok {
		si.ClassVersion = int(v)
	}
	if v, ok := jtree.GetInt(node, "checksum"); ok {
		si.Checksum = uint32(v)
	}
	// "true" enables optimization; "false" or missing leaves it off.
	if canopt, _ := jtree.GetString(node, "canoptimize"); canopt == "true" {
		si.CanOptimize = true
	}

	elems, ok := jtree.GetSlice(node, "elements")
	if !ok {
		return si, nil
	}
	for i, raw := range elems {
		en, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d of %s is not an object", ErrBadInfo, i, name)
		}
		e, err := elementFromNode(en)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", name, err)
		}
		si.Elements = append(si.Elements, e)
	}
	return si, nil
}
