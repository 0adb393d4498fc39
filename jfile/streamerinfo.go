package jfile

import (
	"github.com/agentic-research/rootjson/api"
	"github.com/agentic-research/rootjson/internal/jtree"
	"github.com/agentic-research/rootjson/streamer"
)

// writeStreamerInfo emits the schema catalog into the assembled document.
// Runs after key emission so the discriminator scan sees the whole tree:
// only classes actually referenced by some payload are included. Files
// containing nested directories get the built-in directory entry so they
// stay fully self-describing.
func (f *File) writeStreamerInfo(root map[string]any) {
	if !f.storeInfos {
		return
	}

	referenced := map[string]bool{}
	for _, name := range jtree.Typenames(root) {
		referenced[name] = true
	}

	var arr []any
	if referenced[api.DirectoryClass] {
		arr = append(arr, streamer.DirectoryInfo().ToNode())
	}
	for _, cl := range f.reg.Classes() {
		if referenced[cl.Name()] {
			arr = append(arr, streamer.InfoFor(f.reg, cl).ToNode())
		}
	}
	if len(arr) == 0 {
		return
	}
	root[api.FieldStreamerInfos] = arr
}

// WriteStreamerInfo refreshes the catalog in the current document. The
// flush does this on its own; the method exists for hosts that want the
// catalog in place before close.
func (f *File) WriteStreamerInfo() {
	if f.IsOpen() && f.writable {
		f.writeStreamerInfo(f.doc)
	}
}

// readStreamerInfos restores the catalog on open. A malformed entry is
// skipped with a warning and never aborts the open.
func (f *File) readStreamerInfos(root map[string]any) {
	entries, ok := jtree.GetSlice(root, api.FieldStreamerInfos)
	if !ok {
		return
	}
	for i, raw := range entries {
		node, ok := raw.(map[string]any)
		if !ok {
			f.log.Warn("skipping malformed streamer info", "file", f.name, "index", i)
			continue
		}
		si, err := streamer.InfoFromNode(node)
		if err != nil {
			f.log.Warn("skipping streamer info", "file", f.name, "index", i, "err", err)
			continue
		}
		f.infos = append(f.infos, si)
	}
}

// StreamerInfoList returns the schema catalog: the entries restored from
// the document when there are any, otherwise entries derived from the
// registry for every registered class. The caller owns the slice.
func (f *File) StreamerInfoList() []*streamer.Info {
	if len(f.infos) > 0 {
		out := make([]*streamer.Info, len(f.infos))
		copy(out, f.infos)
		return out
	}
	var out []*streamer.Info
	for _, cl := range f.reg.Classes() {
		out = append(out, streamer.InfoFor(f.reg, cl))
	}
	return out
}
