// Package jfile implements the file backend: a tree of directories and key
// records persisted as one self-describing JSON document.
//
// A File owns the whole in-memory tree for its lifetime. Writers build the
// tree incrementally and the document is flushed once, atomically from the
// tree's point of view, on Close (or on a writable-to-read ReOpen). Readers
// parse the document whole and materialize key records lazily: payloads are
// decoded only when asked for.
//
// Files are single-threaded: no method of File, Directory or Key may be
// called concurrently for the same file. The only shared state is the
// process-wide open-file list, which has its own lock.
package jfile

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"

	"github.com/agentic-research/rootjson/api"
	"github.com/agentic-research/rootjson/internal/jtree"
	"github.com/agentic-research/rootjson/registry"
	"github.com/agentic-research/rootjson/streamer"
)

// DevNull is the sentinel path that accepts writes and persists nothing.
const DevNull = "/dev/null"

// File is the coordinator for one open document.
type File struct {
	fs  billy.Filesystem
	log *slog.Logger
	reg *registry.Registry

	name    string // display name, after the json: prefix is stripped
	path    string // on-disk path with the .json suffix ensured
	title   string
	mode    Mode
	devnull bool
	repro   bool

	writable   bool
	storeInfos bool

	doc         map[string]any // root document node; nil when closed
	uuid        string
	created     string
	modified    string
	ioVersion   int
	versionCode int64

	keyCounter int64
	root       *Directory
	infos      []*streamer.Info
}

// Open opens or creates a file. option selects the mode per ParseMode:
// READ, CREATE (alias NEW), RECREATE or UPDATE; anything else reads.
//
// A filename starting with "json:" has that prefix stripped; a filename
// without a .json suffix gets one appended for the on-disk path. The path
// /dev/null is accepted in write modes and persists nothing.
func Open(filename, option string, opts ...Option) (*File, error) {
	name := strings.TrimPrefix(filename, "json:")
	if name == "" {
		return nil, ErrNoName
	}

	f := &File{
		name:        name,
		mode:        ParseMode(option),
		reg:         registry.Default,
		log:         slog.Default(),
		storeInfos:  true,
		ioVersion:   api.CurrentIOVersion,
		versionCode: api.VersionCode,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.fs == nil {
		f.fs = osfs.New("/")
		if !filepath.IsAbs(name) {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("resolve %s: %w", name, err)
			}
			name = filepath.Join(wd, name)
		}
	}

	if name == DevNull {
		f.devnull = true
		f.mode = ModeCreate
		f.path = name
	} else {
		f.path = produceFileName(name)
	}

	loadExisting := false
	switch f.mode {
	case ModeRecreate:
		if !f.devnull && f.exists() {
			if err := f.fs.Remove(f.path); err != nil {
				return nil, fmt.Errorf("recreate %s: %w", f.path, err)
			}
		}
		f.mode = ModeCreate

	case ModeCreate:
		if !f.devnull && f.exists() {
			return nil, fmt.Errorf("%w: %s", ErrFileExists, f.path)
		}

	case ModeUpdate:
		if !f.exists() {
			f.mode = ModeCreate
		} else if !f.writableOnDisk() {
			return nil, fmt.Errorf("%w: could not open %s for writing", ErrNoPermission, f.path)
		} else {
			loadExisting = true
		}

	case ModeRead:
		if !f.exists() {
			return nil, fmt.Errorf("%w (%s)", ErrNotExist, f.path)
		}
		loadExisting = true
	}

	f.writable = f.mode.writable()
	f.root = &Directory{file: f, name: f.name, title: f.title}

	if loadExisting {
		if err := f.readFromFile(); err != nil {
			return nil, err
		}
	} else {
		f.doc = jtree.NewObject()
		f.uuid = uuid.New().String()
		now := time.Now().Format(api.TimeLayout)
		f.created, f.modified = now, now
	}

	registerOpenFile(f)
	return f, nil
}

// IsOpen reports whether the file still holds its document.
func (f *File) IsOpen() bool { return f.doc != nil }

// IsWritable reports whether Close will flush.
func (f *File) IsWritable() bool { return f.writable }

// Name returns the name the file was opened under.
func (f *File) Name() string { return f.name }

// Path returns the derived on-disk path.
func (f *File) Path() string { return f.path }

// Title returns the file title.
func (f *File) Title() string { return f.title }

// Mode returns the current open mode.
func (f *File) Mode() Mode { return f.mode }

// UUID returns the document identifier.
func (f *File) UUID() string { return f.uuid }

// Version returns the file format version.
func (f *File) Version() int { return f.ioVersion }

// VersionCode returns the runtime version stamp read from the file, or the
// current one for a fresh file. Informational only.
func (f *File) VersionCode() int64 { return f.versionCode }

// Created returns the creation timestamp string.
func (f *File) Created() string { return f.created }

// Modified returns the modification timestamp string.
func (f *File) Modified() string { return f.modified }

// Root returns the top-level directory.
func (f *File) Root() *Directory { return f.root }

// Registry returns the class registry this file converts payloads with.
func (f *File) Registry() *registry.Registry { return f.reg }

// CreateKey stores an instance of a registered class under name in mother.
// A nil mother targets the root directory.
func (f *File) CreateKey(mother *Directory, v any, name string) (*Key, error) {
	return f.CreateKeyForClass(mother, v, nil, name)
}

// CreateKeyForClass is CreateKey with an explicit class handle, for callers
// that stored the instance behind an interface.
func (f *File) CreateKeyForClass(mother *Directory, v any, cl *registry.Class, name string) (*Key, error) {
	if !f.IsOpen() {
		return nil, ErrClosed
	}
	if !f.writable {
		return nil, ErrNotWritable
	}
	if mother == nil {
		mother = f.root
	}
	return f.newKey(mother, v, cl, name, "")
}

// Get decodes the newest-cycle object stored under name in the root
// directory.
func (f *File) Get(name string) (any, error) {
	if !f.IsOpen() {
		return nil, ErrClosed
	}
	return f.root.Get(name)
}

// ReOpen switches between READ and UPDATE without dropping the in-memory
// tree. Switching a writable file to READ flushes first. Returns
// ErrReopenNoop when the file is already in the requested mode.
func (f *File) ReOpen(option string) error {
	if !f.IsOpen() {
		return ErrClosed
	}
	m := ParseMode(option)
	if m != ModeRead && m != ModeUpdate {
		return fmt.Errorf("%w, not %s", ErrBadMode, strings.ToUpper(option))
	}
	if m == f.mode || (m == ModeUpdate && f.mode == ModeCreate) {
		return ErrReopenNoop
	}

	if m == ModeRead {
		if f.writable {
			if err := f.saveToFile(); err != nil {
				return err
			}
		}
		f.writable = false
	} else {
		f.writable = true
	}
	f.mode = m
	return nil
}

// Close flushes a writable file and releases the tree. Keys are torn down
// bottom-up, then the document, the catalog and the directories. Close on a
// closed file is a no-op.
func (f *File) Close() error {
	if !f.IsOpen() {
		return nil
	}
	var err error
	if f.writable {
		err = f.saveToFile()
	}
	f.writable = false
	f.doc = nil
	f.infos = nil
	f.root.release()
	removeOpenFile(f)
	return err
}

// SetStoreStreamerInfos controls whether the flush emits the schema
// catalog. Only honored on a writable file before the first key is written.
func (f *File) SetStoreStreamerInfos(store bool) {
	if f.writable && len(f.root.keys) == 0 {
		f.storeInfos = store
	}
}

// IsStoreStreamerInfos reports whether the flush will emit the catalog.
func (f *File) IsStoreStreamerInfos() bool { return f.storeInfos }

// stamp returns the timestamp written for new metadata, honoring
// reproducible mode.
func (f *File) stamp() string {
	if f.repro {
		return api.ReproTimestamp
	}
	return time.Now().Format(api.TimeLayout)
}

func (f *File) exists() bool {
	_, err := f.fs.Stat(f.path)
	return err == nil
}

func (f *File) writableOnDisk() bool {
	h, err := f.fs.OpenFile(f.path, os.O_WRONLY, 0o644)
	if err != nil {
		return false
	}
	_ = h.Close()
	return true
}

// produceFileName appends .json when the name does not already carry the
// suffix, compared case-insensitively.
func produceFileName(name string) string {
	if len(name) >= 5 && strings.EqualFold(name[len(name)-5:], ".json") {
		return name
	}
	return name + ".json"
}

// readFromFile parses the document, validates the header, restores the
// schema catalog and materializes the keys tree.
func (f *File) readFromFile() error {
	h, err := f.fs.Open(f.path)
	if err != nil {
		return fmt.Errorf("%w: could not open %s for reading", ErrNoPermission, f.path)
	}
	data, err := io.ReadAll(h)
	_ = h.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", f.path, err)
	}

	v, err := jtree.Parse(data)
	if err != nil {
		return fmt.Errorf("%w in %s: %v", ErrParse, f.path, err)
	}
	root, ok := v.(map[string]any)
	if !ok {
		return ErrNoType
	}

	typ, ok := jtree.GetString(root, api.FieldType)
	if !ok {
		return ErrNoType
	}
	if typ != api.DocType {
		return ErrNotRootFile
	}
	if iov, ok := jtree.GetInt(root, api.FieldIOVersion); ok {
		if iov > api.CurrentIOVersion {
			return ErrVersionIncompatible
		}
		f.ioVersion = int(iov)
	}
	if vc, ok := jtree.GetInt(root, api.FieldVersionCode); ok {
		f.versionCode = vc
	}
	if s, ok := jtree.GetString(root, api.FieldCreated); ok {
		f.created = s
	}
	if s, ok := jtree.GetString(root, api.FieldModified); ok {
		f.modified = s
	}
	if s, ok := jtree.GetString(root, api.FieldUUID); ok {
		f.uuid = s
	}
	if s, ok := jtree.GetString(root, api.FieldTitle); ok {
		f.title = s
		f.root.title = s
	}

	f.doc = root

	// Restore the catalog before walking keys so payloads can be
	// interpreted by readers that rely on it.
	if _, present := root[api.FieldStreamerInfos]; present {
		f.readStreamerInfos(root)
	}
	f.readKeysList(f.root, root)
	return nil
}

// readKeysList materializes one key record per element of the node's Keys
// array, in order. Subdirectory keys get their directory attached and
// recursed into immediately, so seekDir linkage is available right after
// open.
func (f *File) readKeysList(dir *Directory, node map[string]any) int {
	keys, ok := jtree.GetSlice(node, api.FieldKeys)
	if !ok {
		return 0
	}
	count := 0
	for i, raw := range keys {
		kn, ok := raw.(map[string]any)
		if !ok {
			f.log.Warn("skipping malformed key record", "file", f.name, "index", i)
			continue
		}
		if _, hasObj := kn[api.FieldObject]; !hasObj {
			f.log.Warn("skipping key record without payload", "file", f.name, "index", i)
			continue
		}
		f.keyCounter++
		k := newKeyFromNode(dir, f.keyCounter, kn)
		dir.keys = append(dir.keys, k)
		count++

		if obj, ok := jtree.GetMap(kn, api.FieldObject); ok && k.className == api.DirectoryClass {
			k.subdir = true
			sub := &Directory{
				file:    f,
				parent:  dir,
				name:    k.name,
				title:   k.title,
				seekDir: k.keyID,
			}
			dir.dirs = append(dir.dirs, sub)
			f.readKeysList(sub, obj)
		}
	}
	return count
}

// saveToFile rebuilds the root node from the live tree and writes the whole
// document. The in-memory tree is left untouched, so a failed write can be
// retried.
func (f *File) saveToFile() error {
	if f.doc == nil {
		return ErrClosed
	}

	root := jtree.NewObject()
	f.doc = root

	created, uid := f.created, f.uuid
	if !f.repro {
		f.modified = time.Now().Format(api.TimeLayout)
	}
	modified := f.modified
	if f.repro {
		created, modified, uid = api.ReproTimestamp, api.ReproTimestamp, api.ReproUUID
	}

	root[api.FieldType] = api.DocType
	root[api.FieldIOVersion] = int64(f.ioVersion)
	root[api.FieldVersionCode] = f.versionCode
	root[api.FieldCreated] = created
	root[api.FieldModified] = modified
	root[api.FieldUUID] = uid
	// Title is written verbatim even in reproducible mode.
	if f.title != "" {
		root[api.FieldTitle] = f.title
	}

	root[api.FieldKeys] = f.combineNodes(f.root)
	f.writeStreamerInfo(root)

	if f.devnull {
		return nil
	}
	w, err := f.fs.Create(f.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.path, err)
	}
	if err := jtree.WriteTo(w, root); err != nil {
		_ = w.Close()
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	return w.Close()
}

// combineNodes emits a directory's keys in insertion order. For every
// subdirectory key the payload is refreshed with the live directory's own
// keys, recursively, so after this pass each key node matches what lands on
// disk.
func (f *File) combineNodes(dir *Directory) []any {
	arr := make([]any, 0, len(dir.keys))
	for _, k := range dir.keys {
		if k.subdir {
			if sub := dir.dirByID(k.keyID); sub != nil {
				obj, ok := jtree.GetMap(k.node, api.FieldObject)
				if !ok {
					obj = map[string]any{api.FieldTypename: api.DirectoryClass}
					k.node[api.FieldObject] = obj
				}
				obj[api.FieldKeys] = f.combineNodes(sub)
			}
		}
		arr = append(arr, k.node)
	}
	return arr
}

func (f *File) nextKeyID() int64 {
	f.keyCounter++
	return f.keyCounter
}
