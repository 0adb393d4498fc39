package jfile

import (
	"log/slog"

	"github.com/go-git/go-billy/v5"

	"github.com/agentic-research/rootjson/registry"
)

// Option configures Open.
type Option func(*File)

// WithTitle sets the human-readable file title. The title is written
// verbatim, including in reproducible mode.
func WithTitle(title string) Option {
	return func(f *File) { f.title = title }
}

// WithRegistry injects the class registry used for payload conversion.
// Defaults to registry.Default.
func WithRegistry(r *registry.Registry) Option {
	return func(f *File) {
		if r != nil {
			f.reg = r
		}
	}
}

// WithReproducible pins timestamps and the uuid to fixed sentinels on flush,
// so two identical writer runs produce byte-identical files.
func WithReproducible() Option {
	return func(f *File) { f.repro = true }
}

// WithFilesystem redirects all disk access through fs. Defaults to the
// local filesystem rooted at the working directory.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(f *File) {
		if fs != nil {
			f.fs = fs
		}
	}
}

// WithLogger sets the logger for schema warnings. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(f *File) {
		if log != nil {
			f.log = log
		}
	}
}

// WithCompression is accepted for interface compatibility and ignored: the
// document is plain JSON text.
func WithCompression(level int) Option {
	return func(*File) {}
}
