package jfile

import "sync"

// Process-wide list of open files, the one piece of state shared between
// files. Mutations happen under the package mutex; each File itself stays
// single-threaded.
var (
	openMu    sync.Mutex
	openFiles []*File
)

func registerOpenFile(f *File) {
	openMu.Lock()
	defer openMu.Unlock()
	openFiles = append(openFiles, f)
}

func removeOpenFile(f *File) {
	openMu.Lock()
	defer openMu.Unlock()
	for i, other := range openFiles {
		if other == f {
			openFiles = append(openFiles[:i], openFiles[i+1:]...)
			return
		}
	}
}

// OpenFiles returns a snapshot of the files currently open in this process.
func OpenFiles() []*File {
	openMu.Lock()
	defer openMu.Unlock()
	out := make([]*File, len(openFiles))
	copy(out, openFiles)
	return out
}
