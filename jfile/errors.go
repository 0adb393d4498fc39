package jfile

import "errors"

// Usage errors: the requested open/reopen cannot be honored. The caller gets
// no *File back; nothing is registered with the open-file list.
var (
	// ErrNoName is returned when the filename is empty.
	ErrNoName = errors.New("file name is not specified")

	// ErrFileExists is returned when CREATE targets an existing file.
	ErrFileExists = errors.New("file already exists")

	// ErrNotExist is returned when READ targets a missing file.
	ErrNotExist = errors.New("File does not exist.")

	// ErrNoPermission is returned when the mode requires access the
	// underlying file does not grant.
	ErrNoPermission = errors.New("no permission")

	// ErrBadMode is returned by ReOpen for modes other than READ or UPDATE.
	ErrBadMode = errors.New("mode must be either READ or UPDATE")

	// ErrReopenNoop is returned by ReOpen when the file is already in the
	// requested mode.
	ErrReopenNoop = errors.New("already in requested mode")

	// ErrClosed is returned by operations on a closed file.
	ErrClosed = errors.New("file is not open")

	// ErrNotWritable is returned by write operations on a read-only file.
	ErrNotWritable = errors.New("file is not writable")
)

// Parse errors: the document on disk is not a rootjson file.
var (
	// ErrParse wraps the underlying JSON parse failure.
	ErrParse = errors.New("parse error")

	// ErrNoType is returned when the root object has no type field.
	ErrNoType = errors.New("File does not have a type.")

	// ErrNotRootFile is returned when the type field has the wrong value.
	ErrNotRootFile = errors.New("Not a ROOT File.")

	// ErrVersionIncompatible is returned when the file was written by a
	// newer format version than this implementation knows.
	ErrVersionIncompatible = errors.New("File version not compatible.")
)

// Schema and payload errors. These never abort a surrounding open or flush;
// a failed decode on one key leaves its siblings intact.
var (
	// ErrNoPayload is returned when a key record has no Object node.
	ErrNoPayload = errors.New("key has no payload")

	// ErrIncompatibleClass is returned when a decoded object cannot be
	// viewed as the requested base class.
	ErrIncompatibleClass = errors.New("incompatible class")
)
