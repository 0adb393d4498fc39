// Package api defines the on-disk format of a rootjson file.
//
// A rootjson file is a single pretty-printed UTF-8 JSON document. The root
// object carries a fixed type tag, a format version, header metadata, an
// ordered array of key records and an optional schema catalog
// ("StreamerInfos") that describes the layout of every class referenced by
// the stored payloads.
package api

// DocType is the value of the root "type" field. A document whose type field
// differs is not a rootjson file.
const DocType = "ROOTfile"

// CurrentIOVersion is the file format version written by this
// implementation. Files with a larger IOVersion cannot be opened.
const CurrentIOVersion = 1

// VersionCode identifies the runtime that wrote a file. It is informational
// on read and never gates anything. Encoded as 10000*major + 100*minor + patch.
const VersionCode = 10000

// Field names of the root document.
const (
	FieldType          = "type"
	FieldIOVersion     = "IOVersion"
	FieldVersionCode   = "ROOTVersionCode"
	FieldCreated       = "created"
	FieldModified      = "modified"
	FieldUUID          = "uuid"
	FieldTitle         = "title"
	FieldKeys          = "Keys"
	FieldStreamerInfos = "StreamerInfos"
)

// Field names of a key record.
const (
	FieldName   = "name"
	FieldCycle  = "cycle"
	FieldObject = "Object"
)

// FieldTypename is the class discriminator embedded in every encoded object.
const FieldTypename = "_typename"

// DirectoryClass is the typename of a key payload that represents a nested
// directory. Its Object node carries a Keys array instead of member data.
const DirectoryClass = "TDirectory"

// Reproducible-mode sentinels. When a file is flagged reproducible, all
// non-deterministic header metadata is pinned to these values so that
// identical inputs produce byte-identical files.
const (
	ReproUUID      = "00000000-0000-0000-0000-000000000000"
	ReproTimestamp = "1995-01-01 00:00:01"
)

// TimeLayout is the SQL-style timestamp layout used for the created and
// modified fields. Timestamps are treated as opaque strings beyond this.
const TimeLayout = "2006-01-02 15:04:05"
