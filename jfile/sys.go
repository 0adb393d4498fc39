package jfile

// Block-level I/O hooks of the host framework's file interface. The
// document is not block-structured, so all of them are inert: reads and
// writes happen whole in readFromFile and saveToFile.

// SysOpen is a no-op; the document is opened whole.
func (f *File) SysOpen(string, int, uint32) int { return 0 }

// SysClose is a no-op.
func (f *File) SysClose(int) int { return 0 }

// SysRead is a no-op.
func (f *File) SysRead(int, []byte) int { return 0 }

// SysWrite is a no-op.
func (f *File) SysWrite(int, []byte) int { return 0 }

// SysSeek is a no-op.
func (f *File) SysSeek(int, int64, int) int64 { return 0 }

// SysSync is a no-op.
func (f *File) SysSync(int) int { return 0 }

// ReadBuffer reports that block reads are unsupported.
func (f *File) ReadBuffer([]byte, int) bool { return false }

// WriteBuffer reports that block writes are unsupported.
func (f *File) WriteBuffer([]byte, int) bool { return false }

// GetEND returns 0; there is no block layout to report.
func (f *File) GetEND() int64 { return 0 }

// GetSize returns 0; there is no block layout to report.
func (f *File) GetSize() int64 { return 0 }

// GetNfree returns 0; there is no free-block list.
func (f *File) GetNfree() int { return 0 }
