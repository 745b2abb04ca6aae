package source

// FileID uniquely identifies a source file within a FileSet; IDs follow
// insertion order, prelude first.
type FileID uint32

// FileFlags encodes how a file entered the FileSet.
type FileFlags uint8

const (
	// FileVirtual: added from memory (prelude, test, stdin), not from disk.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded .tn source. Hash covers the normalized content and
// keys the run cache.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// IsVirtual reports whether the file has no on-disk counterpart.
func (f *File) IsVirtual() bool { return f.Flags&FileVirtual != 0 }

// LineCol is a 1-based human-readable position.
type LineCol struct {
	Line uint32
	Col  uint32
}
