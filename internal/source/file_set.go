package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
)

// FileSet owns every file of a run, prelude included. Files are only
// appended, so a *File from Get stays valid; concurrent resolve tasks read
// it under RLock.
type FileSet struct {
	mu      sync.RWMutex
	files   []*File
	latest  map[string]FileID // normalized path -> latest version
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{latest: make(map[string]FileID)}
}

// NewFileSetWithBase sets the directory relative paths are shown against.
func NewFileSetWithBase(baseDir string) *FileSet {
	s := NewFileSet()
	s.baseDir = baseDir
	return s
}

// BaseDir falls back to the working directory when none was given.
func (s *FileSet) BaseDir() string {
	if s.baseDir != "" {
		return s.baseDir
	}
	wd, _ := os.Getwd()
	return wd
}

// Add stores already normalized content under a fresh FileID, even when
// path was added before; GetLatest then points at the new version.
func (s *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	f := &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := safecast.Conv[uint32](len(s.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	f.ID = FileID(n)
	s.files = append(s.files, f)
	s.latest[f.Path] = f.ID
	return f.ID
}

// Load reads path, strips a BOM and converts CRLF before Add; the flags
// remember both so positions can be explained later.
func (s *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	var flags FileFlags
	content, bom := removeBOM(raw)
	if bom {
		flags |= FileHadBOM
	}
	content, crlf := normalizeCRLF(content)
	if crlf {
		flags |= FileNormalizedCRLF
	}
	return s.Add(path, content, flags), nil
}

// AddVirtual registers in-memory content: the prelude, stdin or a test file.
func (s *FileSet) AddVirtual(name string, content []byte) FileID {
	return s.Add(name, content, FileVirtual)
}

func (s *FileSet) Get(id FileID) *File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.files[id]
}

// Len counts file versions, not distinct paths.
func (s *FileSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

func (s *FileSet) GetLatest(path string) (FileID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.latest[normalizePath(path)]
	return id, ok
}

// Resolve converts both ends of span to 1-based line/column.
func (s *FileSet) Resolve(span Span) (start, end LineCol) {
	f := s.Get(span.File)
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}
