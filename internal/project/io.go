package project

import (
	"os"

	"github.com/cdeg/gypn/internal/pygerr"
)

const opReadFile pygerr.Op = "project.ReadFile"

// maxGYPFileSize bounds how large a single GYP source file may be.
// An oversized input surfaces as pygerr.NoMem rather than being read
// into memory whole.
const maxGYPFileSize = 64 << 20 // 64 MiB

// FileReader abstracts reading a GYP source file from disk, so cmd and
// tests can substitute an in-memory filesystem instead of touching the
// real one.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads files from the host filesystem, rejecting any
// file larger than maxGYPFileSize.
type OSFileReader struct{}

// ReadFile implements FileReader.
func (OSFileReader) ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, pygerr.E(opReadFile, pygerr.FS, err)
	}
	if info.Size() > maxGYPFileSize {
		return nil, pygerr.E(opReadFile, pygerr.NoMem, "file exceeds maximum size: "+path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pygerr.E(opReadFile, pygerr.FS, err)
	}
	return data, nil
}
