package loader

import (
	"io/fs"
	"os"
)

// loaderBackend abstracts template file access so templates can come from the
// OS filesystem, an embedded fs.FS, or test fixtures.
type loaderBackend interface {
	// Load reads the template source at the given path.
	//
	// Parameters:
	//   - path: the backend-relative path to read
	//
	// Returns:
	//   - []byte: the template source bytes
	//   - error: the underlying read error
	Load(path string) ([]byte, error)
}

// osLoaderBackend reads template files from the OS filesystem.
type osLoaderBackend struct{}

var _ loaderBackend = &osLoaderBackend{}

func newOSLoaderBackend() loaderBackend {
	return &osLoaderBackend{}
}

func (b *osLoaderBackend) Load(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// fsLoaderBackend reads template files from an fs.FS, typically an embed.FS
// of shipped shader assets.
type fsLoaderBackend struct {
	fsys fs.FS
}

var _ loaderBackend = &fsLoaderBackend{}

func newFSLoaderBackend(fsys fs.FS) loaderBackend {
	return &fsLoaderBackend{fsys: fsys}
}

func (b *fsLoaderBackend) Load(path string) ([]byte, error) {
	return fs.ReadFile(b.fsys, path)
}
