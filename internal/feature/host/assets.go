package host

import (
	"io/fs"
	"strings"
)

// Asset is a resolved asset file.
type Asset struct {
	Path string
	Size int64
}

// AssetFS resolves asset names against a file system. Names are tried as
// given and then lower-cased, since mod files are written on case-insensitive
// systems.
type AssetFS struct {
	FS fs.FS
}

// Load implements codec.Resources.
func (a AssetFS) Load(file string) (Asset, bool) {
	if a.FS == nil {
		return Asset{}, false
	}
	for _, name := range []string{file, strings.ToLower(file)} {
		if !fs.ValidPath(name) {
			continue
		}
		info, err := fs.Stat(a.FS, name)
		if err == nil && !info.IsDir() {
			return Asset{Path: name, Size: info.Size()}, true
		}
	}
	return Asset{}, false
}
