package assets

import (
	"embed"
	"os"
	"path/filepath"
)

//go:embed default/logo.png
var bundled embed.FS

// LogoFile is the file name looked up in an override directory.
const LogoFile = "logo.png"

// DefaultLogo returns dir/logo.png when it exists and decodes, otherwise
// the bundled logo.
func DefaultLogo(dir string) (*Asset, bool) {
	if dir != "" {
		p := filepath.Join(dir, LogoFile)
		if data, err := os.ReadFile(p); err == nil {
			if a, err := Decode("file://"+filepath.ToSlash(p), data); err == nil {
				return a, true
			}
		}
	}
	data, err := bundled.ReadFile("default/" + LogoFile)
	if err != nil {
		return nil, false
	}
	a, err := Decode("bundled:"+LogoFile, data)
	if err != nil {
		return nil, false
	}
	return a, true
}
