package assets

import (
	"encoding/hex"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// maxBaseName bounds the readable suffix of a local file name.
const maxBaseName = 64

// LocalPath returns the mirror path for sourceURL inside dir:
// "<first 32 hex digits of blake3(url)>-<sanitised base name>". The
// hash keeps distinct URLs apart even when their base names collide.
func LocalPath(dir, sourceURL string) string {
	sum := blake3.Sum256([]byte(sourceURL))
	return filepath.Join(dir, hex.EncodeToString(sum[:16])+"-"+baseName(sourceURL))
}

func baseName(sourceURL string) string {
	name := ""
	if u, err := url.Parse(sourceURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "." || name == "/" {
		name = ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	clean := strings.Trim(b.String(), ".")
	if clean == "" {
		return "asset"
	}
	if len(clean) > maxBaseName {
		clean = clean[len(clean)-maxBaseName:]
	}
	return clean
}
