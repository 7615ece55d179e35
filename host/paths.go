package host

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// protectedPaths are the system directories that may never be an
// extraction target. Membership is exact-match on the canonical path,
// which keeps /mnt, /mnt/* and /media/* usable as install targets.
var protectedPaths = map[string]bool{
	"/":      true,
	"/bin":   true,
	"/boot":  true,
	"/dev":   true,
	"/etc":   true,
	"/home":  true,
	"/lib":   true,
	"/lib64": true,
	"/opt":   true,
	"/proc":  true,
	"/root":  true,
	"/run":   true,
	"/sbin":  true,
	"/srv":   true,
	"/sys":   true,
	"/tmp":   true,
	"/usr":   true,
	"/var":   true,
}

// IsProtectedPath reports whether path is one of the system
// directories that must never be overwritten. Callers are expected to
// canonicalize first - a raw argument could hide a protected
// destination behind a symlink.
func IsProtectedPath(path string) bool {
	return protectedPaths[filepath.Clean(path)]
}

// Canonicalize resolves path to an absolute form with every symlink
// and dot-dot segment collapsed. All safety decisions downstream
// operate on the canonical form, never on what the operator typed.
func Canonicalize(path string) (resolved string, err error) {
	resolved, err = filepath.Abs(path)
	if err != nil {
		err = errors.Wrapf(err, "failed resolving absolute path of %s", path)
		return
	}

	resolved, err = filepath.EvalSymlinks(resolved)
	if err != nil {
		err = errors.Wrapf(err, "failed resolving symlinks in %s", path)
		return
	}

	return
}

// WithinDir reports whether path lives inside dir (or is dir itself).
// Both arguments must already be absolute and canonical.
func WithinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	if rel == "." {
		return true
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
