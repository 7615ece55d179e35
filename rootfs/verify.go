package rootfs

import (
	"os"
	"path/filepath"
)

// EssentialDirs is the minimal directory skeleton an extracted tree
// needs to be usable as a system root.
var EssentialDirs = []string{"bin", "etc", "lib", "sbin", "usr", "var"}

// MissingEssentialDirs returns every EssentialDirs entry that does not
// exist under target as a real directory. Files and symlinks do not
// count: an absolute symlink would resolve against the live system
// instead of the tree being inspected. All names are collected so a
// broken extraction is reported once, completely.
func MissingEssentialDirs(target string) (missing []string) {
	for _, dir := range EssentialDirs {
		fi, err := os.Lstat(filepath.Join(target, dir))
		if err != nil || !fi.IsDir() {
			missing = append(missing, dir)
		}
	}

	return
}
