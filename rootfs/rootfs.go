package rootfs

import (
	"os"
	"path/filepath"
	"strings"
)

// Type is a rootfs image format, declared by file extension. A
// declared type must also match the image's binary signature (see
// VerifyMagic) before any extraction is attempted.
type Type int

const (
	TypeUnknown Type = iota
	TypeErofs
	TypeSquashfs
)

func (t Type) String() string {
	switch t {
	case TypeErofs:
		return "erofs"
	case TypeSquashfs:
		return "squashfs"
	default:
		return "unknown"
	}
}

// TypeFromPath derives the image format from path's extension. The
// format is always explicit: unknown extensions come back as
// TypeUnknown and are never guessed from content.
func TypeFromPath(path string) Type {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case "erofs":
		return TypeErofs
	case "squashfs":
		return TypeSquashfs
	default:
		return TypeUnknown
	}
}

// SearchPaths are the well-known live media locations probed when no
// explicit image path is given. EROFS locations come first; the
// squashfs entries remain for older media.
var SearchPaths = []string{
	"/media/cdrom/live/filesystem.erofs",
	"/run/initramfs/live/filesystem.erofs",
	"/run/archiso/bootmnt/live/filesystem.erofs",
	"/mnt/cdrom/live/filesystem.erofs",
	"/media/cdrom/live/filesystem.squashfs",
	"/run/initramfs/live/filesystem.squashfs",
	"/run/archiso/bootmnt/live/filesystem.squashfs",
	"/mnt/cdrom/live/filesystem.squashfs",
}

// Find returns the first search path that exists on this system.
func Find() (path string, found bool) {
	for _, candidate := range SearchPaths {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}
