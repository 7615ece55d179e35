package rootfs

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	// ErofsMagic is the little-endian superblock magic, found at
	// ErofsSuperblockOffset into the image.
	ErofsMagic uint32 = 0xe0f5e1e2

	ErofsSuperblockOffset = 1024
)

// SquashfsMagic is the signature at offset zero of a squashfs image.
var SquashfsMagic = []byte("hsqs")

// VerifyMagic checks that the image at path carries the binary
// signature its declared type implies. A corrupt or mislabeled image
// fails here, up front, instead of halfway through an extraction.
func VerifyMagic(path string, t Type) (err error) {
	f, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "failed opening %s", path)
		return
	}
	defer f.Close()

	buf := make([]byte, 4)

	switch t {
	case TypeErofs:
		_, err = f.ReadAt(buf, ErofsSuperblockOffset)
		if err != nil {
			err = errors.Wrapf(err, "failed reading EROFS superblock of %s", path)
			return
		}

		magic := binary.LittleEndian.Uint32(buf)
		if magic != ErofsMagic {
			err = errors.Errorf(
				"not a valid EROFS image (magic: 0x%08x, expected: 0x%08x)",
				magic, ErofsMagic)
			return
		}
	case TypeSquashfs:
		_, err = io.ReadFull(f, buf)
		if err != nil {
			err = errors.Wrapf(err, "failed reading squashfs magic of %s", path)
			return
		}

		if !bytes.Equal(buf, SquashfsMagic) {
			err = errors.Errorf(
				"not a valid squashfs image (magic: %q, expected: %q)",
				buf, SquashfsMagic)
			return
		}
	default:
		err = errors.Errorf("no signature known for rootfs type %q", t)
	}

	return
}
