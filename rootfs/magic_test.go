package rootfs_test

import (
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/LevitateOS/recstrap/rootfs"
)

var _ = Describe("VerifyMagic", func() {

	var dir string

	BeforeEach(func() {
		var err error

		dir, err = ioutil.TempDir("", "recstrap-magic")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	writeImage := func(name string, content []byte) string {
		path := filepath.Join(dir, name)

		err := ioutil.WriteFile(path, content, 0644)
		Expect(err).ToNot(HaveOccurred())

		return path
	}

	erofsImage := func(magic uint32) []byte {
		content := make([]byte, rootfs.ErofsSuperblockOffset+4)
		binary.LittleEndian.PutUint32(content[rootfs.ErofsSuperblockOffset:], magic)
		return content
	}

	Context("verifying an EROFS image", func() {
		It("accepts the real superblock magic", func() {
			path := writeImage("filesystem.erofs", erofsImage(rootfs.ErofsMagic))

			err := rootfs.VerifyMagic(path, rootfs.TypeErofs)
			Expect(err).ToNot(HaveOccurred())
		})

		It("rejects anything else, showing both magics", func() {
			path := writeImage("filesystem.erofs", erofsImage(0x45504f4e))

			err := rootfs.VerifyMagic(path, rootfs.TypeErofs)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("not a valid EROFS image"))
			Expect(err.Error()).To(ContainSubstring("0x45504f4e"))
			Expect(err.Error()).To(ContainSubstring("0xe0f5e1e2"))
		})

		It("rejects files too short to hold a superblock", func() {
			path := writeImage("filesystem.erofs", []byte("tiny"))

			err := rootfs.VerifyMagic(path, rootfs.TypeErofs)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("superblock"))
		})
	})

	Context("verifying a squashfs image", func() {
		It("accepts the hsqs signature", func() {
			path := writeImage("filesystem.squashfs", []byte("hsqs-and-then-some"))

			err := rootfs.VerifyMagic(path, rootfs.TypeSquashfs)
			Expect(err).ToNot(HaveOccurred())
		})

		It("rejects anything else", func() {
			path := writeImage("filesystem.squashfs", []byte("sqsh-backwards"))

			err := rootfs.VerifyMagic(path, rootfs.TypeSquashfs)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("not a valid squashfs image"))
		})
	})

	Context("with an unknown type", func() {
		It("refuses to verify", func() {
			path := writeImage("filesystem.img", []byte("whatever"))

			err := rootfs.VerifyMagic(path, rootfs.TypeUnknown)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with a file that does not exist", func() {
		It("fails", func() {
			err := rootfs.VerifyMagic(filepath.Join(dir, "nope.erofs"), rootfs.TypeErofs)
			Expect(err).To(HaveOccurred())
		})
	})

})
