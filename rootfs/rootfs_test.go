package rootfs_test

import (
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/LevitateOS/recstrap/rootfs"
)

var _ = Describe("Rootfs", func() {

	Describe("TypeFromPath", func() {
		It("declares the type from the extension alone", func() {
			Expect(rootfs.TypeFromPath("/mnt/filesystem.erofs")).To(Equal(rootfs.TypeErofs))
			Expect(rootfs.TypeFromPath("/mnt/filesystem.squashfs")).To(Equal(rootfs.TypeSquashfs))
		})

		It("never guesses for anything else", func() {
			for _, path := range []string{
				"/mnt/filesystem.img",
				"/mnt/filesystem.tar.gz",
				"/mnt/filesystem",
				"/mnt/erofs",
			} {
				Expect(rootfs.TypeFromPath(path)).To(Equal(rootfs.TypeUnknown),
					"expected %s to stay unknown", path)
			}
		})
	})

	Describe("Type", func() {
		It("names itself", func() {
			Expect(rootfs.TypeErofs.String()).To(Equal("erofs"))
			Expect(rootfs.TypeSquashfs.String()).To(Equal("squashfs"))
			Expect(rootfs.TypeUnknown.String()).To(Equal("unknown"))
		})
	})

	Describe("SearchPaths", func() {
		It("probes every EROFS location before any squashfs one", func() {
			lastErofs, firstSquashfs := -1, -1

			for i, path := range rootfs.SearchPaths {
				switch {
				case strings.HasSuffix(path, ".erofs"):
					lastErofs = i
				case strings.HasSuffix(path, ".squashfs") && firstSquashfs == -1:
					firstSquashfs = i
				}
			}

			Expect(lastErofs).To(BeNumerically("<", firstSquashfs))
		})

		It("lists only paths whose type is recognizable", func() {
			for _, path := range rootfs.SearchPaths {
				Expect(rootfs.TypeFromPath(path)).ToNot(Equal(rootfs.TypeUnknown))
			}
		})
	})

})
