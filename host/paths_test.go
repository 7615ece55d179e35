package host_test

import (
	"io/ioutil"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/LevitateOS/recstrap/host"
)

var _ = Describe("Paths", func() {

	Describe("IsProtectedPath", func() {
		It("protects the critical system directories", func() {
			for _, path := range []string{"/", "/etc", "/usr", "/bin", "/var", "/home", "/proc", "/boot"} {
				Expect(host.IsProtectedPath(path)).To(BeTrue(),
					"expected %s to be protected", path)
			}
		})

		It("keeps mount targets usable", func() {
			for _, path := range []string{"/mnt", "/mnt/target", "/media/usb"} {
				Expect(host.IsProtectedPath(path)).To(BeFalse(),
					"expected %s to be allowed", path)
			}
		})

		It("is not fooled by trailing slashes or dot segments", func() {
			Expect(host.IsProtectedPath("/usr/")).To(BeTrue())
			Expect(host.IsProtectedPath("/mnt/../etc")).To(BeTrue())
		})
	})

	Describe("Canonicalize", func() {

		var dir string

		BeforeEach(func() {
			var err error

			dir, err = ioutil.TempDir("", "recstrap-paths")
			Expect(err).ToNot(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		It("collapses dot-dot segments", func() {
			canonical, err := host.Canonicalize(dir)
			Expect(err).ToNot(HaveOccurred())

			resolved, err := host.Canonicalize(filepath.Join(dir, "sub", ".."))
			Expect(err).ToNot(HaveOccurred())
			Expect(resolved).To(Equal(canonical))
		})

		It("resolves symlinks", func() {
			realDir := filepath.Join(dir, "real")
			Expect(os.Mkdir(realDir, 0755)).To(Succeed())

			link := filepath.Join(dir, "link")
			Expect(os.Symlink(realDir, link)).To(Succeed())

			canonical, err := host.Canonicalize(realDir)
			Expect(err).ToNot(HaveOccurred())

			resolved, err := host.Canonicalize(link)
			Expect(err).ToNot(HaveOccurred())
			Expect(resolved).To(Equal(canonical))
		})

		It("fails for paths that do not exist", func() {
			_, err := host.Canonicalize(filepath.Join(dir, "nope"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("WithinDir", func() {
		It("detects containment", func() {
			Expect(host.WithinDir("/mnt/filesystem.erofs", "/mnt")).To(BeTrue())
			Expect(host.WithinDir("/mnt/deep/nested/filesystem.erofs", "/mnt")).To(BeTrue())
			Expect(host.WithinDir("/mnt", "/mnt")).To(BeTrue())
		})

		It("does not flag siblings or lookalike prefixes", func() {
			Expect(host.WithinDir("/media/cdrom/filesystem.erofs", "/mnt")).To(BeFalse())
			Expect(host.WithinDir("/mnt2/filesystem.erofs", "/mnt")).To(BeFalse())
			Expect(host.WithinDir("/", "/mnt")).To(BeFalse())
		})
	})

})
