package overlay_test

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"code.cloudfoundry.org/lager"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/LevitateOS/recstrap/overlay"
)

var _ = Describe("Apply", func() {

	var (
		dir     string
		tarball string
		target  string
	)

	BeforeEach(func() {
		var err error

		dir, err = ioutil.TempDir("", "recstrap-overlay")
		Expect(err).ToNot(HaveOccurred())

		tarball = filepath.Join(dir, "site.tar.gz")
		target = filepath.Join(dir, "target")

		Expect(os.Mkdir(target, 0755)).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	writeTarball := func(path string, files map[string]string) {
		f, err := os.Create(path)
		Expect(err).ToNot(HaveOccurred())
		defer f.Close()

		gw := gzip.NewWriter(f)
		defer gw.Close()

		tw := tar.NewWriter(gw)
		defer tw.Close()

		for name, content := range files {
			err = tw.WriteHeader(&tar.Header{
				Name: name,
				Mode: 0644,
				Size: int64(len(content)),
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = tw.Write([]byte(content))
			Expect(err).ToNot(HaveOccurred())
		}
	}

	Context("with a site overlay tarball", func() {
		BeforeEach(func() {
			writeTarball(tarball, map[string]string{
				"etc/motd": "welcome aboard\n",
			})
		})

		It("lays the contents over the target tree", func() {
			res, err := overlay.Apply(
				context.TODO(), lager.NewLogger("test"), "site", tarball, target)
			Expect(err).ToNot(HaveOccurred())

			content, err := ioutil.ReadFile(filepath.Join(target, "etc", "motd"))
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(Equal("welcome aboard\n"))

			Expect(res.Name).To(Equal("site"))
			Expect(res.Tarball).To(Equal(tarball))
			Expect(res.Digest).To(HavePrefix("sha256:"))
		})
	})

	Context("with a tarball that does not exist", func() {
		It("fails", func() {
			_, err := overlay.Apply(
				context.TODO(), lager.NewLogger("test"), "site", tarball, target)
			Expect(err).To(HaveOccurred())
		})
	})

})
