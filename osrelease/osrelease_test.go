package osrelease_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/LevitateOS/recstrap/osrelease"
)

var _ = Describe("OsRelease", func() {

	Describe("ScanInfo", func() {

		var (
			content string
			info    osrelease.OsRelease
		)

		JustBeforeEach(func() {
			info = osrelease.ScanInfo(strings.NewReader(content))
		})

		Context("with a regular os-release file", func() {
			BeforeEach(func() {
				content = sampleOsRelease
			})

			It("picks out the identity fields", func() {
				Expect(info.OS).To(Equal("levitateos"))
				Expect(info.Version).To(Equal("1.2"))
				Expect(info.Codename).To(Equal("updraft"))
				Expect(info.PrettyName).To(Equal("LevitateOS 1.2 (Updraft)"))
			})
		})

		Context("with unquoted and single-quoted values", func() {
			BeforeEach(func() {
				content = "ID=levitateos\nVERSION_ID='1.2'\n"
			})

			It("strips either quoting style", func() {
				Expect(info.OS).To(Equal("levitateos"))
				Expect(info.Version).To(Equal("1.2"))
			})
		})

		Context("with comments, blanks and malformed lines in between", func() {
			BeforeEach(func() {
				content = "# leading comment\n\nnot a key value pair\nID=levitateos\n"
			})

			It("skips past them", func() {
				Expect(info.OS).To(Equal("levitateos"))
			})
		})

		Context("with nothing useful at all", func() {
			BeforeEach(func() {
				content = "# nothing here\n"
			})

			It("comes back empty", func() {
				Expect(info).To(Equal(osrelease.OsRelease{}))
			})
		})
	})

	Describe("Gather", func() {

		var root string

		BeforeEach(func() {
			var err error

			root, err = ioutil.TempDir("", "recstrap-osrelease")
			Expect(err).ToNot(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(root)
		})

		writeOsRelease := func(relative string) {
			path := filepath.Join(root, relative)

			Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
			Expect(ioutil.WriteFile(path, []byte(sampleOsRelease), 0644)).To(Succeed())
		}

		Context("with etc/os-release present", func() {
			BeforeEach(func() {
				writeOsRelease("etc/os-release")
			})

			It("reads it", func() {
				info, err := osrelease.Gather(root)
				Expect(err).ToNot(HaveOccurred())
				Expect(info.OS).To(Equal("levitateos"))
			})
		})

		Context("with only the usr/lib fallback", func() {
			BeforeEach(func() {
				writeOsRelease("usr/lib/os-release")
			})

			It("falls back to it", func() {
				info, err := osrelease.Gather(root)
				Expect(err).ToNot(HaveOccurred())
				Expect(info.OS).To(Equal("levitateos"))
			})
		})

		Context("with neither location populated", func() {
			It("fails", func() {
				_, err := osrelease.Gather(root)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("no os-release file"))
			})
		})
	})

})
