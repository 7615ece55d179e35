package osrelease

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// OsRelease is the identity of an installed tree, scanned from its
// os-release file.
type OsRelease struct {
	OS         string `yaml:"os"`
	Version    string `yaml:"version"`
	Codename   string `yaml:"codename,omitempty"`
	PrettyName string `yaml:"pretty_name,omitempty"`
}

// Gather reads the os-release file of the tree rooted at root, trying
// etc/os-release first and usr/lib/os-release as the documented
// fallback.
func Gather(root string) (info OsRelease, err error) {
	candidates := []string{
		filepath.Join(root, "etc", "os-release"),
		filepath.Join(root, "usr", "lib", "os-release"),
	}

	for _, candidate := range candidates {
		var f *os.File

		f, err = os.Open(candidate)
		if err != nil {
			continue
		}

		info = ScanInfo(f)
		f.Close()

		err = nil
		return
	}

	err = errors.Errorf("no os-release file under %s", root)
	return
}

// ScanInfo extracts the fields this tool cares about from os-release
// content. Comments, blank lines and unknown keys are skipped.
func ScanInfo(reader io.Reader) (info OsRelease) {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, "=", 2)
		if len(fields) != 2 {
			continue
		}

		k, v := fields[0], strings.Trim(fields[1], `"'`)

		switch k {
		case "ID":
			info.OS = v
		case "VERSION_ID":
			info.Version = v
		case "VERSION_CODENAME":
			info.Codename = v
		case "PRETTY_NAME":
			info.PrettyName = v
		}
	}

	return
}
