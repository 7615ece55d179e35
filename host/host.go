package host

import (
	"io"
	"os"
	"os/exec"
)

func IsRoot() bool {
	return os.Geteuid() == 0
}

// CanRead reports whether the first few bytes of path can actually be
// read. Permission bits are not consulted - a file can carry readable
// metadata and still refuse reads, e.g. behind root-squashed NFS.
func CanRead(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 4)
	_, err = f.Read(buf)

	return err == nil || err == io.EOF
}

// ToolInPath reports whether an executable named tool can be resolved
// through PATH.
func ToolInPath(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}
