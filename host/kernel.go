package host

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
)

const procFilesystems = "/proc/filesystems"

// FilesystemSupported reports whether the kernel can currently mount
// filesystems of the named type.
func FilesystemSupported(name string) bool {
	f, err := os.Open(procFilesystems)
	if err != nil {
		return false
	}
	defer f.Close()

	return ScanFilesystemSupport(f, name)
}

// ScanFilesystemSupport scans /proc/filesystems-formatted content for
// an exact filesystem name. Each line carries an optional "nodev" tag
// followed by the type name.
func ScanFilesystemSupport(reader io.Reader, name string) bool {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if fields[len(fields)-1] == name {
			return true
		}
	}

	return false
}

// EnsureFilesystem makes a best-effort attempt at getting kernel
// support for the named filesystem, loading the matching module when
// it is not already present. It reports whether the filesystem is
// usable after the attempt.
func EnsureFilesystem(ctx context.Context, name string) bool {
	if FilesystemSupported(name) {
		return true
	}

	// modprobe needs root, which the pipeline establishes first
	_ = exec.CommandContext(ctx, "modprobe", name).Run()

	return FilesystemSupported(name)
}
