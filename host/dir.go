package host

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// WriteProbeName is the sentinel file created by ProbeWrite. IsDirEmpty
// tolerates a leftover sentinel so an interrupted probe does not wedge
// the next run behind the not-empty check.
const WriteProbeName = ".recstrap_write_test"

// ProbeWrite proves a byte can actually be written to dir by creating
// and removing a sentinel file. Permission bits alone do not tell:
// read-only mounts and ACLs only show up on a real write.
func ProbeWrite(dir string) (err error) {
	probe := filepath.Join(dir, WriteProbeName)

	err = ioutil.WriteFile(probe, []byte("test"), 0644)
	if err != nil {
		err = errors.Wrapf(err, "failed writing probe file to %s", dir)
		return
	}

	os.Remove(probe)
	return
}

// IsDirEmpty reports whether dir is empty for extraction purposes.
// Exactly two entries are ignored: a filesystem-created lost+found and
// a write probe left behind by a previously interrupted run. Anything
// else counts as data.
func IsDirEmpty(dir string) (empty bool, err error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		err = errors.Wrapf(err, "failed listing %s", dir)
		return
	}

	for _, entry := range entries {
		if entry.Name() == "lost+found" || entry.Name() == WriteProbeName {
			continue
		}

		return
	}

	empty = true
	return
}

// IsMountPoint reports whether path sits on a mount boundary, detected
// by comparing its device identifier against its parent's. Root is
// always a mount point.
func IsMountPoint(path string) (mounted bool, err error) {
	if path == "/" {
		mounted = true
		return
	}

	var self, parent unix.Stat_t

	err = unix.Stat(path, &self)
	if err != nil {
		err = errors.Wrapf(err, "failed to stat %s", path)
		return
	}

	err = unix.Stat(filepath.Dir(path), &parent)
	if err != nil {
		err = errors.Wrapf(err, "failed to stat parent of %s", path)
		return
	}

	mounted = self.Dev != parent.Dev
	return
}

// AvailableSpace returns the bytes available for writes on the
// filesystem holding path.
func AvailableSpace(path string) (avail uint64, err error) {
	var st unix.Statfs_t

	err = unix.Statfs(path, &st)
	if err != nil {
		err = errors.Wrapf(err, "failed to statfs %s", path)
		return
	}

	avail = st.Bavail * uint64(st.Frsize)
	return
}
