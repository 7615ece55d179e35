package report

import (
	"os"

	digest "github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

// ComputeDigest hashes the file at path into the canonical `alg:hex`
// form used throughout the report.
func ComputeDigest(path string) (res string, err error) {
	f, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "failed opening %s", path)
		return
	}
	defer f.Close()

	d, err := digest.FromReader(f)
	if err != nil {
		err = errors.Wrapf(err, "failed computing digest of %s", path)
		return
	}

	res = d.String()
	return
}
