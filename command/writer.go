package command

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// writer resolves an output destination: '-' means stdout, anything
// else a file created fresh. Stdout comes wrapped so callers can
// Close unconditionally.
func writer(output string) (w io.WriteCloser, err error) {
	if output == "-" {
		w = nopCloser{os.Stdout}
		return
	}

	f, err := os.Create(output)
	if err != nil {
		err = errors.Wrapf(err, "failed creating output file %s", output)
		return
	}

	w = f
	return
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
