package overlay

import (
	"context"

	"code.cloudfoundry.org/lager"
	"github.com/LevitateOS/recstrap/report"
	"github.com/mholt/archiver"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Result records one applied site overlay for the install report.
type Result struct {
	Name    string
	Tarball string
	Digest  string
}

// Apply unarchives a site overlay tarball over the extracted tree -
// config files, keys, fleet customizations. The tarball digest is
// computed concurrently with the unarchiving, so large overlays get
// read by both sides at full speed.
func Apply(ctx context.Context, logger lager.Logger, name, tarball, target string) (res Result, err error) {
	sess := logger.Session("apply-overlay", lager.Data{
		"name":    name,
		"tarball": tarball,
		"target":  target,
	})

	sess.Info("start")
	defer sess.Info("finish")

	var (
		eg     *errgroup.Group
		digest string
	)

	eg, ctx = errgroup.WithContext(ctx)

	eg.Go(func() error {
		var derr error

		digest, derr = report.ComputeDigest(tarball)
		if derr != nil {
			return errors.Wrapf(derr,
				"failed computing digest for overlay tarball %s", tarball)
		}

		return nil
	})

	err = archiver.Unarchive(tarball, target)
	if err != nil {
		err = errors.Wrapf(err,
			"failed unarchiving %s into %s", tarball, target)
		return
	}

	err = eg.Wait()
	if err != nil {
		return
	}

	res = Result{
		Name:    name,
		Tarball: tarball,
		Digest:  digest,
	}

	return
}
