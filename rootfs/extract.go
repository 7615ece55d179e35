package rootfs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"code.cloudfoundry.org/lager"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Extractor populates a target directory from a rootfs image. Two
// strategies exist: mountable formats are staged as a temporary
// read-only loop mount and bulk-copied, archive formats go through
// their native extraction tool.
type Extractor struct {
	Logger lager.Logger
	Runner Runner

	// LookPath resolves tool names; swapped out in tests.
	LookPath func(file string) (string, error)

	// MountDir is the temporary mount point used by the
	// mount-and-copy strategy. It never outlives one extraction.
	MountDir string
}

func NewExtractor(logger lager.Logger) *Extractor {
	return &Extractor{
		Logger:   logger,
		Runner:   ExecRunner{},
		LookPath: exec.LookPath,
		MountDir: filepath.Join(os.TempDir(), "recstrap-erofs-mount"),
	}
}

// Extract copies the whole tree of image into target, picking the
// strategy by type. It is all or nothing from the caller's view: any
// failed step surfaces as a single error, and the temporary mount, if
// one was made, is torn down on every exit path.
func (e *Extractor) Extract(ctx context.Context, image, target string, t Type) error {
	switch t {
	case TypeErofs:
		return e.extractErofs(ctx, image, target)
	case TypeSquashfs:
		return e.extractSquashfs(ctx, image, target)
	default:
		return errors.Errorf("no extraction strategy for rootfs type %q", t)
	}
}

func (e *Extractor) extractErofs(ctx context.Context, image, target string) (err error) {
	sess := e.Logger.Session("extract-erofs", lager.Data{
		"image":     image,
		"target":    target,
		"mount-dir": e.MountDir,
	})

	sess.Info("start")
	defer sess.Info("finish")

	err = e.resetMountDir(ctx, sess)
	if err != nil {
		return
	}

	guard := &mountGuard{ctx: ctx, runner: e.Runner, dir: e.MountDir}
	defer func() {
		err = multierr.Append(err, guard.release())
	}()

	sess.Info("mount")
	err = e.Runner.Run(ctx, "mount", "-t", "erofs", "-o", "ro,loop", image, e.MountDir)
	if err != nil {
		err = errors.Wrapf(err, "failed mounting %s at %s", image, e.MountDir)
		return
	}
	guard.mounted = true

	// -a keeps permissions, ownership, timestamps and symlinks
	// intact; -T copies the tree contents instead of nesting the
	// mount directory inside the target
	sess.Info("copy")
	err = e.Runner.Run(ctx, "cp", "-aT", e.MountDir, target)
	if err != nil {
		err = errors.Wrapf(err, "failed copying tree from %s to %s", e.MountDir, target)
		return
	}

	return
}

// resetMountDir clears a stale mount directory left over by an
// interrupted run, attempting an unmount first in case the kernel
// still holds it, then creates the directory fresh.
func (e *Extractor) resetMountDir(ctx context.Context, logger lager.Logger) (err error) {
	if _, statErr := os.Stat(e.MountDir); statErr == nil {
		logger.Info("clearing-stale-mount-dir")

		_ = e.Runner.Run(ctx, "umount", e.MountDir)
		_ = os.RemoveAll(e.MountDir)
	}

	err = os.MkdirAll(e.MountDir, 0755)
	if err != nil {
		err = errors.Wrapf(err, "failed creating mount point %s", e.MountDir)
		return
	}

	return
}

// extractSquashfs goes through unsquashfs, no mount needed. -f
// force-writes into the destination, which the pre-flight checks have
// already vetted.
func (e *Extractor) extractSquashfs(ctx context.Context, image, target string) (err error) {
	sess := e.Logger.Session("extract-squashfs", lager.Data{
		"image":  image,
		"target": target,
	})

	sess.Info("start")
	defer sess.Info("finish")

	_, err = e.LookPath("unsquashfs")
	if err != nil {
		err = errors.Wrap(err, "unsquashfs not found in PATH (install squashfs-tools)")
		return
	}

	err = e.Runner.Run(ctx, "unsquashfs", "-f", "-d", target, image)
	if err != nil {
		err = errors.Wrapf(err, "failed unsquashing %s into %s", image, target)
		return
	}

	return
}

// mountGuard converges every exit path of an extraction onto the same
// teardown: unmount only if the mount actually happened, remove the
// directory always.
type mountGuard struct {
	ctx     context.Context
	runner  Runner
	dir     string
	mounted bool
}

func (g *mountGuard) release() (err error) {
	if g.mounted {
		err = g.runner.Run(g.ctx, "umount", g.dir)
		if err != nil {
			err = errors.Wrapf(err, "failed unmounting %s", g.dir)
		}
	}

	if removeErr := os.RemoveAll(g.dir); removeErr != nil {
		err = multierr.Append(err, errors.Wrapf(removeErr, "failed removing mount dir %s", g.dir))
	}

	return
}
