package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/LevitateOS/recstrap/host"
	"github.com/LevitateOS/recstrap/rootfs"
)

// CheckStatus is the outcome of one pre-flight check.
type CheckStatus string

const (
	StatusPassed  CheckStatus = "passed"
	StatusSkipped CheckStatus = "skipped"
	StatusWarned  CheckStatus = "warned"
	StatusFailed  CheckStatus = "failed"
)

// CheckResult is one check outcome, kept for the install report.
type CheckResult struct {
	Name   string
	Status CheckStatus
	Detail string
}

// Check is a single pre-flight validation step. Protects states the
// invariant being defended, Consequence what the operator risks when
// the check is weakened. Both travel with the check so a failure
// carries its own rationale, and the tables below are the one place to
// read everything the pipeline refuses to do.
type Check struct {
	Name        string
	Protects    string
	Consequence string

	// Skippable checks are bypassed by force mode. The protected
	// path check is never one of them.
	Skippable bool

	Run func(ctx context.Context, s *state) (CheckStatus, *Error)
}

// state accumulates what the checks establish: the canonical target
// first, then the resolved image path and its declared type. Later
// checks rely on fields earlier ones filled in, which is why the phase
// order is fixed.
type state struct {
	opts Opts

	target    string
	image     string
	imageType rootfs.Type

	results []CheckResult
	detail  string
}

// notef attaches a note to the check currently running; it surfaces as
// the Detail of that check's result.
func (s *state) notef(format string, args ...interface{}) {
	s.detail = fmt.Sprintf(format, args...)
}

func (s *state) takeDetail() (detail string) {
	detail = s.detail
	s.detail = ""
	return
}

var environmentChecks = []Check{
	{
		Name:        "running-as-root",
		Protects:    "extraction happens with the authority to write system paths and mount filesystems",
		Consequence: "a non-root run would die on the first privileged operation with a confusing error",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			if !host.IsRoot() {
				return StatusFailed, ErrNotRoot()
			}

			return StatusPassed, nil
		},
	},
}

var targetChecks = []Check{
	{
		Name:        "target-exists",
		Protects:    "the target directory is present before anything is attempted against it",
		Consequence: "later steps would fail midway with unrelated 'no such file' errors",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			if _, err := os.Stat(s.opts.Target); err != nil {
				return StatusFailed, ErrTargetNotFound(s.opts.Target)
			}

			return StatusPassed, nil
		},
	},
	{
		Name:        "target-is-directory",
		Protects:    "the target is a directory, not a file or device node",
		Consequence: "extracting over a file or device would destroy its contents irrecoverably",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			fi, err := os.Stat(s.opts.Target)
			if err != nil || !fi.IsDir() {
				return StatusFailed, ErrNotADirectory(s.opts.Target)
			}

			return StatusPassed, nil
		},
	},
	{
		Name:        "resolve-target",
		Protects:    "every later check sees one canonical path with symlinks and dot-dots collapsed",
		Consequence: "a symlink at the raw path could smuggle a protected directory past the checks",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			resolved, err := host.Canonicalize(s.opts.Target)
			if err != nil {
				return StatusFailed, NewError(CodeTargetNotFound, "%v", err)
			}

			s.target = resolved
			return StatusPassed, nil
		},
	},
	{
		Name:        "target-not-protected",
		Protects:    "critical system directories can never become an extraction target",
		Consequence: "one mistyped argument would overwrite / or /usr and leave the machine unbootable",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			if host.IsProtectedPath(s.target) {
				return StatusFailed, ErrProtectedPath(s.target)
			}

			return StatusPassed, nil
		},
	},
	{
		Name:        "target-writable",
		Protects:    "a byte can really be written before the bulk copy starts",
		Consequence: "extraction would begin, die halfway on a read-only mount, and leave partial state",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			if err := host.ProbeWrite(s.target); err != nil {
				return StatusFailed, ErrNotWritable(s.target)
			}

			return StatusPassed, nil
		},
	},
	{
		Name:        "target-is-mount-point",
		Skippable:   true,
		Protects:    "the operator really mounted a filesystem instead of filling a directory on the live system",
		Consequence: "the install would land on the wrong disk and evaporate on reboot",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			mounted, err := host.IsMountPoint(s.target)
			if err != nil || !mounted {
				return StatusFailed, ErrNotMountPoint(s.target)
			}

			return StatusPassed, nil
		},
	},
	{
		Name:        "target-empty",
		Skippable:   true,
		Protects:    "existing data in the target is never silently overwritten",
		Consequence: "a non-empty directory would have its contents clobbered without warning",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			empty, err := host.IsDirEmpty(s.target)
			if err != nil || !empty {
				return StatusFailed, ErrTargetNotEmpty(s.target)
			}

			return StatusPassed, nil
		},
	},
	{
		Name:        "target-has-space",
		Protects:    "the target filesystem can hold the expanded image before any copying starts",
		Consequence: "running out of space mid-copy leaves a corrupt, half-written system",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			avail, err := host.AvailableSpace(s.target)
			if err != nil {
				// a failed query is not worth blocking an
				// install over
				s.notef("cannot check disk space: %v", err)
				return StatusWarned, nil
			}

			if avail < MinRequiredBytes {
				return StatusFailed, ErrInsufficientSpace(
					MinRequiredBytes/(1024*1024), avail/(1024*1024))
			}

			return StatusPassed, nil
		},
	},
}

var sourceChecks = []Check{
	{
		Name:        "resolve-rootfs",
		Protects:    "the image is an existing regular file, pinned to one canonical path",
		Consequence: "a moved or special file would fail deep inside extraction instead of up front",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			path := s.opts.Rootfs

			if path == "" {
				found, ok := rootfs.Find()
				if !ok {
					return StatusFailed, ErrRootfsNotFound(rootfs.SearchPaths)
				}

				s.notef("discovered %s", found)
				path = found
			}

			fi, err := os.Stat(path)
			if err != nil {
				return StatusFailed, ErrRootfsNotFound([]string{path})
			}

			if !fi.Mode().IsRegular() {
				return StatusFailed, ErrRootfsNotFile(path)
			}

			resolved, err := host.Canonicalize(path)
			if err != nil {
				return StatusFailed, NewError(CodeRootfsNotFound, "%v", err)
			}

			s.image = resolved
			return StatusPassed, nil
		},
	},
	{
		Name:        "rootfs-readable",
		Protects:    "the image bytes can actually be read, not just its metadata inspected",
		Consequence: "extraction would start and then die on the first read of an unreadable image",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			if !host.CanRead(s.image) {
				return StatusFailed, ErrRootfsNotReadable(s.image)
			}

			return StatusPassed, nil
		},
	},
	{
		Name:        "rootfs-outside-target",
		Protects:    "the image does not live inside the directory being populated",
		Consequence: "the copy would overwrite its own source partway through extraction",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			if host.WithinDir(s.image, s.target) {
				return StatusFailed, ErrRootfsInsideTarget(s.image, s.target)
			}

			return StatusPassed, nil
		},
	},
	{
		Name:        "rootfs-extension-supported",
		Protects:    "the image format is declared explicitly, never guessed from content",
		Consequence: "guessing would happily extract mislabeled media with unpredictable results",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			switch t := rootfs.TypeFromPath(s.image); t {
			case rootfs.TypeErofs:
				s.imageType = t
				return StatusPassed, nil
			case rootfs.TypeSquashfs:
				return StatusFailed, ErrInvalidRootfsFormat(s.image,
					"squashfs is no longer supported (expected a .erofs image)")
			default:
				return StatusFailed, ErrInvalidRootfsFormat(s.image,
					"expected .erofs extension (squashfs is no longer supported)")
			}
		},
	},
}

var formatChecks = []Check{
	{
		Name:        "rootfs-magic",
		Protects:    "the declared format matches the image's binary signature before anything mounts it",
		Consequence: "a corrupt or mislabeled image would fail loudly halfway through extraction",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			if err := rootfs.VerifyMagic(s.image, s.imageType); err != nil {
				return StatusFailed, ErrInvalidRootfsFormat(s.image, err.Error())
			}

			return StatusPassed, nil
		},
	},
	{
		Name:        "extraction-tools-in-path",
		Protects:    "the tools the extraction strategy shells out to exist before anything destructive runs",
		Consequence: "a missing binary would abort the run between mounting and copying",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			for _, tool := range []string{"mount", "umount", "cp"} {
				if !host.ToolInPath(tool) {
					return StatusFailed, ErrToolNotInstalled(tool,
						"needed for mount-and-copy extraction")
				}
			}

			return StatusPassed, nil
		},
	},
	{
		Name:        "erofs-kernel-support",
		Protects:    "the kernel can mount EROFS, loading the module when it is not built in",
		Consequence: "the mount would fail later with a cryptic 'unknown filesystem type'",
		Run: func(ctx context.Context, s *state) (CheckStatus, *Error) {
			if !host.EnsureFilesystem(ctx, "erofs") {
				return StatusFailed, ErrErofsNotSupported()
			}

			return StatusPassed, nil
		},
	},
}
