package rootfs

import (
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Runner executes the external tools the extractor leans on. The
// default implementation shells out; tests substitute a fake to drive
// the failure paths without touching real mounts.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner invokes commands directly, folding their combined output
// into the returned error so the tool's own diagnostics survive into
// the failure message.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (err error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		err = errors.Wrapf(err, "`%s %s` failed - %s",
			name, strings.Join(args, " "), strings.TrimSpace(string(out)))
		return
	}

	return
}
