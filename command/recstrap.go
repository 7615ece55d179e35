package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"code.cloudfoundry.org/lager"
	"github.com/LevitateOS/recstrap/config"
	"github.com/LevitateOS/recstrap/hardening"
	"github.com/LevitateOS/recstrap/osrelease"
	"github.com/LevitateOS/recstrap/overlay"
	"github.com/LevitateOS/recstrap/pipeline"
	"github.com/LevitateOS/recstrap/report"
	"github.com/fatih/color"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Recstrap is the single top-level command: validate the environment,
// extract the rootfs image onto the target, verify, harden.
var Recstrap recstrapCommand

type recstrapCommand struct {
	Rootfs  string            `long:"rootfs" description:"path to the rootfs image (.erofs); searched in the well-known live media locations when omitted"`
	Force   bool              `long:"force" short:"f" description:"skip the mount-point and empty-target checks"`
	Quiet   bool              `long:"quiet" short:"q" description:"minimal output, for scripting"`
	Check   bool              `long:"check" short:"c" description:"run pre-flight validation only, don't extract"`
	Profile string            `long:"profile" short:"p" description:"HCL install profile carrying preset target, rootfs and site overlays"`
	Report  string            `long:"report" description:"write a YAML install report to this path ('-' for stdout)"`
	Vars    map[string]string `long:"var" short:"v" description:"variables to interpolate into the profile"`

	Args struct {
		Target string `positional-arg-name:"TARGET" description:"directory to populate (a mounted, empty filesystem, e.g. /mnt)"`
	} `positional-args:"yes"`
}

// runSettings is the merge of profile values and command line flags.
// Flags win; the target may come from either side.
type runSettings struct {
	opts     pipeline.Opts
	report   string
	overlays []config.Overlay
}

func (c *recstrapCommand) Execute(args []string) (err error) {
	color.NoColor = false

	ctx := context.TODO()
	logger := c.buildLogger()

	run, err := c.assembleRun()
	if err != nil {
		return
	}

	summary, err := pipeline.New(logger).Run(ctx, run.opts)
	if err != nil {
		return
	}

	rep := c.buildReport(logger, summary)

	if summary.Extracted {
		c.harden(ctx, logger, run, summary, rep)
	}

	if run.report != "" {
		err = c.writeReport(run.report, rep)
		if err != nil {
			return
		}
	}

	if c.Check {
		c.printPreflightSummary(summary)
		return
	}

	if summary.Extracted && c.interactive() {
		c.promptInitialUser(logger, summary.Target)
	}

	if !c.Quiet {
		c.printEpilogue(summary.Target)
	}

	return
}

func (c *recstrapCommand) buildLogger() lager.Logger {
	level := lager.INFO
	if c.Quiet {
		level = lager.ERROR
	}

	logger := lager.NewLogger("recstrap")
	logger.RegisterSink(lager.NewWriterSink(os.Stderr, level))

	return logger
}

func (c *recstrapCommand) assembleRun() (run runSettings, err error) {
	var profile *config.Profile

	if c.Profile != "" {
		profile, err = config.ParseFile(c.Profile, c.Vars)
		if err != nil {
			diagsErr, ok := errors.Cause(err).(hcl.Diagnostics)
			if ok {
				fmt.Fprintln(os.Stderr, config.PrettyDiagnosticFile(c.Profile, diagsErr[0]))
			}

			err = errors.Wrapf(err, "failed to parse profile %s", c.Profile)
			return
		}
	}

	run.opts = pipeline.Opts{
		Target:    c.Args.Target,
		Rootfs:    c.Rootfs,
		Force:     c.Force,
		CheckOnly: c.Check,
	}
	run.report = c.Report

	if profile != nil {
		if run.opts.Target == "" {
			run.opts.Target = profile.Target
		}

		if run.opts.Rootfs == "" {
			run.opts.Rootfs = profile.Rootfs
		}

		run.opts.Force = run.opts.Force || profile.Force

		if run.report == "" {
			run.report = profile.Report
		}

		run.overlays = profile.Overlays
	}

	if run.opts.Target == "" {
		err = errors.Errorf("no target directory given - pass TARGET or set `target` in the profile")
		return
	}

	return
}

func (c *recstrapCommand) buildReport(logger lager.Logger, summary *pipeline.Summary) *report.Report {
	rep := report.New(report.Data{
		GeneratedAt: time.Now().UTC(),
		Target:      summary.Target,
		Rootfs: report.Rootfs{
			Path: summary.Rootfs,
			Type: summary.RootfsType.String(),
		},
		Extracted: summary.Extracted,
	})

	for _, res := range summary.Checks {
		rep.AddCheck(res.Name, string(res.Status), res.Detail)
	}

	digest, err := report.ComputeDigest(summary.Rootfs)
	if err != nil {
		logger.Error("rootfs-digest", err)
	} else {
		rep.Data.Rootfs.Digest = digest
	}

	if summary.Extracted {
		info, err := osrelease.Gather(summary.Target)
		if err != nil {
			logger.Info("os-release-unavailable", lager.Data{"error": err.Error()})
		} else {
			rep.Data.OsRelease = &info
			logger.Info("extracted-system", lager.Data{"pretty-name": info.PrettyName})
		}
	}

	return rep
}

// harden runs the post-extraction steps. All of them are best-effort:
// a failure here leaves a working system behind, so it warns and moves
// on instead of failing an install that already landed on disk.
func (c *recstrapCommand) harden(
	ctx context.Context, logger lager.Logger,
	run runSettings, summary *pipeline.Summary, rep *report.Report,
) {
	keys, err := hardening.RegenerateSSHHostKeys(ctx, logger, summary.Target)
	if err != nil {
		c.warnf("ssh host key regeneration failed: %v", err)
		c.warnf("run `ssh-keygen -A` inside the chroot to generate keys manually")
		rep.AddHardeningStep("ssh-host-keys", "warning", err.Error())
	} else {
		rep.AddHardeningStep("ssh-host-keys", "regenerated", "")

		for _, key := range keys {
			rep.AddHostKey(key.File, key.Type, key.Fingerprint)
		}
	}

	for _, o := range run.overlays {
		res, err := overlay.Apply(ctx, logger, o.Name, o.Tarball, summary.Target)
		if err != nil {
			c.warnf("overlay %q failed: %v", o.Name, err)
			rep.AddOverlay(o.Name, o.Tarball, "", "warning: "+err.Error())
			continue
		}

		rep.AddOverlay(res.Name, res.Tarball, res.Digest, "applied")
	}
}

func (c *recstrapCommand) writeReport(dest string, rep *report.Report) (err error) {
	w, err := writer(dest)
	if err != nil {
		return
	}

	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	_, err = fmt.Fprintf(w, "%s", rep.ToYAML())
	if err != nil {
		err = errors.Wrapf(err, "failed writing install report to %s", dest)
		return
	}

	return
}

func (c *recstrapCommand) warnf(format string, args ...interface{}) {
	if c.Quiet {
		return
	}

	fmt.Fprintf(os.Stderr, "recstrap: warning: "+format+"\n", args...)
}
