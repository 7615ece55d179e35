package pipeline

import (
	"context"

	"code.cloudfoundry.org/lager"
	"github.com/LevitateOS/recstrap/rootfs"
)

// MinRequiredBytes is the free space floor enforced before extraction:
// the compressed image expands to roughly this much.
const MinRequiredBytes uint64 = 2 * 1024 * 1024 * 1024

// Opts selects one pipeline run over one target and one image.
type Opts struct {
	// Target is the directory to populate.
	Target string

	// Rootfs is an explicit image path; when empty, the well-known
	// live media locations are searched instead.
	Rootfs string

	// Force skips the mount-point and empty-target checks. It never
	// skips the protected path check.
	Force bool

	// CheckOnly runs every validation phase and stops right before
	// extraction.
	CheckOnly bool
}

// Summary is what a successful run established, kept around for the
// install report.
type Summary struct {
	Target     string
	Rootfs     string
	RootfsType rootfs.Type
	Checks     []CheckResult

	// Extracted is false for check-only runs.
	Extracted bool
}

// Pipeline drives one run through its phases in fixed order:
// environment, target validation, source validation, format and tool
// validation, then extraction and post-extraction verification. The
// first failing check terminates the run; nothing is retried.
type Pipeline struct {
	logger    lager.Logger
	extractor *rootfs.Extractor
}

func New(logger lager.Logger) *Pipeline {
	return &Pipeline{
		logger:    logger,
		extractor: rootfs.NewExtractor(logger),
	}
}

// phases lists the check tables in the only order that is safe: each
// phase trusts everything the previous ones established.
var phases = []struct {
	name   string
	checks []Check
}{
	{"environment", environmentChecks},
	{"target", targetChecks},
	{"source", sourceChecks},
	{"format", formatChecks},
}

func (p *Pipeline) Run(ctx context.Context, opts Opts) (sum *Summary, err error) {
	sess := p.logger.Session("run", lager.Data{
		"target":     opts.Target,
		"force":      opts.Force,
		"check-only": opts.CheckOnly,
	})

	sess.Info("start")
	defer sess.Info("finish")

	s := &state{opts: opts}

	for _, phase := range phases {
		err = p.runPhase(ctx, sess, s, phase.name, phase.checks)
		if err != nil {
			return
		}
	}

	if opts.CheckOnly {
		sess.Info("pre-flight-only", lager.Data{"checks": len(s.results)})
		sum = p.summarize(s, false)
		return
	}

	err = p.extract(ctx, sess, s)
	if err != nil {
		return
	}

	if missing := rootfs.MissingEssentialDirs(s.target); len(missing) > 0 {
		verr := ErrVerificationFailed(missing)
		sess.Error("verification-failed", verr, lager.Data{"missing": missing})

		err = verr
		return
	}

	sum = p.summarize(s, true)
	return
}

func (p *Pipeline) runPhase(ctx context.Context, logger lager.Logger, s *state, name string, checks []Check) error {
	sess := logger.Session(name)

	sess.Info("start")
	defer sess.Info("finish")

	for i := range checks {
		check := &checks[i]

		if check.Skippable && s.opts.Force {
			sess.Info("check-skipped", lager.Data{"check": check.Name})
			s.results = append(s.results, CheckResult{
				Name:   check.Name,
				Status: StatusSkipped,
				Detail: "skipped by force",
			})
			continue
		}

		status, cerr := check.Run(ctx, s)
		detail := s.takeDetail()

		if cerr != nil {
			sess.Error("check-failed", cerr, lager.Data{
				"check":       check.Name,
				"protects":    check.Protects,
				"consequence": check.Consequence,
			})
			s.results = append(s.results, CheckResult{
				Name:   check.Name,
				Status: StatusFailed,
				Detail: detail,
			})
			return cerr
		}

		if status == StatusWarned {
			sess.Info("check-warned", lager.Data{"check": check.Name, "detail": detail})
		}

		s.results = append(s.results, CheckResult{
			Name:   check.Name,
			Status: status,
			Detail: detail,
		})
	}

	return nil
}

func (p *Pipeline) extract(ctx context.Context, logger lager.Logger, s *state) error {
	err := p.extractor.Extract(ctx, s.image, s.target, s.imageType)
	if err != nil {
		logger.Error("extraction-failed", err)
		return ErrExtractionFailed(err.Error())
	}

	return nil
}

func (p *Pipeline) summarize(s *state, extracted bool) *Summary {
	return &Summary{
		Target:     s.target,
		Rootfs:     s.image,
		RootfsType: s.imageType,
		Checks:     s.results,
		Extracted:  extracted,
	}
}
