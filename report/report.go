package report

import (
	"time"

	"github.com/LevitateOS/recstrap/osrelease"
	"gopkg.in/yaml.v3"
)

// Kind names the document format so later consumers can tell report
// versions apart.
const Kind = "install-report/v1"

// Report is the machine-readable record of one run: what got checked,
// what was extracted where, and what the post-extraction steps did.
//
type Report struct {
	Kind string `yaml:"kind"`
	Data Data   `yaml:"data"`
}

type Data struct {
	GeneratedAt time.Time `yaml:"generated_at"`

	Target string `yaml:"target"`
	Rootfs Rootfs `yaml:"rootfs"`

	// Extracted is false for check-only runs.
	Extracted bool `yaml:"extracted"`

	Checks []Check `yaml:"checks"`

	OsRelease *osrelease.OsRelease `yaml:"os_release,omitempty"`

	Overlays  []Overlay `yaml:"overlays,omitempty"`
	Hardening []Step    `yaml:"hardening,omitempty"`

	// SSHHostKeys lets the operator verify the very first connection
	// to the installed machine out of band.
	SSHHostKeys []HostKey `yaml:"ssh_host_keys,omitempty"`
}

type Rootfs struct {
	Path string `yaml:"path"`
	Type string `yaml:"type"`

	// Digest of the image, in `alg:hex` form.
	Digest string `yaml:"digest,omitempty"`
}

type Check struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
	Detail string `yaml:"detail,omitempty"`
}

type Overlay struct {
	Name    string `yaml:"name"`
	Tarball string `yaml:"tarball"`
	Digest  string `yaml:"digest,omitempty"`
	Status  string `yaml:"status"`
}

type Step struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
	Detail string `yaml:"detail,omitempty"`
}

type HostKey struct {
	File        string `yaml:"file"`
	Type        string `yaml:"type"`
	Fingerprint string `yaml:"fingerprint"`
}

func New(data Data) *Report {
	return &Report{
		Kind: Kind,
		Data: data,
	}
}

func (r *Report) AddCheck(name, status, detail string) {
	r.Data.Checks = append(r.Data.Checks, Check{
		Name:   name,
		Status: status,
		Detail: detail,
	})
}

func (r *Report) AddOverlay(name, tarball, digest, status string) {
	r.Data.Overlays = append(r.Data.Overlays, Overlay{
		Name:    name,
		Tarball: tarball,
		Digest:  digest,
		Status:  status,
	})
}

func (r *Report) AddHardeningStep(name, status, detail string) {
	r.Data.Hardening = append(r.Data.Hardening, Step{
		Name:   name,
		Status: status,
		Detail: detail,
	})
}

func (r *Report) AddHostKey(file, keyType, fingerprint string) {
	r.Data.SSHHostKeys = append(r.Data.SSHHostKeys, HostKey{
		File:        file,
		Type:        keyType,
		Fingerprint: fingerprint,
	})
}

func (r *Report) ToYAML() (res []byte) {
	var err error

	res, err = yaml.Marshal(r)
	if err != nil {
		panic(err)
	}

	return
}
