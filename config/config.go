package config

import (
	"github.com/pkg/errors"
)

// Profile is an install preset: the values an operator would otherwise
// pass as flags, checked into a file so repeated installs across a
// fleet stay uniform. Command line flags always win over profile
// values.
//
// Example:
//
// ```
// target = "/mnt"
// rootfs = "/media/cdrom/live/filesystem.erofs"
//
// overlay "site" {
//   tarball = "/media/usb/site-overlay.tar.gz"
// }
// ```
//
type Profile struct {
	// Target is the directory to populate, normally a freshly
	// mounted filesystem under /mnt.
	Target string `hcl:"target,optional"`

	// Rootfs points at the image to extract; when empty, the
	// well-known live media locations get searched.
	Rootfs string `hcl:"rootfs,optional"`

	// Force skips the mount-point and empty-target checks, exactly
	// like --force.
	Force bool `hcl:"force,optional"`

	// Report is where the YAML install report lands ('-' for
	// stdout).
	Report string `hcl:"report,optional"`

	Overlays []Overlay `hcl:"overlay,block"`
}

// Overlay is a site tarball laid over the extracted tree after
// verification - config files, keys, fleet customizations.
//
type Overlay struct {
	Name string `hcl:"name,label"`

	Tarball string `hcl:"tarball"`
}

// Validate performs the semantic checks that HCL decoding alone does
// not cover.
func (p *Profile) Validate() (err error) {
	seen := map[string]bool{}

	for _, overlay := range p.Overlays {
		if overlay.Tarball == "" {
			err = errors.Errorf("overlay %q has an empty tarball path", overlay.Name)
			return
		}

		if seen[overlay.Name] {
			err = errors.Errorf("overlay %q declared twice", overlay.Name)
			return
		}

		seen[overlay.Name] = true
	}

	return
}
