package hardening

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
)

// SetupScriptName is where the user setup script lands inside the
// target's /root.
const SetupScriptName = "setup-initial-user.sh"

// usernamePattern is the conservative POSIX portable set. The name
// gets spliced into a shell script, so nothing else may pass.
var usernamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

// WriteUserSetupScript drops a script into the target's /root for the
// operator to run inside the chroot, creating the initial user there.
// The script is written rather than executed here: user creation needs
// the target's own passwd tooling, which this process cannot run.
func WriteUserSetupScript(target, username string) (path string, err error) {
	if !usernamePattern.MatchString(username) {
		err = errors.Errorf("invalid username %q", username)
		return
	}

	script := fmt.Sprintf(`#!/bin/sh
# Initial user setup, generated at install time.
# Run inside the chroot: sh /root/%s
set -eu

useradd --create-home --groups wheel %s
passwd %s

echo "User '%s' created. Remove this script when done."
`, SetupScriptName, username, username, username)

	path = filepath.Join(target, "root", SetupScriptName)

	err = ioutil.WriteFile(path, []byte(script), 0700)
	if err != nil {
		err = errors.Wrapf(err, "failed writing user setup script to %s", path)
		return
	}

	return
}
