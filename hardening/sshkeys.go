package hardening

import (
	"context"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"

	"code.cloudfoundry.org/lager"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// HostKey describes one freshly generated SSH host key. The
// fingerprint lands in the install report so the operator can verify
// the first connection to the new machine out of band.
type HostKey struct {
	File        string
	Type        string
	Fingerprint string
}

// RegenerateSSHHostKeys removes the host keys the live image shipped
// with and generates fresh ones directly into the target tree. Every
// installation made from the same image would otherwise share private
// keys, turning one leaked medium into a fleet-wide impersonation kit.
//
// A tree without etc/ssh has no keys to replace and is left alone.
func RegenerateSSHHostKeys(ctx context.Context, logger lager.Logger, target string) (keys []HostKey, err error) {
	sess := logger.Session("regenerate-ssh-host-keys", lager.Data{"target": target})

	sess.Info("start")
	defer sess.Info("finish")

	sshDir := filepath.Join(target, "etc", "ssh")
	if _, statErr := os.Stat(sshDir); statErr != nil {
		sess.Info("no-etc-ssh")
		return
	}

	err = removeStaleKeys(sshDir)
	if err != nil {
		return
	}

	// -A generates every missing host key type; -f makes ssh-keygen
	// operate on the target tree instead of the live system
	out, err := exec.CommandContext(ctx, "ssh-keygen", "-A", "-f", target).CombinedOutput()
	if err != nil {
		err = errors.Wrapf(err, "failed generating host keys - %s", string(out))
		return
	}

	keys, err = gatherHostKeys(sshDir)
	if err != nil {
		return
	}

	sess.Info("regenerated", lager.Data{"count": len(keys)})
	return
}

func removeStaleKeys(sshDir string) (err error) {
	stale, err := filepath.Glob(filepath.Join(sshDir, "ssh_host_*_key*"))
	if err != nil {
		err = errors.Wrapf(err, "failed globbing host keys under %s", sshDir)
		return
	}

	for _, path := range stale {
		err = os.Remove(path)
		if err != nil {
			err = errors.Wrapf(err, "failed removing stale host key %s", path)
			return
		}
	}

	return
}

func gatherHostKeys(sshDir string) (keys []HostKey, err error) {
	pubs, err := filepath.Glob(filepath.Join(sshDir, "ssh_host_*_key.pub"))
	if err != nil {
		err = errors.Wrapf(err, "failed globbing public keys under %s", sshDir)
		return
	}

	for _, path := range pubs {
		var (
			content []byte
			pub     ssh.PublicKey
		)

		content, err = ioutil.ReadFile(path)
		if err != nil {
			err = errors.Wrapf(err, "failed reading public key %s", path)
			return
		}

		pub, _, _, _, err = ssh.ParseAuthorizedKey(content)
		if err != nil {
			err = errors.Wrapf(err, "failed parsing public key %s", path)
			return
		}

		keys = append(keys, HostKey{
			File:        filepath.Base(path),
			Type:        pub.Type(),
			Fingerprint: ssh.FingerprintSHA256(pub),
		})
	}

	return
}
