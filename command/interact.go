package command

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"code.cloudfoundry.org/lager"
	"github.com/LevitateOS/recstrap/hardening"
	"github.com/LevitateOS/recstrap/pipeline"
	"github.com/containerd/console"
	"github.com/fatih/color"
)

// interactive reports whether this run may stop and ask questions:
// stdin must be a terminal and no scripting flag may be set.
func (c *recstrapCommand) interactive() bool {
	if c.Quiet || c.Force {
		return false
	}

	_, err := console.ConsoleFromFile(os.Stdin)
	return err == nil
}

// promptInitialUser offers to stage an initial user for the freshly
// extracted system. Nothing runs here - a setup script lands in the
// target's /root for the operator to execute inside the chroot.
func (c *recstrapCommand) promptInitialUser(logger lager.Logger, target string) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Fprintf(os.Stderr, "\nCreate an initial user now? [y/N] ")

	answer, err := reader.ReadString('\n')
	if err != nil {
		return
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer != "y" && answer != "yes" {
		return
	}

	fmt.Fprintf(os.Stderr, "Username: ")

	username, err := reader.ReadString('\n')
	if err != nil {
		return
	}

	path, err := hardening.WriteUserSetupScript(target, strings.TrimSpace(username))
	if err != nil {
		c.warnf("could not stage the user setup script: %v", err)
		return
	}

	logger.Info("user-setup-script", lager.Data{"path": path})
	fmt.Fprintf(os.Stderr, "Wrote %s - run it inside the chroot to finish user setup.\n", path)
}

func (c *recstrapCommand) printPreflightSummary(summary *pipeline.Summary) {
	if c.Quiet {
		return
	}

	fmt.Fprintf(os.Stderr, "\nPRE-FLIGHT CHECK PASSED\n\n")
	fmt.Fprintf(os.Stderr, "  Target: %s\n", summary.Target)
	fmt.Fprintf(os.Stderr, "  Rootfs: %s (%s)\n\n", summary.Rootfs, summary.RootfsType)
	fmt.Fprintf(os.Stderr, "All %d validation checks passed. Run without --check to extract.\n",
		len(summary.Checks))
}

func (c *recstrapCommand) printEpilogue(target string) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(os.Stderr, `
%s

  # generate fstab entries for the new system
  recfstab %s >> %s/etc/fstab

  # chroot into it
  recchroot %s

  # set up the initial user (if you staged one above)
  sh /root/%s

  # OR set a root password manually (the account ships locked)
  passwd root

  # install the bootloader
  bootctl install

  # then leave the chroot and reboot
  exit
  reboot
`, bold("Done! Finish the installation manually:"),
		target, target, target, hardening.SetupScriptName)
}
