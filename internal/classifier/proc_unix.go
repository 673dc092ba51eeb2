//go:build unix

package classifier

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// configureProcess starts the classifier in its own process group and kills
// the whole group on cancellation, so helpers it spawned die with it.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
