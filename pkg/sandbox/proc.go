package sandbox

import (
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// stopGroup ends the process group led by pid (Run starts every process with
// Setpgid, so pgid == pid). done is the leader's Wait result. The group gets
// SIGTERM, then SIGKILL once grace has passed without the leader exiting.
func stopGroup(pid int, done <-chan error, grace time.Duration) error {
	_ = syscall.Kill(-pid, syscall.SIGTERM)

	t := time.NewTimer(grace)
	defer t.Stop()

	var err error
	select {
	case err = <-done:
	case <-t.C:
		log.Debug().Int("pgid", pid).Dur("grace", grace).Msg("process group ignored SIGTERM, killing")
		_ = syscall.Kill(-pid, syscall.SIGKILL)
		err = <-done
	}
	// background children can outlive the leader
	_ = syscall.Kill(-pid, syscall.SIGKILL)
	return err
}
