package sandbox

import (
	"context"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// exitInterrupted is reported for a foreground command replaced by a newer one.
const exitInterrupted = 130

// LocalShell emulates a single interactive terminal on top of a Local sandbox.
// Starting a command interrupts whatever is still running in the foreground.
type LocalShell struct {
	sb   *Local
	argv []string

	readyOnce sync.Once
	readyErr  error

	mu      sync.Mutex
	current *foreground
}

type foreground struct {
	cancel      context.CancelFunc
	onAbort     func()
	done        chan struct{}
	interrupted atomic.Bool
}

func (f *foreground) interrupt() {
	if !f.interrupted.CompareAndSwap(false, true) {
		return
	}
	if f.onAbort != nil {
		f.onAbort()
	}
	f.cancel()
}

var _ Shell = (*LocalShell)(nil)

// NewLocalShell runs commands as `argv... <command>`; argv defaults to bash -c.
func NewLocalShell(sb *Local, argv []string) *LocalShell {
	if len(argv) == 0 {
		argv = []string{"bash", "-c"}
	}
	return &LocalShell{sb: sb, argv: append([]string{}, argv...)}
}

func (s *LocalShell) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.readyOnce.Do(func() {
		if s.sb == nil {
			s.readyErr = errors.New("shell has no sandbox")
			return
		}
		if _, err := exec.LookPath(s.argv[0]); err != nil {
			s.readyErr = errors.Wrapf(err, "shell %q not found", s.argv[0])
		}
	})
	return s.readyErr
}

func (s *LocalShell) ExecuteCommand(ctx context.Context, sessionID string, command string, onAbort func()) (Result, error) {
	if err := s.Ready(ctx); err != nil {
		return Result{}, err
	}

	cmdCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	cur := &foreground{cancel: cancel, onAbort: onAbort, done: make(chan struct{})}

	s.mu.Lock()
	prev := s.current
	s.current = cur
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.current == cur {
			s.current = nil
		}
		s.mu.Unlock()
		close(cur.done)
	}()

	if prev != nil {
		log.Debug().Str("session", sessionID).Msg("interrupting foreground command")
		prev.interrupt()
		<-prev.done
	}

	argv := append(append([]string{}, s.argv...), command)
	res, err := s.sb.Run(cmdCtx, argv)
	if cur.interrupted.Load() {
		res.ExitCode = exitInterrupted
		return res, nil
	}
	return res, err
}

// Close interrupts the foreground command, if any, and waits for it to exit.
func (s *LocalShell) Close() {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return
	}
	cur.interrupt()
	<-cur.done
}
