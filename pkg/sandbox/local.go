package sandbox

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Options struct {
	Workdir         string
	Env             map[string]string
	ShutdownTimeout time.Duration
}

// Local runs actions against a directory on the host.
type Local struct {
	opts Options
	fs   afero.Fs
}

var _ Sandbox = (*Local)(nil)

func NewLocal(opts Options) (*Local, error) {
	if opts.Workdir == "" {
		return nil, errors.New("missing Workdir")
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 3 * time.Second
	}
	workdir, err := filepath.Abs(opts.Workdir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve workdir")
	}
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return nil, errors.Wrap(err, "mkdir workdir")
	}
	opts.Workdir = workdir

	log.Debug().Str("workdir", workdir).Dict("env", envDict(opts.Env)).Msg("local sandbox ready")
	return &Local{
		opts: opts,
		fs:   afero.NewBasePathFs(afero.NewOsFs(), workdir),
	}, nil
}

func (l *Local) Workdir() string { return l.opts.Workdir }

func (l *Local) FS() afero.Fs { return l.fs }

func (l *Local) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("empty command")
	}

	var out bytes.Buffer
	// #nosec G204 -- commands come from the action stream the sandbox exists to run.
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = l.opts.Workdir
	cmd.Env = mergeEnv(os.Environ(), l.opts.Env)
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// Background children may hold the output pipe open after the leader exits.
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return Result{}, errors.Wrap(err, "start process")
	}
	pid := cmd.Process.Pid
	log.Debug().Strs("argv", argv).Int("pid", pid).Msg("process started")

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return Result{ExitCode: exitCode(err), Output: out.String()}, waitError(err)
	case <-ctx.Done():
		_ = stopGroup(pid, done, l.opts.ShutdownTimeout)
		log.Debug().Int("pid", pid).Msg("process canceled")
		return Result{ExitCode: -1, Output: out.String()}, errors.Wrap(ctx.Err(), "process canceled")
	}
}

func exitCode(err error) int {
	if err == nil || stderrors.Is(err, exec.ErrWaitDelay) {
		return 0
	}
	var ee *exec.ExitError
	if stderrors.As(err, &ee) {
		if code := ee.ExitCode(); code >= 0 {
			return code
		}
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
	}
	return -1
}

// waitError keeps non-zero exits out of the error path; callers read ExitCode.
func waitError(err error) error {
	if err == nil || stderrors.Is(err, exec.ErrWaitDelay) {
		return nil
	}
	var ee *exec.ExitError
	if stderrors.As(err, &ee) {
		return nil
	}
	return errors.Wrap(err, "wait process")
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	out := append([]string{}, base...)
	for k, v := range extra {
		out = append(out, k+"="+v)
	}
	return out
}
