package runner

import (
	"context"
	"os"
	"sync"

	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/go-go-golems/actionrunner/pkg/sandbox"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const testWorkdir = "/home/project"

type fakeSandbox struct {
	fs  afero.Fs
	run func(ctx context.Context, argv []string) (sandbox.Result, error)

	mu    sync.Mutex
	calls [][]string
}

func (f *fakeSandbox) Workdir() string { return testWorkdir }
func (f *fakeSandbox) FS() afero.Fs     { return f.fs }

func (f *fakeSandbox) Run(ctx context.Context, argv []string) (sandbox.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, argv)
	f.mu.Unlock()
	if f.run == nil {
		return sandbox.Result{}, nil
	}
	return f.run(ctx, argv)
}

type fakeShell struct {
	execute func(ctx context.Context, command string, onAbort func()) (sandbox.Result, error)

	mu       sync.Mutex
	commands []string
}

func (f *fakeShell) Ready(ctx context.Context) error { return ctx.Err() }

func (f *fakeShell) ExecuteCommand(ctx context.Context, sessionID string, command string, onAbort func()) (sandbox.Result, error) {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()
	if f.execute == nil {
		return sandbox.Result{Output: command}, nil
	}
	return f.execute(ctx, command, onAbort)
}

func (f *fakeShell) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.commands...)
}

type alertRecorder struct {
	mu       sync.Mutex
	actions  []alert.ActionAlert
	supabase []alert.SupabaseAlert
	deploys  []alert.DeployAlert
}

func (a *alertRecorder) Handlers() alert.Handlers {
	return alert.Handlers{
		OnAlert: func(x alert.ActionAlert) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.actions = append(a.actions, x)
		},
		OnSupabaseAlert: func(x alert.SupabaseAlert) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.supabase = append(a.supabase, x)
		},
		OnDeployAlert: func(x alert.DeployAlert) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.deploys = append(a.deploys, x)
		},
	}
}

func (a *alertRecorder) Actions() []alert.ActionAlert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]alert.ActionAlert{}, a.actions...)
}

func (a *alertRecorder) Supabase() []alert.SupabaseAlert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]alert.SupabaseAlert{}, a.supabase...)
}

func (a *alertRecorder) Deploys() []alert.DeployAlert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]alert.DeployAlert{}, a.deploys...)
}

// mkdirRecordingFs records MkdirAll arguments.
type mkdirRecordingFs struct {
	afero.Fs
	mu   sync.Mutex
	dirs []string
}

func (f *mkdirRecordingFs) MkdirAll(path string, perm os.FileMode) error {
	f.mu.Lock()
	f.dirs = append(f.dirs, path)
	f.mu.Unlock()
	return f.Fs.MkdirAll(path, perm)
}

// failingFs rejects every mutation.
type failingFs struct {
	afero.Fs
}

func (f failingFs) MkdirAll(string, os.FileMode) error {
	return errors.New("mkdir denied")
}

func (f failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return nil, errors.New("write denied")
}
