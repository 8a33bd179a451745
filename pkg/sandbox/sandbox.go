package sandbox

import (
	"context"

	"github.com/spf13/afero"
)

type Result struct {
	ExitCode int
	Output   string
}

// Sandbox is the isolated environment actions run against.
// FS paths are relative to Workdir.
type Sandbox interface {
	Workdir() string
	FS() afero.Fs
	// Run spawns argv as its own process and captures combined output.
	Run(ctx context.Context, argv []string) (Result, error)
}

// Shell is the shared interactive shell. At most one command runs in the
// foreground; onAbort is invoked if that command is interrupted.
type Shell interface {
	Ready(ctx context.Context) error
	ExecuteCommand(ctx context.Context, sessionID string, command string, onAbort func()) (Result, error)
}
