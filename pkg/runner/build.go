package runner

import (
	"context"
	"path/filepath"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// runBuildAction spawns the build directly in the sandbox, bypassing the
// shared shell so its output is not interleaved with other commands.
func (r *Runner) runBuildAction(ctx context.Context) (BuildOutput, error) {
	r.opts.Alerts.Deploy(alert.BuildStarted())

	res, err := r.opts.Sandbox.Run(ctx, r.opts.BuildCommand)
	if err != nil {
		return BuildOutput{}, errors.Wrap(err, "run build")
	}

	if res.ExitCode != 0 {
		r.opts.Alerts.Deploy(alert.BuildFailed(res.Output))
		return BuildOutput{}, action.NewCommandError("Build Failed", res.Output)
	}

	r.opts.Alerts.Deploy(alert.BuildSucceeded())

	dir := r.findBuildDir()
	log.Debug().Str("dir", dir).Msg("build output directory")
	return BuildOutput{Path: dir, ExitCode: res.ExitCode, Output: res.Output}, nil
}

func (r *Runner) findBuildDir() string {
	fs := r.opts.Sandbox.FS()
	for _, d := range r.opts.BuildOutputDirs {
		fi, err := fs.Stat(d)
		if err != nil || !fi.IsDir() {
			continue
		}
		return filepath.Join(r.opts.Sandbox.Workdir(), d)
	}
	return filepath.Join(r.opts.Sandbox.Workdir(), r.opts.BuildOutputDirs[0])
}
