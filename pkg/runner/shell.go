package runner

import (
	"context"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/go-go-golems/actionrunner/pkg/sandbox"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func (r *Runner) runShellAction(ctx context.Context, id string, a action.ShellAction) error {
	res, err := r.execInShell(ctx, id, a.Content)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return action.NewCommandError("Failed To Execute Shell Command", res.Output)
	}
	return nil
}

func (r *Runner) runStartAction(ctx context.Context, id string, a action.StartAction) error {
	res, err := r.execInShell(ctx, id, a.Content)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return action.NewCommandError("Failed To Start Application", res.Output)
	}
	return nil
}

func (r *Runner) execInShell(ctx context.Context, id string, command string) (sandbox.Result, error) {
	if err := r.opts.Shell.Ready(ctx); err != nil {
		return sandbox.Result{}, errors.Wrap(err, "shell not ready")
	}
	res, err := r.opts.Shell.ExecuteCommand(ctx, r.opts.RunnerID, command, func() {
		log.Debug().Str("action", id).Msg("aborting action")
		r.Abort(id)
	})
	if err != nil {
		return res, errors.Wrap(err, "execute command")
	}
	log.Debug().Str("action", id).Int("exit_code", res.ExitCode).Msg("shell response")
	return res, nil
}

// launchStartAction runs the start command in the background; the queue does
// not wait for a dev server to exit.
func (r *Runner) launchStartAction(ctx context.Context, id string, a action.StartAction) {
	r.bg.Add(1)
	go func() {
		defer r.bg.Done()

		err := r.runStartAction(ctx, id, a)
		if err == nil {
			if ctx.Err() != nil {
				r.markAborted(id)
				return
			}
			r.store.setStatus(id, action.StatusComplete)
			return
		}
		r.handleFailure(ctx, id, action.TypeStart, err)
	}()
}
