package runner

import (
	"context"
	"time"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// failedMessage is what lands in State.Error; the raw error only reaches logs and alerts.
const failedMessage = "Action failed"

func (r *Runner) executeAction(id string, streaming bool) {
	st, ctx, ok := r.store.get(id)
	if !ok {
		log.Error().Str("action", id).Msg("action not found")
		return
	}
	if ctx.Err() != nil {
		log.Debug().Str("action", id).Msg("skipping aborted action")
		r.markAborted(id)
		return
	}

	r.store.setStatus(id, action.StatusRunning)

	var err error
	switch a := st.Action.(type) {
	case action.ShellAction:
		err = r.runShellAction(ctx, id, a)
	case action.FileAction:
		r.writeFile(a.FilePath, a.Content)
	case action.SupabaseAction:
		if _, serr := r.HandleSupabaseAction(ctx, a); serr != nil {
			if ctx.Err() != nil {
				r.markAborted(id)
				return
			}
			log.Error().Err(serr).Str("action", id).Msg("supabase action failed")
			r.store.setFailed(id, serr.Error())
			return
		}
	case action.BuildAction:
		var out BuildOutput
		out, err = r.runBuildAction(ctx)
		if err == nil {
			r.setBuildOutput(out)
		}
	case action.StartAction:
		r.launchStartAction(ctx, id, a)
		r.settle(ctx)
		return
	default:
		err = errors.Errorf("unsupported action %T", st.Action)
	}

	if err != nil {
		r.handleFailure(ctx, id, st.Action.Type(), err)
		return
	}

	switch {
	case streaming:
		r.store.setStatus(id, action.StatusRunning)
	case ctx.Err() != nil:
		r.store.setStatus(id, action.StatusAborted)
	default:
		r.store.setStatus(id, action.StatusComplete)
	}
}

func (r *Runner) handleFailure(ctx context.Context, id string, typ action.Type, err error) {
	if ctx.Err() != nil {
		r.markAborted(id)
		return
	}
	r.store.setFailed(id, failedMessage)
	log.Error().Err(err).Str("action", id).Str("type", string(typ)).Msg("action failed")

	ce, ok := action.AsCommandError(err)
	if !ok {
		return
	}
	r.opts.Alerts.Alert(alert.ActionAlert{
		Type:        alert.TypeError,
		Title:       "Dev Server Failed",
		Description: ce.Header,
		Content:     ce.Output,
		Source:      "terminal",
	})
}

// markAborted covers cancellation that did not come through Abort, e.g. Close.
func (r *Runner) markAborted(id string) {
	r.store.update(id, func(st *action.State) bool {
		if st.Status == action.StatusAborted {
			return false
		}
		st.Status = action.StatusAborted
		return true
	})
}

func (r *Runner) settle(ctx context.Context) {
	if r.opts.StartSettleDelay <= 0 {
		return
	}
	// TODO(start): replace the fixed delay with a readiness signal from the shell (first output or port bind).
	t := time.NewTimer(r.opts.StartSettleDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
