package runner

import (
	"context"
	"sync"
	"time"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/go-go-golems/actionrunner/pkg/sandbox"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultStartSettleDelay = 2 * time.Second
	DefaultHistoryDir       = ".history"
)

var (
	DefaultBuildCommand    = []string{"npm", "run", "build"}
	DefaultBuildOutputDirs = []string{"dist", "build", "out", "output", ".next", "public"}
)

type Options struct {
	Sandbox sandbox.Sandbox
	Shell   sandbox.Shell
	Alerts  alert.Handlers
	// Observer, if set, sees every state transition.
	Observer Observer

	// StartSettleDelay holds the queue after a start action is launched so two
	// consecutive start actions do not race for the shell.
	StartSettleDelay time.Duration
	BuildCommand     []string
	// BuildOutputDirs are probed in order after a successful build; the first is the fallback.
	BuildOutputDirs []string
	HistoryDir      string
	RunnerID        string
}

type BuildOutput struct {
	Path     string `json:"path"`
	ExitCode int    `json:"exitCode"`
	Output   string `json:"output"`
}

// Runner executes actions against a sandbox strictly one at a time, in the
// order RunAction was called.
type Runner struct {
	opts  Options
	store *store
	queue *queue

	ctx    context.Context
	cancel context.CancelFunc
	bg     sync.WaitGroup

	// submitMu makes marking an action executed and queueing it one step.
	submitMu sync.Mutex

	mu          sync.Mutex
	buildOutput *BuildOutput
	closeOnce   sync.Once
}

func New(opts Options) (*Runner, error) {
	if opts.Sandbox == nil {
		return nil, errors.New("missing Sandbox")
	}
	if opts.Shell == nil {
		return nil, errors.New("missing Shell")
	}
	if opts.StartSettleDelay < 0 {
		opts.StartSettleDelay = 0
	} else if opts.StartSettleDelay == 0 {
		opts.StartSettleDelay = DefaultStartSettleDelay
	}
	if len(opts.BuildCommand) == 0 {
		opts.BuildCommand = DefaultBuildCommand
	}
	if len(opts.BuildOutputDirs) == 0 {
		opts.BuildOutputDirs = DefaultBuildOutputDirs
	}
	if opts.HistoryDir == "" {
		opts.HistoryDir = DefaultHistoryDir
	}
	if opts.RunnerID == "" {
		opts.RunnerID = uuid.NewString()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		opts:   opts,
		store:  newStore(opts.Observer),
		queue:  newQueue(),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (r *Runner) ID() string { return r.opts.RunnerID }

// AddAction registers a pending action. Re-adding a known id is a no-op.
// The action is marked running once every earlier queued task has finished.
func (r *Runner) AddAction(id string, a action.Action) {
	r.submitMu.Lock()
	defer r.submitMu.Unlock()

	ctx, cancel := context.WithCancel(r.ctx)
	if !r.store.add(id, a, ctx, cancel) {
		cancel()
		return
	}
	log.Debug().Str("action", id).Str("type", string(a.Type())).Msg("action added")

	r.queue.push(func() {
		if ctx.Err() != nil {
			r.markAborted(id)
			return
		}
		r.store.update(id, func(st *action.State) bool {
			if st.Status != action.StatusPending {
				return false
			}
			st.Status = action.StatusRunning
			return true
		})
	})
}

// RunAction merges a into the registered action and queues it for execution.
// Non-file actions are ignored while streaming, as are actions already executed.
// It blocks until the action's queue slot completes. Action failures are
// reported through state and alerts, never through the returned error.
func (r *Runner) RunAction(ctx context.Context, id string, a action.Action, streaming bool) error {
	r.submitMu.Lock()
	queued := false
	r.store.update(id, func(st *action.State) bool {
		if st.Executed {
			return false
		}
		if streaming && st.Action.Type() != action.TypeFile {
			return false
		}
		if a != nil {
			st.Action = a
		}
		st.Executed = !streaming
		queued = true
		return true
	})
	if !queued {
		r.submitMu.Unlock()
		if _, _, known := r.store.get(id); !known {
			return errors.Errorf("action %s not found", id)
		}
		return nil
	}
	done := r.queue.push(func() { r.executeAction(id, streaming) })
	r.submitMu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Abort cancels the action and marks it aborted, whatever its current state.
func (r *Runner) Abort(id string) {
	cancel := r.store.cancelFunc(id)
	if cancel == nil {
		return
	}
	cancel()
	r.store.setStatus(id, action.StatusAborted)
	log.Debug().Str("action", id).Msg("action aborted")
}

func (r *Runner) State(id string) (action.State, bool) {
	st, _, ok := r.store.get(id)
	return st, ok
}

// Snapshot returns a copy of every known action state.
func (r *Runner) Snapshot() map[string]action.State {
	return r.store.snapshot()
}

// ActionIDs lists known ids in registration order.
func (r *Runner) ActionIDs() []string {
	return r.store.ids()
}

// BuildOutput returns the result of the last successful build action.
func (r *Runner) BuildOutput() (BuildOutput, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.buildOutput == nil {
		return BuildOutput{}, false
	}
	return *r.buildOutput, true
}

func (r *Runner) setBuildOutput(out BuildOutput) {
	r.mu.Lock()
	r.buildOutput = &out
	r.mu.Unlock()
}

// HandleDeployAction emits a deploy alert derived from stage and status.
// Deploy-provider integrations call it once their own upload has progressed.
func (r *Runner) HandleDeployAction(stage alert.Stage, status action.Status, details *alert.DeployDetails) {
	if r.opts.Alerts.OnDeployAlert == nil {
		log.Debug().Msg("no deploy alert handler registered")
		return
	}
	r.opts.Alerts.Deploy(alert.ForDeploy(stage, status, details))
}

// Cancel ends every action: the one in flight is interrupted and queued ones
// are marked aborted when the worker reaches them. Close is still required.
func (r *Runner) Cancel() {
	log.Debug().Str("runner", r.opts.RunnerID).Msg("canceling all actions")
	r.cancel()
}

// Close drains the queue, then cancels every action still in flight
// (long-running start actions included) and waits for them.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.queue.close()
		r.cancel()
		r.bg.Wait()
	})
}
