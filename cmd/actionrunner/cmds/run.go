package cmds

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/go-go-golems/actionrunner/pkg/events"
	"github.com/go-go-golems/actionrunner/pkg/manifest"
	"github.com/go-go-golems/actionrunner/pkg/render"
	"github.com/go-go-golems/actionrunner/pkg/state"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd() *cobra.Command {
	var wait bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "run <manifest.yaml>",
		Short: "Run the actions of a manifest in order against the workdir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := getRootOptions(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
			defer cancel()

			bus, err := events.NewInMemoryBus()
			if err != nil {
				return err
			}
			events.RegisterSink(bus, "terminal", terminalSink(cmd.OutOrStdout(), render.New(render.DefaultTheme()), quiet))

			pub := events.NewPublisher(bus)
			env, err := newEnvironment(opts, cfg, pub.AlertHandlers(), pub)
			if err != nil {
				return err
			}
			createdAt := time.Now()
			log.Info().Str("runner", env.Runner.ID()).Str("workdir", env.Sandbox.Workdir()).Int("actions", len(m.Actions)).Msg("run started")

			busCtx, stopBus := context.WithCancel(context.Background())
			defer stopBus()

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				err := bus.Run(busCtx)
				if stderrors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			eg.Go(func() error {
				// Events are only delivered once the router is subscribed.
				select {
				case <-bus.Running():
				case <-egCtx.Done():
					env.Stop()
					stopBus()
					return egCtx.Err()
				}

				err := manifest.Feed(egCtx, env.Runner, m)
				if err == nil && wait {
					log.Info().Msg("all actions submitted; waiting for interrupt")
					<-egCtx.Done()
				}
				if egCtx.Err() != nil {
					env.Stop()
				} else {
					env.Close()
				}
				stopBus()
				return err
			})

			runErr := eg.Wait()
			if stderrors.Is(runErr, context.Canceled) {
				runErr = nil
			}

			s := state.FromSnapshot(env.Runner, env.Sandbox.Workdir(), createdAt)
			s.FinishedAt = time.Now()
			if err := state.Save(opts.Root, s); err != nil {
				return err
			}
			if runErr != nil {
				return errors.Wrap(runErr, "run")
			}

			counts := s.Counts()
			log.Info().Interface("counts", counts).Msg("run finished")
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Keep started processes running until interrupted or --timeout")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Only print alerts, not every state change")
	return cmd
}

// terminalSink renders bus events to w. Handlers run on separate goroutines,
// so writes are serialized.
func terminalSink(w io.Writer, r *render.Renderer, quiet bool) events.Sink {
	var mu sync.Mutex
	write := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintln(w, s)
	}
	sink := events.Sink{
		OnAlert:         func(a alert.ActionAlert) { write(r.ActionAlert(a)) },
		OnSupabaseAlert: func(a alert.SupabaseAlert) { write(r.SupabaseAlert(a)) },
		OnDeployAlert:   func(a alert.DeployAlert) { write(r.DeployAlert(a)) },
	}
	if !quiet {
		sink.OnActionUpdate = func(u events.ActionUpdate) {
			write(r.ActionLine(u.ID, u.Action.Type, u.Status, u.Error))
		}
	}
	return sink
}
