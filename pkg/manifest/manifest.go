// Package manifest reads scripted action sequences and replays them against a
// runner the way a streaming producer would.
package manifest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Manifest struct {
	Actions []Entry `yaml:"actions"`
}

type Entry struct {
	action.Spec `yaml:",inline"`

	ID         string        `yaml:"id"`
	// Chunks, when set, replace Content and are delivered as streaming updates.
	Chunks     []string      `yaml:"chunks,omitempty"`
	// AbortAfter aborts the action this long after its final submission.
	AbortAfter time.Duration `yaml:"abort_after,omitempty"`

	action action.Action
}

// Action returns the validated action with its full content.
func (e Entry) Action() action.Action { return e.action }

// Runner is the subset of runner.Runner that Feed drives.
type Runner interface {
	AddAction(id string, a action.Action)
	RunAction(ctx context.Context, id string, a action.Action, streaming bool) error
	Abort(id string)
}

func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}
	m, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	return m, nil
}

func Parse(b []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrap(err, "parse manifest yaml")
	}
	seen := map[string]bool{}
	for i := range m.Actions {
		e := &m.Actions[i]
		if e.ID == "" {
			e.ID = fmt.Sprintf("action-%d", i+1)
		}
		if seen[e.ID] {
			return nil, errors.Errorf("duplicate action id %q", e.ID)
		}
		seen[e.ID] = true

		if len(e.Chunks) > 0 {
			if e.Content != "" {
				return nil, errors.Errorf("action %q: content and chunks are mutually exclusive", e.ID)
			}
			e.Content = strings.Join(e.Chunks, "")
		}
		if e.AbortAfter < 0 {
			return nil, errors.Errorf("action %q: negative abort_after", e.ID)
		}
		a, err := e.Spec.Action()
		if err != nil {
			return nil, errors.Wrapf(err, "action %q", e.ID)
		}
		e.action = a
	}
	return &m, nil
}

// Feed registers and submits each entry in order. Chunked entries are first
// sent as streaming updates carrying the content received so far. Feed returns
// once every entry has been submitted and every pending abort has fired.
func Feed(ctx context.Context, r Runner, m *Manifest) error {
	abortCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var aborts sync.WaitGroup

	for _, e := range m.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.AddAction(e.ID, e.action)

		var sofar strings.Builder
		for _, chunk := range e.Chunks {
			sofar.WriteString(chunk)
			partial, err := withContent(e.Spec, sofar.String())
			if err != nil {
				return err
			}
			if err := r.RunAction(ctx, e.ID, partial, true); err != nil {
				return errors.Wrapf(err, "stream %s", e.ID)
			}
		}

		if e.AbortAfter > 0 {
			aborts.Add(1)
			go func(id string, d time.Duration) {
				defer aborts.Done()
				t := time.NewTimer(d)
				defer t.Stop()
				select {
				case <-t.C:
					log.Debug().Str("action", id).Dur("after", d).Msg("aborting action")
					r.Abort(id)
				case <-abortCtx.Done():
				}
			}(e.ID, e.AbortAfter)
		}

		if err := r.RunAction(ctx, e.ID, e.action, false); err != nil {
			return errors.Wrapf(err, "run %s", e.ID)
		}
	}

	aborts.Wait()
	return ctx.Err()
}

func withContent(s action.Spec, content string) (action.Action, error) {
	s.Content = content
	return s.Action()
}
