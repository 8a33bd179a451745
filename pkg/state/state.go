package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/go-go-golems/actionrunner/pkg/runner"
	"github.com/pkg/errors"
)

const (
	StateDirName  = ".actionrunner"
	StateFilename = "session.json"
)

// Session is the record of the last run, written so `status` can report it
// after the runner process has gone.
type Session struct {
	RunnerID    string              `json:"runner_id"`
	Workdir     string              `json:"workdir"`
	CreatedAt   time.Time           `json:"created_at"`
	FinishedAt  time.Time           `json:"finished_at,omitempty"`
	Actions     []ActionRecord      `json:"actions"`
	BuildOutput *runner.BuildOutput `json:"build_output,omitempty"`
}

type ActionRecord struct {
	ID       string        `json:"id"`
	Action   action.Spec   `json:"action"`
	Status   action.Status `json:"status"`
	Executed bool          `json:"executed"`
	Error    string        `json:"error,omitempty"`
}

// FromSnapshot captures r's actions in registration order.
func FromSnapshot(r *runner.Runner, workdir string, createdAt time.Time) *Session {
	s := &Session{
		RunnerID:  r.ID(),
		Workdir:   workdir,
		CreatedAt: createdAt,
	}
	snap := r.Snapshot()
	for _, id := range r.ActionIDs() {
		st, ok := snap[id]
		if !ok {
			continue
		}
		s.Actions = append(s.Actions, ActionRecord{
			ID:       id,
			Action:   action.SpecOf(st.Action),
			Status:   st.Status,
			Executed: st.Executed,
			Error:    st.Error,
		})
	}
	if out, ok := r.BuildOutput(); ok {
		s.BuildOutput = &out
	}
	return s
}

// Counts tallies actions by status.
func (s *Session) Counts() map[action.Status]int {
	out := map[action.Status]int{}
	for _, a := range s.Actions {
		out[a.Status]++
	}
	return out
}

func StatePath(root string) string {
	return filepath.Join(root, StateDirName, StateFilename)
}

func Load(root string) (*Session, error) {
	b, err := os.ReadFile(StatePath(root))
	if err != nil {
		return nil, errors.Wrap(err, "read state")
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(err, "parse state json")
	}
	return &s, nil
}

func Save(root string, s *Session) error {
	if s == nil {
		return errors.New("nil state")
	}
	path := StatePath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "mkdir state dir")
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal state")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return errors.Wrap(err, "write state")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "rename state")
	}
	return nil
}

func Remove(root string) error {
	if err := os.Remove(StatePath(root)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "remove state")
	}
	return nil
}
