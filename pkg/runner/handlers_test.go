package runner

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/go-go-golems/actionrunner/pkg/sandbox"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestFileAction_CreatesParentDirs(t *testing.T) {
	rec := &mkdirRecordingFs{Fs: afero.NewMemMapFs()}
	h := newHarness(t, nil)
	h.sb.fs = rec

	st := h.run(t, "f1", action.FileAction{FilePath: "/home/project/src/components/ui/Button.tsx", Content: "export {}"})
	require.Equal(t, action.StatusComplete, st.Status)
	require.Equal(t, []string{"src/components/ui"}, rec.dirs)

	b, err := afero.ReadFile(rec, "src/components/ui/Button.tsx")
	require.NoError(t, err)
	require.Equal(t, "export {}", string(b))
}

func TestFileAction_RootLevelSkipsMkdir(t *testing.T) {
	rec := &mkdirRecordingFs{Fs: afero.NewMemMapFs()}
	h := newHarness(t, nil)
	h.sb.fs = rec

	h.run(t, "f1", action.FileAction{FilePath: "package.json", Content: "{}"})
	require.Empty(t, rec.dirs)
}

func TestFileAction_StripsTrailingSlashes(t *testing.T) {
	rec := &mkdirRecordingFs{Fs: afero.NewMemMapFs()}
	h := newHarness(t, nil)
	h.sb.fs = rec

	h.run(t, "f1", action.FileAction{FilePath: "src//lib///util.ts", Content: "x"})
	require.Equal(t, []string{"src/lib"}, rec.dirs)
	for _, d := range rec.dirs {
		require.False(t, strings.HasSuffix(d, "/"))
	}
}

func TestFileAction_WriteFailureDoesNotFail(t *testing.T) {
	h := newHarness(t, nil)
	h.sb.fs = failingFs{Fs: afero.NewMemMapFs()}

	st := h.run(t, "f1", action.FileAction{FilePath: "src/a.ts", Content: "x"})
	require.Equal(t, action.StatusComplete, st.Status)
	require.Empty(t, st.Error)
}

func TestFileAction_Streaming(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.r.AddAction("f1", action.FileAction{FilePath: "a.txt"})
	require.NoError(t, h.r.RunAction(ctx, "f1", action.FileAction{FilePath: "a.txt", Content: "hel"}, true))

	st, _ := h.r.State("f1")
	require.Equal(t, action.StatusRunning, st.Status)
	require.False(t, st.Executed)
	b, err := afero.ReadFile(h.sb.fs, "a.txt")
	require.NoError(t, err)
	require.Equal(t, "hel", string(b))

	require.NoError(t, h.r.RunAction(ctx, "f1", action.FileAction{FilePath: "a.txt", Content: "hello"}, false))
	st, _ = h.r.State("f1")
	require.Equal(t, action.StatusComplete, st.Status)
	require.True(t, st.Executed)
	b, err = afero.ReadFile(h.sb.fs, "a.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))
}

func TestStreaming_IgnoredForNonFileActions(t *testing.T) {
	h := newHarness(t, nil)
	a := action.ShellAction{Content: "npm install"}
	h.r.AddAction("s1", a)

	require.NoError(t, h.r.RunAction(context.Background(), "s1", a, true))
	st, _ := h.r.State("s1")
	require.False(t, st.Executed)
	require.Empty(t, h.shell.Commands())
}

func writeDir(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(dir, 0o755))
}

func TestBuildAction_FindsOutputDir(t *testing.T) {
	cases := []struct {
		name   string
		dirs   []string
		suffix string
	}{
		{name: "dist", dirs: []string{"dist", "build"}, suffix: "/dist"},
		{name: "build", dirs: []string{"build", "public"}, suffix: "/build"},
		{name: "next", dirs: []string{".next"}, suffix: "/.next"},
		{name: "fallback", dirs: nil, suffix: "/dist"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.sb.run = func(ctx context.Context, argv []string) (sandbox.Result, error) {
				return sandbox.Result{Output: "built in 1.2s"}, nil
			}
			for _, d := range tc.dirs {
				writeDir(t, h.sb.fs, d)
			}

			st := h.run(t, "b1", action.BuildAction{})
			require.Equal(t, action.StatusComplete, st.Status)

			out, ok := h.r.BuildOutput()
			require.True(t, ok)
			require.True(t, strings.HasSuffix(out.Path, tc.suffix), out.Path)
			require.True(t, strings.HasPrefix(out.Path, testWorkdir))
			require.Equal(t, 0, out.ExitCode)
			require.Equal(t, "built in 1.2s", out.Output)

			deploys := h.alerts.Deploys()
			require.Len(t, deploys, 2)
			require.Equal(t, alert.BuildStarted(), deploys[0])
			require.Equal(t, alert.BuildSucceeded(), deploys[1])
		})
	}
}

func TestBuildAction_UsesOwnProcessNotShell(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.BuildCommand = []string{"pnpm", "build"} })
	h.run(t, "b1", action.BuildAction{})

	require.Equal(t, [][]string{{"pnpm", "build"}}, h.sb.calls)
	require.Empty(t, h.shell.Commands())
}

func TestBuildAction_FailureAlertsOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.sb.run = func(ctx context.Context, argv []string) (sandbox.Result, error) {
		return sandbox.Result{ExitCode: 1, Output: "error TS2304: Cannot find name 'x'"}, nil
	}

	st := h.run(t, "b1", action.BuildAction{})
	require.Equal(t, action.StatusFailed, st.Status)
	_, ok := h.r.BuildOutput()
	require.False(t, ok)

	failed := 0
	for _, d := range h.alerts.Deploys() {
		if d.BuildStatus == action.StatusFailed {
			failed++
			require.Equal(t, "error TS2304: Cannot find name 'x'", d.Content)
		}
	}
	require.Equal(t, 1, failed)

	actions := h.alerts.Actions()
	require.Len(t, actions, 1)
	require.Equal(t, "Build Failed", actions[0].Description)
	require.Contains(t, actions[0].Content, "TS2304")
}

func TestStartAction_DoesNotBlockQueue(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, nil)
	h.shell.execute = func(ctx context.Context, command string, onAbort func()) (sandbox.Result, error) {
		if command == "npm run dev" {
			select {
			case <-release:
			case <-ctx.Done():
			}
		}
		return sandbox.Result{}, nil
	}

	st := h.run(t, "s1", action.StartAction{Content: "npm run dev"})
	require.Equal(t, action.StatusRunning, st.Status)

	next := h.run(t, "s2", action.ShellAction{Content: "echo next"})
	require.Equal(t, action.StatusComplete, next.Status)

	close(release)
	require.Eventually(t, func() bool {
		st, _ := h.r.State("s1")
		return st.Status == action.StatusComplete
	}, time.Second, 5*time.Millisecond)
}

func TestStartAction_WaitsSettleDelay(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.StartSettleDelay = 100 * time.Millisecond })

	start := time.Now()
	h.run(t, "s1", action.StartAction{Content: "true"})
	require.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestStartAction_LaterFailureAlerts(t *testing.T) {
	h := newHarness(t, nil)
	h.shell.execute = func(ctx context.Context, command string, onAbort func()) (sandbox.Result, error) {
		time.Sleep(30 * time.Millisecond)
		return sandbox.Result{ExitCode: 1, Output: "EADDRINUSE"}, nil
	}

	h.run(t, "s1", action.StartAction{Content: "npm run dev"})
	require.Eventually(t, func() bool {
		st, _ := h.r.State("s1")
		return st.Status == action.StatusFailed
	}, time.Second, 5*time.Millisecond)

	st, _ := h.r.State("s1")
	require.Equal(t, "Action failed", st.Error)
	require.Eventually(t, func() bool { return len(h.alerts.Actions()) == 1 }, time.Second, 5*time.Millisecond)
	a := h.alerts.Actions()[0]
	require.Equal(t, "Dev Server Failed", a.Title)
	require.Equal(t, "Failed To Start Application", a.Description)
	require.Equal(t, "EADDRINUSE", a.Content)
}

func TestStartAction_InterruptedByNextCommandIsAborted(t *testing.T) {
	var mu sync.Mutex
	var foreground func()
	exited := make(chan struct{})
	h := newHarness(t, nil)
	h.shell.execute = func(ctx context.Context, command string, onAbort func()) (sandbox.Result, error) {
		mu.Lock()
		prev := foreground
		foreground = onAbort
		mu.Unlock()
		if prev != nil {
			prev()
			<-exited
		}
		if command == "npm run dev" {
			<-ctx.Done()
			close(exited)
			return sandbox.Result{ExitCode: 130}, nil
		}
		return sandbox.Result{}, nil
	}

	h.run(t, "s1", action.StartAction{Content: "npm run dev"})
	h.run(t, "s2", action.ShellAction{Content: "npm install lodash"})

	require.Eventually(t, func() bool {
		st, _ := h.r.State("s1")
		return st.Status == action.StatusAborted
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	st, _ := h.r.State("s1")
	require.Equal(t, action.StatusAborted, st.Status)
	require.Empty(t, h.alerts.Actions())
}

func TestSupabase_Migration(t *testing.T) {
	h := newHarness(t, nil)

	st := h.run(t, "db1", action.SupabaseAction{
		Operation: action.SupabaseMigration,
		FilePath:  "supabase/migrations/0001_init.sql",
		Content:   "create table todos (id serial primary key);",
	})
	require.Equal(t, action.StatusComplete, st.Status)

	b, err := afero.ReadFile(h.sb.fs, "supabase/migrations/0001_init.sql")
	require.NoError(t, err)
	require.Contains(t, string(b), "create table todos")

	alerts := h.alerts.Supabase()
	require.Len(t, alerts, 1)
	require.Equal(t, "Supabase Migration", alerts[0].Title)
	require.Equal(t, "Create migration file: supabase/migrations/0001_init.sql", alerts[0].Description)
	require.Equal(t, "supabase", alerts[0].Source)
}

func TestSupabase_QueryIsPending(t *testing.T) {
	h := newHarness(t, nil)

	res, err := h.r.HandleSupabaseAction(context.Background(), action.SupabaseAction{Operation: action.SupabaseQuery, Content: "select 1"})
	require.NoError(t, err)
	require.True(t, res.Pending)

	alerts := h.alerts.Supabase()
	require.Len(t, alerts, 1)
	require.Equal(t, "Supabase Query", alerts[0].Title)
	require.Equal(t, "select 1", alerts[0].Content)
}

func TestSupabase_DomainErrorsFailWithoutAlert(t *testing.T) {
	h := newHarness(t, nil)

	st := h.run(t, "db1", action.SupabaseAction{Operation: action.SupabaseMigration})
	require.Equal(t, action.StatusFailed, st.Status)
	require.Equal(t, "Migration requires a filePath", st.Error)

	st = h.run(t, "db2", action.SupabaseAction{Operation: "drop"})
	require.Equal(t, action.StatusFailed, st.Status)
	require.Equal(t, "Unknown operation: drop", st.Error)

	require.Empty(t, h.alerts.Actions())
	require.Empty(t, h.alerts.Supabase())
}
