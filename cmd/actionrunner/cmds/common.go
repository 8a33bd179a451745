package cmds

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/go-go-golems/actionrunner/pkg/config"
	"github.com/go-go-golems/actionrunner/pkg/runner"
	"github.com/go-go-golems/actionrunner/pkg/sandbox"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type rootOptions struct {
	// Root holds the config file and the session state.
	Root      string
	Config    string
	Overrides []string
	Timeout   time.Duration
}

func AddRootFlags(root *cobra.Command) {
	addRootFlags(root.PersistentFlags())
}

func addRootFlags(fs *pflag.FlagSet) {
	fs.String("workdir", "", "Project root (defaults to current directory)")
	fs.String("config", "", "Path to config file (defaults to .actionrunner.yaml under workdir)")
	fs.StringArray("set", nil, "Override a config key (dotted.key=value, repeatable)")
	fs.Duration("timeout", 10*time.Minute, "Upper bound for a whole run")
}

func getRootOptions(cmd *cobra.Command) (rootOptions, error) {
	flags := cmd.Root().PersistentFlags()

	root, err := flags.GetString("workdir")
	if err != nil {
		return rootOptions{}, err
	}
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return rootOptions{}, err
		}
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return rootOptions{}, err
	}

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return rootOptions{}, err
	}
	if cfgPath == "" {
		cfgPath = config.DefaultPath(root)
	} else if !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(root, cfgPath)
	}

	overrides, err := flags.GetStringArray("set")
	if err != nil {
		return rootOptions{}, err
	}
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return rootOptions{}, err
	}
	if timeout <= 0 {
		return rootOptions{}, errors.New("timeout must be > 0")
	}

	return rootOptions{
		Root:      root,
		Config:    cfgPath,
		Overrides: overrides,
		Timeout:   timeout,
	}, nil
}

func loadConfig(opts rootOptions) (*config.File, error) {
	cfg, err := config.LoadOptional(opts.Config)
	if err != nil {
		return nil, err
	}
	return config.ApplyOverrides(cfg, opts.Overrides)
}

// sandboxDir resolves the configured workdir against the project root.
func sandboxDir(opts rootOptions, cfg *config.File) string {
	if cfg.Workdir == "" {
		return opts.Root
	}
	if filepath.IsAbs(cfg.Workdir) {
		return cfg.Workdir
	}
	return filepath.Join(opts.Root, cfg.Workdir)
}

type environment struct {
	Sandbox *sandbox.Local
	Shell   *sandbox.LocalShell
	Runner  *runner.Runner
}

// Close lets queued actions finish, then stops whatever is still running.
func (e *environment) Close() {
	e.Runner.Close()
	e.Shell.Close()
}

// Stop interrupts the running action and drops the queued ones before closing.
func (e *environment) Stop() {
	e.Runner.Cancel()
	e.Close()
}

func newEnvironment(opts rootOptions, cfg *config.File, alerts alert.Handlers, observer runner.Observer) (*environment, error) {
	sb, err := sandbox.NewLocal(sandbox.Options{
		Workdir: sandboxDir(opts, cfg),
		Env:     cfg.Env,
	})
	if err != nil {
		return nil, err
	}
	sh := sandbox.NewLocalShell(sb, cfg.Shell)

	r, err := runner.New(runner.Options{
		Sandbox:          sb,
		Shell:            sh,
		Alerts:           alerts,
		Observer:         observer,
		StartSettleDelay: cfg.Start.SettleDelay,
		BuildCommand:     cfg.Build.Command,
		BuildOutputDirs:  cfg.Build.OutputDirs,
		HistoryDir:       cfg.HistoryDir,
	})
	if err != nil {
		sh.Close()
		return nil, err
	}
	return &environment{Sandbox: sb, Shell: sh, Runner: r}, nil
}
