package cmds

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/go-go-golems/actionrunner/pkg/runner"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and record per-file edit history",
	}
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryRecordCmd())
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Print the stored history of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := historyEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			h, err := env.Runner.GetFileHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if h == nil {
				return errors.Errorf("no history for %s", args[0])
			}
			return printJSON(cmd, h)
		},
	}
}

func newHistoryRecordCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "record <path>",
		Short: "Append the current content of a file to its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := historyEnvironment(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			rel := args[0]
			if filepath.IsAbs(rel) {
				if rel, err = filepath.Rel(env.Sandbox.Workdir(), rel); err != nil {
					return errors.Wrap(err, "relative path")
				}
			}
			content, err := afero.ReadFile(env.Sandbox.FS(), rel)
			if err != nil {
				return errors.Wrapf(err, "read %s", rel)
			}

			h, err := env.Runner.GetFileHistory(ctx, rel)
			if err != nil {
				return err
			}
			if h == nil {
				h = &runner.FileHistory{}
			}
			if n := len(h.Versions); n > 0 && h.Versions[n-1].Content == string(content) {
				return printJSON(cmd, h)
			}
			h.Record(string(content), time.Now(), source)
			if err := env.Runner.SaveFileHistory(ctx, rel, *h); err != nil {
				return err
			}
			return printJSON(cmd, h)
		},
	}

	cmd.Flags().StringVar(&source, "source", "user", "Change source (user, auto-save, external)")
	return cmd
}

func historyEnvironment(cmd *cobra.Command) (*environment, error) {
	opts, err := getRootOptions(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return newEnvironment(opts, cfg, alert.Handlers{}, nil)
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal json")
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
