package cmds

import (
	"encoding/json"
	"fmt"

	"github.com/go-go-golems/actionrunner/pkg/render"
	"github.com/go-go-golems/actionrunner/pkg/state"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the actions of the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := getRootOptions(cmd)
			if err != nil {
				return err
			}
			s, err := state.Load(opts.Root)
			if err != nil {
				return err
			}

			if asJSON {
				b, err := json.MarshalIndent(s, "", "  ")
				if err != nil {
					return errors.Wrap(err, "marshal status")
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}

			r := render.New(render.DefaultTheme())
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "runner %s  workdir %s\n", s.RunnerID, s.Workdir)
			for _, a := range s.Actions {
				_, _ = fmt.Fprintln(out, r.ActionLine(a.ID, a.Action.Type, a.Status, a.Error))
			}
			if s.BuildOutput != nil {
				_, _ = fmt.Fprintf(out, "build output: %s\n", s.BuildOutput.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw session record")
	return cmd
}
