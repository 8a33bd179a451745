package cmds

import (
	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newAlertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Derive alerts without running actions",
	}
	cmd.AddCommand(newAlertDeployCmd())
	return cmd
}

func newAlertDeployCmd() *cobra.Command {
	var stage string
	var status string
	var details alert.DeployDetails
	var source string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Print the deploy alert for a stage and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStage(stage)
			if err != nil {
				return err
			}
			ss, err := parseStatus(status)
			if err != nil {
				return err
			}

			if source == "" {
				opts, err := getRootOptions(cmd)
				if err != nil {
					return err
				}
				cfg, err := loadConfig(opts)
				if err != nil {
					return err
				}
				source = cfg.DeploySource
			}
			details.Source = alert.Source(source)
			switch details.Source {
			case alert.SourceNetlify, alert.SourceVercel, alert.SourceGitHub, "":
			default:
				return errors.Errorf("unknown deploy source %q", source)
			}

			return printJSON(cmd, alert.ForDeploy(st, ss, &details))
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "", "building, deploying or complete")
	cmd.Flags().StringVar(&status, "status", "", "pending, running, complete, aborted or failed")
	cmd.Flags().StringVar(&details.URL, "url", "", "Deployed site URL")
	cmd.Flags().StringVar(&details.Error, "error", "", "Error text shown as alert content")
	cmd.Flags().StringVar(&source, "source", "", "netlify, vercel or github (defaults to deploy_source from config)")
	_ = cmd.MarkFlagRequired("stage")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func parseStage(s string) (alert.Stage, error) {
	switch st := alert.Stage(s); st {
	case alert.StageBuilding, alert.StageDeploying, alert.StageComplete:
		return st, nil
	}
	return "", errors.Errorf("unknown stage %q", s)
}

func parseStatus(s string) (action.Status, error) {
	switch st := action.Status(s); st {
	case action.StatusPending, action.StatusRunning, action.StatusComplete, action.StatusAborted, action.StatusFailed:
		return st, nil
	}
	return "", errors.Errorf("unknown status %q", s)
}
