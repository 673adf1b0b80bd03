package cli

import (
	"github.com/spf13/cobra"
	"github.com/tphakala/go-phantom"
)

type demoReport struct {
	Container phantom.Payload `json:"container"`
	Artifact  phantom.Payload `json:"artifact"`
	File      phantom.Payload `json:"file,omitempty"`
	Playbook  phantom.Payload `json:"playbook"`
	Result    pollView        `json:"result"`
}

func (a *app) demoCommand() *cobra.Command {
	var (
		playbook string
		file     string
		wf       waitFlags
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Create a container with an artifact, run a playbook on it and wait",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var report demoReport
			var err error

			report.Container, err = a.client.Containers.Create(ctx, &phantom.CreateContainerRequest{
				Name:  "Testing: Sample Container Name",
				Label: "events",
			})
			if err != nil {
				return err
			}

			report.Artifact, err = a.client.Artifacts.Create(ctx, &phantom.CreateArtifactRequest{
				Name:        "Demonstration Artifact",
				Description: "This is a demonstration artifact",
				CEF: map[string]any{
					"jira_case":    "JIRA-0001",
					"jira_summary": "TEST_IGNORE: Demonstrating an Artifact",
				},
			})
			if err != nil {
				return err
			}

			if file != "" {
				report.File, err = a.client.Vault.UploadFile(ctx, file, 0)
				if err != nil {
					return err
				}
			}

			report.Playbook, err = a.client.Playbooks.Run(ctx, &phantom.RunPlaybookRequest{Playbook: playbook})
			if err != nil {
				return err
			}

			res, err := a.client.Playbooks.Wait(ctx, 0, wf.options(cmd)...)
			if err != nil {
				return err
			}
			report.Result = pollView{
				Outcome:    res.Outcome.String(),
				Attempts:   res.Attempts,
				LastStatus: res.LastStatus,
				Payload:    res.Payload,
			}

			if err := a.print(report); err != nil {
				return err
			}
			return res.Err()
		},
	}

	cmd.Flags().StringVar(&playbook, "playbook", "", "Playbook to run, as repo/name")
	cmd.Flags().StringVar(&file, "file", "", "Optional file to upload into the container's vault")
	_ = cmd.MarkFlagRequired("playbook")
	wf.register(cmd)
	return cmd
}
