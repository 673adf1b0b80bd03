package cli

import (
	"github.com/spf13/cobra"
	"github.com/tphakala/go-phantom"
)

func (a *app) playbookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playbook",
		Short: "Run playbooks and wait for their results",
	}
	cmd.AddCommand(a.playbookRunCommand(), a.playbookWaitCommand(), a.playbookActionCommand())
	return cmd
}

func (a *app) playbookRunCommand() *cobra.Command {
	var (
		containerID int
		scope       string
	)

	cmd := &cobra.Command{
		Use:   "run <repo/playbook>",
		Short: "Start a playbook against a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Playbooks.Run(cmd.Context(), &phantom.RunPlaybookRequest{
				Playbook:    args[0],
				ContainerID: containerID,
				Scope:       phantom.PlaybookScope(scope),
			})
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().IntVar(&containerID, "container", 0, "Container id")
	cmd.Flags().StringVar(&scope, "scope", string(phantom.ScopeNew), "Artifacts to run on: new or all")
	_ = cmd.MarkFlagRequired("container")
	return cmd
}

func (a *app) playbookWaitCommand() *cobra.Command {
	var wf waitFlags

	cmd := &cobra.Command{
		Use:   "wait <run-id>",
		Short: "Poll a playbook run until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "playbook run")
			if err != nil {
				return err
			}
			res, err := a.client.Playbooks.Wait(cmd.Context(), id, wf.options(cmd)...)
			if err != nil {
				return err
			}
			return a.printPoll(res)
		},
	}
	wf.register(cmd)
	return cmd
}

func (a *app) playbookActionCommand() *cobra.Command {
	var wf waitFlags

	cmd := &cobra.Command{
		Use:   "action <action> <run-id>",
		Short: "Poll the app run of one action inside a playbook run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1], "playbook run")
			if err != nil {
				return err
			}
			res, err := a.client.Playbooks.WaitAction(cmd.Context(), args[0], id, wf.options(cmd)...)
			if err != nil {
				return err
			}
			return a.printPoll(res)
		},
	}
	wf.register(cmd)
	return cmd
}
