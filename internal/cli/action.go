package cli

import (
	"github.com/spf13/cobra"
	"github.com/tphakala/go-phantom"
)

func (a *app) actionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Run app actions outside of a playbook",
	}
	cmd.AddCommand(a.actionRunCommand(), a.actionWaitCommand(), a.actionDataCommand())
	return cmd
}

func (a *app) actionRunCommand() *cobra.Command {
	var (
		asset       string
		containerID int
		params      map[string]string
	)

	cmd := &cobra.Command{
		Use:   "run <action>",
		Short: "Start an action on an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &phantom.RunActionRequest{
				Action:      args[0],
				Asset:       asset,
				ContainerID: containerID,
			}
			if len(params) > 0 {
				p := make(map[string]any, len(params))
				for k, v := range params {
					p[k] = v
				}
				req.Parameters = []map[string]any{p}
			}

			res, err := a.client.Actions.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&asset, "asset", "", "Asset to run the action on")
	f.IntVar(&containerID, "container", 0, "Container id")
	f.StringToStringVar(&params, "param", nil, "Action parameter as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("asset")
	_ = cmd.MarkFlagRequired("container")
	return cmd
}

func (a *app) actionWaitCommand() *cobra.Command {
	var wf waitFlags

	cmd := &cobra.Command{
		Use:   "wait <action-run-id>",
		Short: "Poll an action run until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "action run")
			if err != nil {
				return err
			}
			res, err := a.client.Actions.Wait(cmd.Context(), id, wf.options(cmd)...)
			if err != nil {
				return err
			}
			return a.printPoll(res)
		},
	}
	wf.register(cmd)
	return cmd
}

func (a *app) actionDataCommand() *cobra.Command {
	var wf waitFlags

	cmd := &cobra.Command{
		Use:   "data <action-run-id>",
		Short: "Fetch the app run data of an action run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "action run")
			if err != nil {
				return err
			}
			res, err := a.client.Actions.RunData(cmd.Context(), id, wf.options(cmd)...)
			if err != nil {
				return err
			}
			return a.printPoll(res)
		},
	}
	wf.register(cmd)
	return cmd
}
