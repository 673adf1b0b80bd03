package cli

import (
	"github.com/spf13/cobra"
	"github.com/tphakala/go-phantom"
)

func (a *app) containerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "container",
		Short: "Create and manage containers",
	}
	cmd.AddCommand(a.containerCreateCommand(), a.containerStatusCommand(), a.containerDeleteCommand())
	return cmd
}

func (a *app) containerCreateCommand() *cobra.Command {
	var (
		req      phantom.CreateContainerRequest
		severity string
		noAuto   bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Severity = phantom.Severity(severity)
			if noAuto {
				off := false
				req.RunAutomation = &off
			}
			res, err := a.client.Containers.Create(cmd.Context(), &req)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "Container name")
	f.StringVar(&req.Label, "label", "", "Container label")
	f.StringVar(&req.Description, "description", "", "Container description")
	f.StringVar(&severity, "severity", "", "low, medium or high")
	f.StringSliceVar(&req.Tags, "tag", nil, "Tag to attach (repeatable)")
	f.BoolVar(&noAuto, "no-automation", false, "Do not trigger active playbooks")
	return cmd
}

func (a *app) containerStatusCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "status <container-id>",
		Short: "Set the workflow status of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "container")
			if err != nil {
				return err
			}
			res, err := a.client.Containers.UpdateStatus(cmd.Context(), id, phantom.ContainerStatus(status))
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVar(&status, "status", string(phantom.ContainerResolved), "new, open, closed or resolved")
	return cmd
}

func (a *app) containerDeleteCommand() *cobra.Command {
	var user, password string

	cmd := &cobra.Command{
		Use:   "delete <container-id>",
		Short: "Delete a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "container")
			if err != nil {
				return err
			}
			res, err := a.client.Containers.Delete(cmd.Context(), id, phantom.WithBasicAuth(user, password))
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Phantom user name")
	cmd.Flags().StringVar(&password, "password", "", "Phantom password")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
