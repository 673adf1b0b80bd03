package cli

import (
	"github.com/spf13/cobra"
	"github.com/tphakala/go-phantom"
)

func (a *app) artifactCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Add artifacts to containers",
	}
	cmd.AddCommand(a.artifactAddCommand())
	return cmd
}

func (a *app) artifactAddCommand() *cobra.Command {
	var (
		req phantom.CreateArtifactRequest
		cef map[string]string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an artifact to a container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cef) > 0 {
				req.CEF = make(map[string]any, len(cef))
				for k, v := range cef {
					req.CEF[k] = v
				}
			}
			res, err := a.client.Artifacts.Create(cmd.Context(), &req)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}

	f := cmd.Flags()
	f.IntVar(&req.ContainerID, "container", 0, "Container id")
	f.StringVar(&req.Name, "name", "", "Artifact name")
	f.StringVar(&req.Label, "label", "", "Artifact label")
	f.StringVar(&req.Description, "description", "", "Artifact description")
	f.StringToStringVar(&cef, "cef", nil, "CEF field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("container")
	return cmd
}
