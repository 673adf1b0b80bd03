package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) uploadCommand() *cobra.Command {
	var containerID int

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file into a container's vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Vault.UploadFile(cmd.Context(), args[0], containerID)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().IntVar(&containerID, "container", 0, "Container id")
	_ = cmd.MarkFlagRequired("container")
	return cmd
}
